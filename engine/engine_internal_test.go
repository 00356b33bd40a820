// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package engine

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optakt/hashchain/testing/mocks"
)

func TestEngine_Run(t *testing.T) {

	t.Run("stops all components on signal", func(t *testing.T) {
		t.Parallel()

		sig := make(chan os.Signal, 1)
		e := New(mocks.NoopLogger, "test", sig)

		var mutex sync.Mutex
		var stopped []string
		for _, name := range []string{"first", "second"} {
			name := name
			done := make(chan struct{})
			e.Component(name, func() error {
				<-done
				return nil
			}, func() {
				mutex.Lock()
				stopped = append(stopped, name)
				mutex.Unlock()
				close(done)
			})
		}

		sig <- os.Interrupt
		err := e.Run()

		assert.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, stopped)
	})

	t.Run("returns error of failed component", func(t *testing.T) {
		t.Parallel()

		sig := make(chan os.Signal)
		e := New(mocks.NoopLogger, "test", sig)

		stops := 0
		e.Component("failing", func() error {
			return mocks.GenericError
		}, func() {
			stops++
		})

		err := e.Run()

		assert.ErrorIs(t, err, mocks.GenericError)
		assert.Equal(t, 1, stops)
	})
}

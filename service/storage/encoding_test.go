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

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optakt/hashchain/service/storage"
)

func TestEncodeKey(t *testing.T) {

	tests := []struct {
		name string

		segments []interface{}

		wantKey   []byte
		wantPanic bool
	}{
		{
			name: "a key with all types combined should work",

			segments: []interface{}{
				uint64(42),
				[]byte{0xaa, 0xc5, 0x13},
			},

			wantPanic: false,
			wantKey: []byte{
				0x2,                                     // prefix
				0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x2a, // uint(42)
				0xaa, 0xc5, 0x13, // bytes
			},
		},
		{
			name: "empty segments should work",

			wantPanic: false,
			wantKey:   []byte{2},
		},
		{
			name: "signed integers should panic",

			segments: []interface{}{
				42,
			},

			wantPanic: true,
		},
		{
			name: "unsupported types should panic",

			segments: []interface{}{
				struct{}{},
			},

			wantPanic: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if test.wantPanic {
				assert.Panics(t, func() {
					storage.EncodeKey(storage.PrefixBlock, test.segments...)
				})
				return
			}

			var got []byte
			assert.NotPanics(t, func() {
				got = storage.EncodeKey(storage.PrefixBlock, test.segments...)
			})

			assert.Equal(t, test.wantKey, got)
		})
	}
}

func TestEncodeKey_Ordering(t *testing.T) {
	low := storage.EncodeKey(storage.PrefixBlock, uint64(255))
	high := storage.EncodeKey(storage.PrefixBlock, uint64(256))

	assert.Less(t, string(low), string(high))
}

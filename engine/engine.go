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

	"github.com/rs/zerolog"
)

// Engine runs a set of long-lived components until it receives a signal or
// until one of them returns, and then stops all of them.
type Engine struct {
	log        zerolog.Logger
	components []*component

	sig    <-chan os.Signal
	notify chan error
	exit   func(int)
}

// New creates an engine that shuts down when a value arrives on the signal channel.
func New(log zerolog.Logger, name string, sig <-chan os.Signal) *Engine {
	e := Engine{
		log:  log.With().Str("engine", name).Logger(),
		sig:  sig,
		exit: os.Exit,
	}

	return &e
}

// Component registers a component with the functions used to run and to stop it.
func (e *Engine) Component(name string, run func() error, stop func()) *Engine {
	c := component{
		log:  e.log.With().Str("component", name).Logger(),
		run:  run,
		stop: stop,
	}

	e.components = append(e.components, &c)

	return e
}

// Run starts all components and blocks until a signal arrives or a component
// returns. It then stops all components and returns the error of the first
// component that failed, if any.
func (e *Engine) Run() error {
	e.notify = make(chan error, len(e.components))

	for _, component := range e.components {
		go component.Run(e.notify)
	}

	// A second signal while stopping forces the exit.
	var err error
	select {
	case <-e.sig:
		e.log.Info().Msg("engine stopping")
	case err = <-e.notify:
		if err != nil {
			e.log.Warn().Err(err).Msg("engine aborted")
		} else {
			e.log.Info().Msg("engine done")
		}
	}
	go func() {
		<-e.sig
		e.log.Warn().Msg("forcing exit")
		e.exit(1)
	}()

	// Components are stopped in the order in which they were registered.
	for _, component := range e.components {
		component.Stop()
	}

	return err
}

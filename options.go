/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package rsx

import (
	"log/slog"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/catalog"
)

// GeneratorFactory builds the generator a session falls back to. It runs
// once, at the end of NewSession, with every other component in place.
type GeneratorFactory func(s *Session) apis.Generator

// Option configures a Session.
type Option func(*options)

type options struct {
	cfg       *apis.Config
	log       *slog.Logger
	cat       *catalog.Catalog
	generator GeneratorFactory
}

// WithConfig replaces the default configuration.
func WithConfig(cfg apis.Config) Option {
	return func(o *options) { o.cfg = &cfg }
}

// WithLogger sets the session logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithCatalog replaces the embedded primitive routine catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *options) {
		if c != nil {
			o.cat = c
		}
	}
}

// WithGenerator replaces the default composite-type generator.
func WithGenerator(f GeneratorFactory) Option {
	return func(o *options) {
		if f != nil {
			o.generator = f
		}
	}
}

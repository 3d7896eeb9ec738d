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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/builder"
	"dirpx.dev/rsx/catalog"
	"dirpx.dev/rsx/classifier"
	"dirpx.dev/rsx/config"
	"dirpx.dev/rsx/container"
	"dirpx.dev/rsx/diag"
	"dirpx.dev/rsx/dispatch"
	"dirpx.dev/rsx/extension"
	"dirpx.dev/rsx/generator"
	"dirpx.dev/rsx/readers"
	uref "dirpx.dev/rsx/utils/reflect"
	"dirpx.dev/rsx/utils/typeid"
	"dirpx.dev/rsx/utils/typeset"
	"dirpx.dev/rsx/vm"
)

// ErrNilBuilderOutput is returned when the builder yields a nil registry
// or resolver.
var ErrNilBuilderOutput = errors.New("rsx: builder returned nil component")

// Session owns every piece of state of one compilation pass. Nothing is
// shared between sessions. A Session is not safe for concurrent use.
type Session struct {
	id  uuid.UUID
	cfg apis.Config
	log *slog.Logger
	cat *catalog.Catalog

	reg      apis.Registry
	res      apis.Resolver
	autopack *typeset.Set
	specials map[string]*apis.Routine

	out  *container.Container
	ext  *extension.Synthesizer
	disp *dispatch.Emitter
	rb   *readers.Builder
	gen  apis.Generator

	diag    *diag.Reporter
	metrics *metrics.Set

	extensions *metrics.Counter
	passes     *metrics.Counter
	diagnosed  *metrics.Counter
}

// NewSession returns an empty session. Without options it uses
// config.DefaultConfig, the embedded catalog and the default generator.
func NewSession(opts ...Option) (*Session, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	cfg := config.DefaultConfig()
	if o.cfg != nil {
		cfg = *o.cfg
	}
	if o.cat == nil {
		cat, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		o.cat = cat
	}
	if o.log == nil {
		o.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Session{
		id:       uuid.New(),
		cfg:      cfg,
		cat:      o.cat,
		autopack: typeset.New(),
		specials: make(map[string]*apis.Routine),
		out:      container.New(cfg),
		metrics:  metrics.NewSet(),
	}
	s.log = o.log.With("session", s.id.String())

	b := builder.New()
	s.reg = b.BuildRegistry(cfg, nil)
	s.res = b.BuildResolver(cfg, s.reg)
	if s.reg == nil || s.res == nil {
		return nil, ErrNilBuilderOutput
	}

	s.ext = extension.New(cfg, s.reg, s.out, s.cat.ReaderType())
	s.disp = dispatch.New(cfg, s.out, s.autopack, s.cat.ReaderType(), s.cat.PackingType())
	s.rb = readers.New(cfg, s.res, s.autopack, s.specials)
	s.diag = diag.NewReporter(s.log)
	s.registerMetrics()

	if o.generator != nil {
		s.gen = o.generator(s)
	} else {
		s.gen = generator.New(cfg, generator.Deps{
			Engine:    s,
			Registry:  s.reg,
			Container: s.out,
			Readers:   s.rb,
			Dispatch:  s.disp,
			Reader:    s.cat.ReaderType(),
			Specials:  s.specials,
			Logger:    s.log,
		})
	}
	return s, nil
}

func (s *Session) registerMetrics() {
	label := fmt.Sprintf(`{session=%q}`, s.id.String())
	s.extensions = s.metrics.NewCounter("rsx_extensions_synthesized_total" + label)
	s.passes = s.metrics.NewCounter("rsx_process_runs_total" + label)
	s.diagnosed = s.metrics.NewCounter("rsx_diagnostics_total" + label)
	s.metrics.NewGauge("rsx_delegates_installed"+label, func() float64 { return float64(s.disp.Count()) })
	s.metrics.NewGauge("rsx_generated_methods"+label, func() float64 { return float64(s.out.Len()) })
	s.metrics.NewGauge("rsx_static_readers"+label, func() float64 { return float64(s.reg.Count(false)) })
	s.metrics.NewGauge("rsx_instanced_readers"+label, func() float64 { return float64(s.reg.Count(true)) })
}

// ID returns the pass identifier.
func (s *Session) ID() string { return s.id.String() }

// Config returns the session configuration.
func (s *Session) Config() apis.Config { return s.cfg }

// Catalog returns the primitive routine catalog.
func (s *Session) Catalog() *catalog.Catalog { return s.cat }

// Registry returns the session registry.
func (s *Session) Registry() apis.Registry { return s.reg }

// Resolver returns the session resolver.
func (s *Session) Resolver() apis.Resolver { return s.res }

// Readers returns the read-instruction builder, for custom generators.
func (s *Session) Readers() *readers.Builder { return s.rb }

// Dispatch returns the dispatch emitter, for custom generators.
func (s *Session) Dispatch() *dispatch.Emitter { return s.disp }

// Container returns the generated container.
func (s *Session) Container() *container.Container { return s.out }

// Specials returns the multi-purpose primitives found by Process, by name.
func (s *Session) Specials() map[string]*apis.Routine {
	out := make(map[string]*apis.Routine, len(s.specials))
	for k, v := range s.specials {
		out[k] = v
	}
	return out
}

// AutoPacked reports whether the reader of t takes a packing mode.
func (s *Session) AutoPacked(t *apis.TypeRef) bool { return s.autopack.Has(typeid.Of(t)) }

// InstancedReaderMethods returns the instanced mapping in identity order.
func (s *Session) InstancedReaderMethods() []apis.Entry { return s.reg.Entries(true) }

// StaticReaderMethods returns the static mapping in identity order.
func (s *Session) StaticReaderMethods() []apis.Entry { return s.reg.Entries(false) }

// Diagnostics returns every diagnostic reported so far.
func (s *Session) Diagnostics() []diag.Diagnostic { return s.diag.All() }

// Err joins every diagnostic, or returns nil.
func (s *Session) Err() error { return s.diag.Err() }

// WriteMetrics writes the session metrics in Prometheus text format.
func (s *Session) WriteMetrics(w io.Writer) { s.metrics.WritePrometheus(w) }

func (s *Session) report(typ string, err error) {
	if s.diag.Report(typ, err) {
		s.diagnosed.Inc()
	}
}

// Process scans the catalog into the registry, synthesizes extension
// readers, installs a dispatch entry for every static reader and seals the
// container. Running it again within the same session changes nothing.
// The returned error joins the diagnostics reported so far.
func (s *Session) Process() error {
	s.passes.Inc()
	for _, r := range s.cat.Routines() {
		class, reason := classifier.Explain(s.cfg, r)
		switch class {
		case classifier.Special:
			s.specials[r.Name] = r
		case classifier.Primitive, classifier.AutoPacked:
			id := typeid.Of(r.Return)
			if class == classifier.AutoPacked {
				s.autopack.Add(id)
			}
			if err := s.reg.Add(id, r, r.IsInstanced(), false); err != nil {
				s.report(r.Return.FullName(), err)
				continue
			}
			s.log.Debug("reader registered", "type", id, "routine", r.Name, "instanced", r.IsInstanced(), "class", class.String())
		default:
			s.log.Debug("routine ignored", "routine", r.Name, "reason", reason)
		}
	}

	if s.cfg.SynthesizeExtensions {
		made, err := s.ext.Synthesize()
		s.extensions.Add(len(made))
		if err != nil {
			s.report(s.out.Type().FullName(), err)
		}
	}

	if err := s.disp.InstallAll(s.reg); err != nil {
		s.report(s.out.Type().FullName(), err)
	}
	s.out.Seal()
	s.log.Info("process complete",
		"static", s.reg.Count(false),
		"instanced", s.reg.Count(true),
		"delegates", s.disp.Count(),
	)
	return s.Err()
}

// GetOrCreateReadMethodReference returns the reader of t, generating one
// when none is registered. Type arguments are resolved first; if any of
// them fails, nothing is registered for t. Failures are also recorded as
// diagnostics.
func (s *Session) GetOrCreateReadMethodReference(t *apis.TypeRef) (*apis.Routine, error) {
	r, err := s.getOrCreate(t)
	if err != nil {
		s.report(t.FullName(), err)
		return nil, err
	}
	return r, nil
}

func (s *Session) getOrCreate(t *apis.TypeRef) (*apis.Routine, error) {
	if t == nil {
		return nil, fmt.Errorf("%w for nil type", readers.ErrUnresolvedDeserializer)
	}
	if len(t.Args) > config.GenericArity(s.cfg) {
		return nil, fmt.Errorf("%w: %s has %d type arguments", readers.ErrUnsupportedGenericShape, t.FullName(), len(t.Args))
	}
	for _, a := range t.Args {
		if _, err := s.getOrCreate(a); err != nil {
			return nil, fmt.Errorf("type argument of %s: %w", t.FullName(), err)
		}
	}

	if r, ok := s.res.Resolve(typeid.Of(t)); ok {
		if _, err := readers.Bind(s.cfg, r, t); err != nil {
			return nil, err
		}
		return r, nil
	}
	if t.HasAttribute(s.cfg.NonSerializedAttribute) {
		return nil, fmt.Errorf("%w for %s: marked %s", readers.ErrUnresolvedDeserializer, t.FullName(), s.cfg.NonSerializedAttribute)
	}
	r, err := s.gen.CreateReader(t)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, readers.Unresolved(t)
	}
	return r, nil
}

// ReaderOf converts the Go type rt into the type universe and returns its
// reader, generating one when needed.
func (s *Session) ReaderOf(rt reflect.Type) (*apis.Routine, error) {
	t, err := uref.TypeOf(rt, s.cfg)
	if err != nil {
		return nil, err
	}
	return s.GetOrCreateReadMethodReference(t)
}

// HasDeserializer reports whether t can be read. With createMissing a
// reader is generated when none exists yet.
func (s *Session) HasDeserializer(t *apis.TypeRef, createMissing bool) bool {
	if t == nil || t.HasAttribute(s.cfg.NonSerializedAttribute) {
		return false
	}
	if r, ok := s.res.Resolve(typeid.Of(t)); ok {
		_, err := readers.Bind(s.cfg, r, t)
		return err == nil
	}
	if !createMissing {
		return false
	}
	_, err := s.GetOrCreateReadMethodReference(t)
	return err == nil
}

// Machine returns a reference backend with the container loaded.
func (s *Session) Machine(opts ...vm.Option) (*vm.Machine, error) {
	m := vm.New(s.cfg, append([]vm.Option{vm.WithLogger(s.log)}, opts...)...)
	if err := m.Load(s.out); err != nil {
		return nil, err
	}
	return m, nil
}

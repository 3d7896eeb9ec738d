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

// Package catalog loads the statically declared manifest of primitive read
// routines. The manifest replaces reflective discovery: it is validated
// against an embedded JSON schema, its version is checked against the
// supported range and every type expression is parsed into the type
// universe.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/utils/typeid"
)

//go:embed default.yaml
var defaultManifest []byte

// SupportedVersions is the manifest version range this engine understands.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

var (
	// ErrInvalid is returned when a manifest fails schema validation.
	ErrInvalid = errors.New("rsx(catalog): invalid manifest")
	// ErrUnsupportedVersion is returned when the manifest version is outside
	// SupportedVersions.
	ErrUnsupportedVersion = errors.New("rsx(catalog): unsupported manifest version")
	// ErrDuplicateRoutine is returned when one owner declares a routine name twice.
	ErrDuplicateRoutine = errors.New("rsx(catalog): duplicate routine")
)

// manifest mirrors the YAML document.
type manifest struct {
	Version  string         `yaml:"version"`
	Reader   string         `yaml:"reader"`
	Packing  string         `yaml:"packing"`
	Routines []routineEntry `yaml:"routines"`
}

type routineEntry struct {
	Name       string       `yaml:"name"`
	Owner      string       `yaml:"owner"`
	Static     bool         `yaml:"static"`
	Returns    string       `yaml:"returns"`
	TypeParams []string     `yaml:"type_params"`
	Params     []paramEntry `yaml:"params"`
	Attributes []string     `yaml:"attributes"`
}

type paramEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Catalog is an immutable, enumerable set of primitive routines.
type Catalog struct {
	version  *semver.Version
	reader   *apis.TypeRef
	packing  *apis.TypeRef
	routines []*apis.Routine
}

// Default returns the catalog of the bundled wire library.
func Default() (*Catalog, error) {
	return Parse(defaultManifest)
}

// Load reads and parses the manifest at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes a YAML manifest.
func Parse(data []byte) (*Catalog, error) {
	res, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, res)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, m.Version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, err
	}
	if !constraint.Check(v) {
		return nil, fmt.Errorf("%w: %s not in %s", ErrUnsupportedVersion, v, SupportedVersions)
	}

	c := &Catalog{version: v}
	if c.reader, err = typeid.Parse(m.Reader); err != nil {
		return nil, fmt.Errorf("%w: reader: %v", ErrInvalid, err)
	}
	if c.packing, err = typeid.Parse(m.Packing); err != nil {
		return nil, fmt.Errorf("%w: packing: %v", ErrInvalid, err)
	}
	// The packing mode is an enumeration passed by value.
	c.packing.Kind, c.packing.ValueType = apis.KindStruct, true

	seen := make(map[string]bool, len(m.Routines))
	for i, e := range m.Routines {
		r, err := c.routine(e)
		if err != nil {
			return nil, fmt.Errorf("%w: routines[%d] %s: %v", ErrInvalid, i, e.Name, err)
		}
		key := r.Key()
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoutine, key)
		}
		seen[key] = true
		c.routines = append(c.routines, r)
	}
	return c, nil
}

func (c *Catalog) routine(e routineEntry) (*apis.Routine, error) {
	owner := c.reader
	if e.Owner != "" {
		t, err := typeid.Parse(e.Owner)
		if err != nil {
			return nil, err
		}
		owner = t
	}
	ret, err := c.parse(e.Returns, e.TypeParams)
	if err != nil {
		return nil, err
	}

	r := &apis.Routine{
		Name:       e.Name,
		Owner:      owner,
		Return:     ret,
		TypeParams: slices.Clone(e.TypeParams),
		Attributes: slices.Clone(e.Attributes),
	}
	if e.Static {
		r.Extension = true
		r.Params = append(r.Params, apis.Param{Name: "reader", Type: c.reader})
	} else {
		r.Receiver = c.reader
	}
	for _, p := range e.Params {
		t, err := c.parse(p.Type, e.TypeParams)
		if err != nil {
			return nil, err
		}
		r.Params = append(r.Params, apis.Param{Name: p.Name, Type: t})
	}
	return r, nil
}

// parse maps the manifest's reader and packing names onto the shared TypeRefs.
func (c *Catalog) parse(expr string, typeParams []string) (*apis.TypeRef, error) {
	t, err := typeid.Parse(expr, typeParams...)
	if err != nil {
		return nil, err
	}
	switch t.FullName() {
	case c.packing.FullName():
		return c.packing, nil
	case c.reader.FullName():
		return c.reader, nil
	}
	return t, nil
}

// Version returns the manifest version.
func (c *Catalog) Version() *semver.Version { return c.version }

// ReaderType returns the primitive reader type.
func (c *Catalog) ReaderType() *apis.TypeRef { return c.reader }

// PackingType returns the packing-mode type.
func (c *Catalog) PackingType() *apis.TypeRef { return c.packing }

// Routines returns the routines in manifest order.
func (c *Catalog) Routines() []*apis.Routine { return slices.Clone(c.routines) }

// Len returns the number of routines.
func (c *Catalog) Len() int { return len(c.routines) }

// Lookup returns the first routine named name.
func (c *Catalog) Lookup(name string) (*apis.Routine, bool) {
	for _, r := range c.routines {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

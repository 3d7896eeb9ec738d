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

package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"dirpx.dev/rsx/catalog"
)

func TestDefault(t *testing.T) {
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if got := c.ReaderType().FullName(); got != "wire.Reader" {
		t.Fatalf("ReaderType = %q, want wire.Reader", got)
	}
	if got := c.Version().String(); got != "1.2.0" {
		t.Fatalf("Version = %q, want 1.2.0", got)
	}

	r, ok := c.Lookup("ReadInt32")
	if !ok {
		t.Fatalf("Lookup(ReadInt32) missing")
	}
	if !r.IsInstanced() || len(r.Params) != 1 || r.Params[0].Type != c.PackingType() {
		t.Fatalf("ReadInt32 = %s, want an instanced routine taking the packing type", r)
	}
	if !c.PackingType().ValueType {
		t.Fatalf("packing type must be a value type")
	}

	arr, ok := c.Lookup("ReadArray")
	if !ok || !arr.HasGenericParameters() || arr.Return.FullName() != "T[]" {
		t.Fatalf("ReadArray = %v, want generic T[] reader", arr)
	}
	if _, ok := c.Lookup("Missing"); ok {
		t.Fatalf("Lookup(Missing) should fail")
	}
	if c.Len() != len(c.Routines()) {
		t.Fatalf("Len and Routines disagree")
	}
}

func TestParse_StaticRoutineGetsReaderParam(t *testing.T) {
	c, err := catalog.Parse([]byte(`
version: 1.0.0
reader: wire.Reader
packing: wire.AutoPackType
routines:
  - name: ReadVector
    owner: game.Extensions
    static: true
    returns: game.Vector
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := c.Routines()[0]
	if r.IsInstanced() || !r.Extension {
		t.Fatalf("ReadVector must be a static extension routine")
	}
	if len(r.Params) != 1 || r.Params[0].Type != c.ReaderType() {
		t.Fatalf("ReadVector params = %v, want [reader]", r.Params)
	}
	if got := r.Key(); got != "game.Extensions::ReadVector" {
		t.Fatalf("Key = %q", got)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"missing routines", "version: 1.0.0\nreader: wire.Reader\npacking: wire.AutoPackType\n", catalog.ErrInvalid},
		{"unknown field", "version: 1.0.0\nreader: r.R\npacking: r.P\nroutines: []\nextra: 1\n", catalog.ErrInvalid},
		{"bad name", "version: 1.0.0\nreader: r.R\npacking: r.P\nroutines:\n  - {name: 'Read Int', returns: int32}\n", catalog.ErrInvalid},
		{"bad type expr", "version: 1.0.0\nreader: r.R\npacking: r.P\nroutines:\n  - {name: ReadX, returns: 'List<int'}\n", catalog.ErrInvalid},
		{"too new", "version: 2.1.0\nreader: r.R\npacking: r.P\nroutines: []\n", catalog.ErrUnsupportedVersion},
		{"not semver", "version: banana\nreader: r.R\npacking: r.P\nroutines: []\n", catalog.ErrUnsupportedVersion},
		{"duplicate", "version: 1.0.0\nreader: r.R\npacking: r.P\nroutines:\n  - {name: ReadX, returns: int32}\n  - {name: ReadX, returns: bool}\n", catalog.ErrDuplicateRoutine},
		{"not yaml", "version: [", catalog.ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tc.doc))
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidate_ReportsPath(t *testing.T) {
	res, err := catalog.Validate([]byte("version: 1.0.0\nreader: r.R\npacking: r.P\nroutines:\n  - {returns: int32}\n"))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid {
		t.Fatalf("missing name must be invalid")
	}
	if !strings.Contains(res.String(), "/routines/0") {
		t.Fatalf("issues %q do not mention /routines/0", res.String())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "version: 1.0.0\nreader: r.R\npacking: r.P\nroutines:\n  - {name: ReadBool, returns: bool}\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if _, err := catalog.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("Load(missing) should fail")
	}
}

func TestSchemaCompiledOnce(t *testing.T) {
	first, err := catalog.Schema()
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if _, err := catalog.Default(); err != nil {
		t.Fatalf("Default: %v", err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := catalog.Validate([]byte("version: 1.0.0\n")); err != nil {
				t.Errorf("Validate: %v", err)
			}
		}()
	}
	wg.Wait()

	again, err := catalog.Schema()
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if again != first {
		t.Fatalf("schema was compiled again")
	}
}

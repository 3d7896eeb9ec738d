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

package cmd_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/catalog"
	"dirpx.dev/rsx/cmd"
	"dirpx.dev/rsx/wire"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cmd.NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if want := "rsx v" + cmd.Version + "\n"; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestCatalogList(t *testing.T) {
	out, err := run(t, "catalog")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	for _, want := range []string{"AutoPacked", "ReadInt32", "Primitive", "ReadBool", "Special", "ReadArray"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestCatalogValidate(t *testing.T) {
	out, err := run(t, "catalog", "--validate")
	if err != nil {
		t.Fatalf("catalog --validate: %v", err)
	}
	if !strings.HasPrefix(out, "valid (version 1.2.0") {
		t.Fatalf("got %q, want a valid summary", out)
	}
}

func TestCatalogInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("version: 1.0.0\nreader: wire.Reader\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "catalog", "--catalog", path)
	if !errors.Is(err, catalog.ErrInvalid) {
		t.Fatalf("got %v, want ErrInvalid", err)
	}
	if !strings.Contains(out, "Issues") {
		t.Fatalf("output lacks the issue list:\n%s", out)
	}
}

func TestDecodeBuiltin(t *testing.T) {
	var num wire.Writer
	num.WriteInt32(150, apis.Packed)

	var str wire.Writer
	str.WriteString("hi")

	var absent wire.Writer
	absent.WriteAbsent()

	tests := []struct {
		typ  string
		data []byte
		want string
	}{
		{"int32", num.Bytes(), "150\n"},
		{"string", str.Bytes(), "\"hi\"\n"},
		{"string", absent.Bytes(), "null\n"},
	}
	for _, tt := range tests {
		out, err := run(t, "decode", tt.typ, hex.EncodeToString(tt.data))
		if err != nil {
			t.Fatalf("decode %s: %v", tt.typ, err)
		}
		if out != tt.want {
			t.Fatalf("decode %s: got %q, want %q", tt.typ, out, tt.want)
		}
	}
}

func TestDecodeBadPayload(t *testing.T) {
	if _, err := run(t, "decode", "int32", "zz"); err == nil {
		t.Fatalf("want an error for a malformed payload")
	}
}

func TestWrapString(t *testing.T) {
	got := cmd.WrapString(strings.Repeat("word ", 20))
	for _, line := range strings.Split(got, "\n") {
		if len(line) > cmd.Wrap {
			t.Fatalf("line %q exceeds %d characters", line, cmd.Wrap)
		}
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"go.mod":  "module example.com/game\n\ngo 1.22\n",
		"game.go": "package game\n\ntype Point struct {\n\tX int32\n\tY int32\n}\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	out, err := run(t, "generate", "--dir", dir, "--metrics", "game.Point")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	for _, want := range []string{"game.Point -> ", "Read___game_Point", "new.object", "rsx_generated_methods"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}

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

package config_test

import (
	"reflect"
	"slices"
	"testing"

	"github.com/spf13/viper"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
)

func TestDefaultConfigValues(t *testing.T) {
	got := config.DefaultConfig()

	if got.ReadPrefix != config.DefaultReadPrefix {
		t.Fatalf("ReadPrefix = %q, want %q", got.ReadPrefix, config.DefaultReadPrefix)
	}
	if got.FavorInstanced != config.DefaultFavorInstanced {
		t.Fatalf("FavorInstanced = %v, want %v", got.FavorInstanced, config.DefaultFavorInstanced)
	}
	if got.MaxGenericArity != 1 {
		t.Fatalf("MaxGenericArity = %d, want 1", got.MaxGenericArity)
	}
	if got.MaxUnwrap != config.DefaultMaxUnwrap {
		t.Fatalf("MaxUnwrap = %d, want %d", got.MaxUnwrap, config.DefaultMaxUnwrap)
	}
	if !got.IsSpecial("ReadArray") || got.IsSpecial("ReadInt32") || got.IsSpecial("") {
		t.Fatalf("IsSpecial misclassifies default special names")
	}
}

func TestNewConfig_NoOptions_EqualsDefault(t *testing.T) {
	def := config.DefaultConfig()
	got := config.NewConfig()
	if !reflect.DeepEqual(got, def) {
		t.Fatalf("NewConfig() = %+v, want default %+v", got, def)
	}
}

func TestDefaultUnpackedTypes_NotShared(t *testing.T) {
	a := config.DefaultConfig()
	a.UnpackedTypes[0] = "mutated"
	if b := config.DefaultConfig(); b.UnpackedTypes[0] != "float32" {
		t.Fatalf("DefaultConfig shares UnpackedTypes: got %q", b.UnpackedTypes[0])
	}
}

func TestDefaultPackMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cases := map[string]apis.PackMode{
		"float32": apis.Unpacked,
		"float64": apis.Unpacked,
		"int32":   apis.Packed,
		"uint64":  apis.Packed,
	}
	for id, want := range cases {
		if got := config.DefaultPackMode(cfg, id); got != want {
			t.Fatalf("DefaultPackMode(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestWithMaxUnwrap_Negative_ResetsToDefault(t *testing.T) {
	c := config.NewConfig(config.WithMaxUnwrap(-1))
	if c.MaxUnwrap != config.DefaultMaxUnwrap {
		t.Fatalf("MaxUnwrap = %d, want default %d", c.MaxUnwrap, config.DefaultMaxUnwrap)
	}
}

func TestOptionsOrder_LastWins(t *testing.T) {
	c := config.NewConfig(
		config.WithFavorInstanced(true),
		config.WithFavorInstanced(false),
		config.WithMaxGenericArity(1),
		config.WithMaxGenericArity(0),
		config.WithReadPrefix("Get"),
		config.WithReadPrefix(""),
		config.WithContainer("game.net", "Readers"),
	)

	if c.FavorInstanced {
		t.Errorf("FavorInstanced = %v, want false (last option wins)", c.FavorInstanced)
	}
	if c.MaxGenericArity != 0 {
		t.Errorf("MaxGenericArity = %d, want 0 (last option wins)", c.MaxGenericArity)
	}
	if c.ReadPrefix != "Get" {
		t.Errorf("ReadPrefix = %q, want Get (empty prefix ignored)", c.ReadPrefix)
	}
	if c.Namespace != "game.net" || c.ContainerName != "Readers" {
		t.Errorf("container = %s.%s, want game.net.Readers", c.Namespace, c.ContainerName)
	}
}

func TestGenericArityCapped(t *testing.T) {
	tests := []struct {
		name string
		cfg  apis.Config
		want int
	}{
		{"option above cap", config.NewConfig(config.WithMaxGenericArity(2)), 1},
		{"raw struct above cap", apis.Config{MaxGenericArity: 5}, 1},
		{"zero", apis.Config{}, 0},
		{"negative", apis.Config{MaxGenericArity: -1}, 0},
	}
	for _, tt := range tests {
		if got := config.GenericArity(tt.cfg); got != tt.want {
			t.Fatalf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
	if got := config.NewConfig(config.WithMaxGenericArity(4)).MaxGenericArity; got != config.SupportedGenericArity {
		t.Fatalf("MaxGenericArity = %d, want %d", got, config.SupportedGenericArity)
	}
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	v.Set(config.KeyFavorInstanced, true)
	v.Set(config.KeyMaxGenericArity, 0)
	v.Set(config.KeyUnpackedTypes, []string{"float64"})
	v.Set(config.KeyNamespace, "game.net")

	c := config.FromViper(v)
	if !c.FavorInstanced {
		t.Fatalf("FavorInstanced = false, want true")
	}
	if c.MaxGenericArity != 0 {
		t.Fatalf("MaxGenericArity = %d, want 0", c.MaxGenericArity)
	}
	if !slices.Equal(c.UnpackedTypes, []string{"float64"}) {
		t.Fatalf("UnpackedTypes = %v, want [float64]", c.UnpackedTypes)
	}
	if c.Namespace != "game.net" || c.ContainerName != config.DefaultContainerName {
		t.Fatalf("container = %s.%s", c.Namespace, c.ContainerName)
	}
	if c.ReadPrefix != config.DefaultReadPrefix {
		t.Fatalf("unset keys must keep defaults, ReadPrefix = %q", c.ReadPrefix)
	}

	if got := config.FromViper(nil); !reflect.DeepEqual(got, config.DefaultConfig()) {
		t.Fatalf("FromViper(nil) = %+v, want default", got)
	}
}

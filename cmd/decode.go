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

package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/typesrc"
	"dirpx.dev/rsx/vm"
)

func newDecodeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <type> <hex>",
		Short: "Decode a hex payload through the generated readers",
		Long: `Generates the reader of <type>, loads the container into the reference
machine and decodes <hex> with it. Builtin types (int32, string, ...) need no
package; named types are looked up in --packages.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(strings.TrimPrefix(args[1], "0x"))
			if err != nil {
				return fmt.Errorf("payload: %w", err)
			}
			s, err := session(cmd, v)
			if err != nil {
				return err
			}

			var t *apis.TypeRef
			if !strings.Contains(args[0], ".") {
				t = apis.Basic(args[0])
			} else {
				src, err := typesrc.Load(cmd.Context(), s.Config(), v.GetString("dir"), v.GetStringSlice("packages")...)
				if err != nil {
					return err
				}
				if t, err = src.Lookup(args[0]); err != nil {
					return err
				}
			}
			if _, err := s.GetOrCreateReadMethodReference(t); err != nil {
				return err
			}

			m, err := s.Machine()
			if err != nil {
				return err
			}
			val, err := m.Decode(t, data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			render(out, val)
			fmt.Fprintln(out)
			return report(cmd, v, s)
		},
	}

	key := "dir"
	cmd.Flags().String(key, ".", WrapString("Directory the package patterns are resolved in"))
	key = "packages"
	cmd.Flags().StringSlice(key, []string{"."}, WrapString("Comma-separated package patterns to load"))
	return cmd
}

// render writes a decoded value. Objects print their fields in declaration
// order.
func render(w io.Writer, val any) {
	switch x := val.(type) {
	case nil:
		fmt.Fprint(w, "null")
	case vm.Ref:
		fmt.Fprint(w, "&")
		render(w, x.Deref())
	case *vm.Object:
		fmt.Fprintf(w, "%s{", x.Type.FullName())
		names := make([]string, 0, len(x.Fields))
		for _, f := range x.Type.Fields {
			names = append(names, f.Name)
		}
		for _, p := range x.Type.Properties {
			names = append(names, p.Name)
		}
		for name := range x.Fields {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
		first := true
		for _, name := range names {
			fv, ok := x.Fields[name]
			if !ok {
				continue
			}
			if !first {
				fmt.Fprint(w, ", ")
			}
			first = false
			fmt.Fprintf(w, "%s: ", name)
			render(w, fv)
		}
		fmt.Fprint(w, "}")
	case string:
		fmt.Fprintf(w, "%q", x)
	case []any:
		fmt.Fprint(w, "[")
		for i, e := range x {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			render(w, e)
		}
		fmt.Fprint(w, "]")
	default:
		fmt.Fprintf(w, "%v", x)
	}
}

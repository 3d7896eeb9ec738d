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
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dirpx.dev/rsx"
	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
	"dirpx.dev/rsx/typesrc"
	"dirpx.dev/rsx/utils/ctxlog"
)

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [type...]",
		Short: "Resolve or generate readers for the types of a package",
		Long: `Loads the packages given by --packages, resolves a reader for every named
type (or for every exported struct when no type is given) and prints the
generated container. Types are named "pkg.Name".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session(cmd, v)
			if err != nil {
				return err
			}
			src, err := typesrc.Load(cmd.Context(), s.Config(), v.GetString("dir"), v.GetStringSlice("packages")...)
			if err != nil {
				return err
			}
			targets, err := lookupTargets(src, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			heading(out, "Readers")
			for _, t := range targets {
				r, err := s.GetOrCreateReadMethodReference(t)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", t.FullName(), err)
					continue
				}
				fmt.Fprintf(out, "%s -> %s\n", t.FullName(), r.FullName())
			}
			if v.GetBool("dump") {
				heading(out, "Container")
				fmt.Fprint(out, s.Container().Dump())
			}
			return report(cmd, v, s)
		},
	}

	key := "dir"
	cmd.Flags().String(key, ".", WrapString("Directory the package patterns are resolved in"))
	key = "packages"
	cmd.Flags().StringSlice(key, []string{"."}, WrapString("Comma-separated package patterns to load (e.g. ./model/...)"))
	key = "dump"
	cmd.Flags().Bool(key, true, WrapString("Print the generated container"))
	return cmd
}

// session builds and processes a session from the bound configuration.
func session(cmd *cobra.Command, v *viper.Viper) (*rsx.Session, error) {
	cat, err := loadCatalog(v)
	if err != nil {
		return nil, err
	}
	s, err := rsx.NewSession(
		rsx.WithConfig(config.FromViper(v)),
		rsx.WithLogger(ctxlog.FromContext(cmd.Context())),
		rsx.WithCatalog(cat),
	)
	if err != nil {
		return nil, err
	}
	if err := s.Process(); err != nil {
		return nil, err
	}
	return s, nil
}

// lookupTargets looks up the named types, or lists every exported struct.
func lookupTargets(src *typesrc.Source, names []string) ([]*apis.TypeRef, error) {
	if len(names) == 0 {
		return src.Types()
	}
	out := make([]*apis.TypeRef, 0, len(names))
	var errs []error
	for _, n := range names {
		t, err := src.Lookup(n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, t)
	}
	return out, errors.Join(errs...)
}

// report prints diagnostics and, if requested, the metrics. It returns the
// session error so the exit code reflects failed resolutions.
func report(cmd *cobra.Command, v *viper.Viper, s *rsx.Session) error {
	out := cmd.OutOrStdout()
	if d := s.Diagnostics(); len(d) > 0 {
		heading(out, "Diagnostics")
		for _, x := range d {
			fmt.Fprintf(out, "%s %s: %v\n", x.Kind, x.Type, x.Err)
		}
	}
	if v.GetBool("metrics") {
		heading(out, "Metrics")
		s.WriteMetrics(out)
	}
	return s.Err()
}

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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dirpx.dev/rsx/catalog"
	"dirpx.dev/rsx/classifier"
	"dirpx.dev/rsx/config"
)

func newCatalogCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate a catalog manifest and show how its routines classify",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if path := v.GetString("catalog"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				res, err := catalog.Validate(data)
				if err != nil {
					return err
				}
				if !res.Valid {
					heading(out, "Issues")
					for _, is := range res.Issues {
						fmt.Fprintf(out, "%s: %s (%s)\n", is.Path, is.Message, is.Keyword)
					}
					return fmt.Errorf("%w: %s", catalog.ErrInvalid, path)
				}
			}

			cat, err := loadCatalog(v)
			if err != nil {
				return err
			}
			if v.GetBool("validate") {
				fmt.Fprintf(out, "valid (version %s, %d routines)\n", cat.Version(), cat.Len())
				return nil
			}

			cfg := config.FromViper(v)
			heading(out, fmt.Sprintf("Catalog %s (reader %s)", cat.Version(), cat.ReaderType()))
			for _, r := range cat.Routines() {
				class, reason := classifier.Explain(cfg, r)
				if reason == "" {
					fmt.Fprintf(out, "%-16s %s\n", class, r.FullName())
					continue
				}
				fmt.Fprintf(out, "%-16s %s (%s)\n", class, r.FullName(), reason)
			}
			return nil
		},
	}

	key := "validate"
	cmd.Flags().Bool(key, false, WrapString("Only validate the manifest"))
	return cmd
}

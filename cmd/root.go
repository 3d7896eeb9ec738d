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

// Package cmd implements the rsx command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dirpx.dev/rsx/config"
)

const (
	Version = "0.4.0"
)

// NewRootCmd builds the command tree. Every call returns an independent
// tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:   "rsx",
		Short: "deserializer synthesis for the wire format",
		Long: fmt.Sprintf(`rsx (v%s)

Discovers the primitive read routines of the wire library, resolves a
reader for every type of a Go package and generates the missing ones.
Every flag can also be set as RSX_<flag> (e.g. RSX_FAVOR_INSTANCED=true).`, Version),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd, v)
		},
	}

	key := "log-level"
	root.PersistentFlags().String(key, "warn", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
	key = "config"
	root.PersistentFlags().String(key, "", WrapString("Optional config file (yaml, json or toml) holding any of the flags below"))
	key = "catalog"
	root.PersistentFlags().String(key, "", WrapString("Path of a primitive catalog manifest. The bundled wire catalog is used when empty"))
	key = "metrics"
	root.PersistentFlags().Bool(key, false, WrapString("Print the session metrics in Prometheus text format"))

	key = config.KeyReadPrefix
	root.PersistentFlags().String(key, config.DefaultReadPrefix, WrapString("Prefix every discoverable read routine starts with"))
	key = config.KeyNamespace
	root.PersistentFlags().String(key, config.DefaultNamespace, WrapString("Namespace of the generated container"))
	key = config.KeyContainer
	root.PersistentFlags().String(key, config.DefaultContainerName, WrapString("Name of the generated container"))
	key = config.KeyInitRoutine
	root.PersistentFlags().String(key, config.DefaultInitRoutineName, WrapString("Name of the run-once initialization routine"))
	key = config.KeyFavorInstanced
	root.PersistentFlags().Bool(key, config.DefaultFavorInstanced, WrapString("Resolve instanced readers before static ones"))
	key = config.KeySynthesizeExtensions
	root.PersistentFlags().Bool(key, config.DefaultSynthesizeExtensions, WrapString("Wrap instanced readers as static extension readers"))
	key = config.KeyMaxGenericArity
	root.PersistentFlags().Int(key, config.DefaultMaxGenericArity, WrapString("Number of generic arguments a type may carry (0 or 1; larger values are capped at 1)"))
	key = config.KeyMaxUnwrap
	root.PersistentFlags().Int(key, config.DefaultMaxUnwrap, WrapString("Nesting limit when converting pointer, slice and map types"))
	key = config.KeyUnpackedTypes
	root.PersistentFlags().StringSlice(key, config.DefaultUnpackedTypes(), WrapString("Types whose default packing mode is Unpacked"))

	root.AddCommand(newGenerateCmd(v))
	root.AddCommand(newCatalogCmd(v))
	root.AddCommand(newDecodeCmd(v))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of rsx",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rsx v%s\n", Version)
		},
	})
	return root
}

// Execute runs the command tree. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

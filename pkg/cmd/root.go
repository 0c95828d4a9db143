// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the command-line driver: it reads the schema
// file, runs the compiler pipeline, renders diagnostics to stderr and
// writes the generated modules to disk. The compiler core never touches
// the filesystem; all I/O lives here.
package cmd

import (
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "zapc",
	Short: "A compiler for network message schemas.",
	Long: `A compiler which translates a network message schema into generated Luau
	 modules (server, client, optional tooling) plus optional TypeScript
	 definition side-files.`,
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			version := Version
			if version == "" {
				// Built via "go install" rather than make.
				if info, ok := debug.ReadBuildInfo(); ok {
					version = info.Main.Version
				} else {
					version = "(unknown version)"
				}
			}

			cmd.Printf("zapc %s\n", version)

			return
		}

		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "print version information")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

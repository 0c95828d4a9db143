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
package cmd

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netschema/zapc/pkg/diag"
	"github.com/netschema/zapc/pkg/source"
)

// defaultSchemaFile is compiled when no positional argument is given (§6).
const defaultSchemaFile = "net.zap"

var compileCmd = &cobra.Command{
	Use:   "compile [flags] [schema_file]",
	Short: "compile a schema into the generated network modules.",
	Long: `Compile a schema file (default net.zap) into the server and client Luau
	 modules, plus the optional tooling module and TypeScript definition
	 side-files enabled by the schema's options.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		promote := GetFlag(cmd, "no-warnings")

		filename := defaultSchemaFile
		if len(args) == 1 {
			filename = args[0]
		}

		bytes, err := os.ReadFile(filename)
		if err != nil {
			log.Errorf("reading %s: %v", filename, err)
			os.Exit(1)
		}

		srcfile := source.NewSourceFile(filename, bytes)
		outputs, reports := Build(srcfile)

		diag.NewRenderer(os.Stderr, srcfile).Render(reports)

		// Code generation is skipped iff any error-severity report exists
		// (any warning too, under --no-warnings).
		if reports.HasErrors(promote) {
			os.Exit(1)
		}

		for _, out := range outputs {
			path, contents := out.Split()

			if err := writeOutput(path, contents); err != nil {
				log.Errorf("writing %s: %v", path, err)
				os.Exit(1)
			}

			log.Infof("wrote %s", path)
		}
	},
}

// writeOutput writes one generated file, creating missing parent
// directories (§6).
func writeOutput(path, contents string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, []byte(contents), 0o644)
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Bool("no-warnings", false, "treat warnings as errors")
}

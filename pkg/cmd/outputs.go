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
	"path/filepath"
	"strings"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/diag"
	"github.com/netschema/zapc/pkg/output/luau/client"
	"github.com/netschema/zapc/pkg/output/luau/server"
	"github.com/netschema/zapc/pkg/output/tooling"
	"github.com/netschema/zapc/pkg/output/typescript"
	"github.com/netschema/zapc/pkg/parser"
	"github.com/netschema/zapc/pkg/source"
	"github.com/netschema/zapc/pkg/util"
)

// Build runs the full compiler pipeline on one schema source file,
// returning the (path, contents) pair for every file that would be written
// and the accumulated diagnostics. Emission only runs when the report set
// carries no errors; on error the output list is empty.
func Build(srcfile *source.File) ([]util.Pair[string, string], diag.Reports) {
	tree, reports := parser.Parse(srcfile)
	if tree == nil {
		// Lexing failed outright; there is nothing to convert.
		return nil, reports
	}

	cfg, more := config.Convert(tree)
	reports = append(reports, more...)

	if reports.HasErrors(false) {
		return nil, reports
	}

	opts := cfg.Options

	outputs := []util.Pair[string, string]{
		util.NewPair(opts.ServerOutput, server.Emit(&cfg)),
		util.NewPair(opts.ClientOutput, client.Emit(&cfg)),
	}

	if opts.Tooling {
		outputs = append(outputs, util.NewPair(opts.ToolingOutput, tooling.Emit(&cfg)))
	}

	if opts.Typescript {
		outputs = append(outputs,
			util.NewPair(SideFilePath(opts.ServerOutput), typescript.Emit(&cfg, config.Server)),
			util.NewPair(SideFilePath(opts.ClientOutput), typescript.Emit(&cfg, config.Client)),
		)
	}

	return outputs, reports
}

// SideFilePath derives the TypeScript definition path from an endpoint's
// output path (§6): when the base name is init.<ext>, the side-file is
// index.d.ts in the same directory (Rojo maps init files onto their
// containing folder, and roblox-ts resolves the folder through index.d.ts);
// otherwise the extension is replaced with .d.ts.
func SideFilePath(output string) string {
	dir := filepath.Dir(output)
	base := filepath.Base(output)

	if name, _, found := strings.Cut(base, "."); found && name == "init" {
		return filepath.Join(dir, "index.d.ts")
	}

	ext := filepath.Ext(base)

	return filepath.Join(dir, strings.TrimSuffix(base, ext)+".d.ts")
}

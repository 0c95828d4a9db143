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
package cmd_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/netschema/zapc/pkg/cmd"
	"github.com/netschema/zapc/pkg/internal/assert"
	"github.com/netschema/zapc/pkg/source"
)

func build(t *testing.T, path string) ([]string, bool) {
	t.Helper()

	bytes, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	outputs, reports := cmd.Build(source.NewSourceFile(path, bytes))

	paths := make([]string, len(outputs))
	for i, out := range outputs {
		paths[i] = out.Left
	}

	return paths, reports.HasErrors(false)
}

func Test_Build_ValidSchemas(t *testing.T) {
	matches, err := filepath.Glob("testdata/valid/*.zap")
	if err != nil || len(matches) == 0 {
		t.Fatalf("no valid fixtures found: %v", err)
	}

	for _, path := range matches {
		paths, failed := build(t, path)
		assert.False(t, failed, "unexpected errors in %s", path)
		assert.True(t, len(paths) >= 2, "expected at least server+client output for %s", path)
	}
}

func Test_Build_InvalidSchemasEmitNothing(t *testing.T) {
	matches, err := filepath.Glob("testdata/invalid/*.zap")
	if err != nil || len(matches) == 0 {
		t.Fatalf("no invalid fixtures found: %v", err)
	}

	for _, path := range matches {
		paths, failed := build(t, path)
		assert.True(t, failed, "expected errors in %s", path)
		assert.Equal(t, 0, len(paths), "no outputs may be produced for %s", path)
	}
}

// Property 5: identical input bytes and option set produce byte-identical
// outputs.
func Test_Build_IsDeterministic(t *testing.T) {
	path := filepath.Join("testdata", "valid", "chat.zap")

	bytes, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	first, _ := cmd.Build(source.NewSourceFile(path, bytes))
	second, _ := cmd.Build(source.NewSourceFile(path, bytes))

	assert.Equal(t, len(first), len(second))

	for i := range first {
		assert.Equal(t, first[i].Left, second[i].Left)
		assert.Equal(t, first[i].Right, second[i].Right)
	}
}

// All five outputs appear once tooling and typescript are enabled.
func Test_Build_EnablesOptionalOutputs(t *testing.T) {
	paths, failed := build(t, filepath.Join("testdata", "valid", "chat.zap"))
	assert.False(t, failed)
	assert.Equal(t, 5, len(paths))
}

func Test_SideFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("network", "server.d.ts"), cmd.SideFilePath(filepath.Join("network", "server.luau")))
	assert.Equal(t, filepath.Join("src", "shared", "index.d.ts"), cmd.SideFilePath(filepath.Join("src", "shared", "init.luau")))
	assert.Equal(t, filepath.Join("src", "index.d.ts"), cmd.SideFilePath(filepath.Join("src", "init.lua")))
	assert.Equal(t, "client.d.ts", cmd.SideFilePath("client.luau"))
}

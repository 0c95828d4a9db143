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
package config_test

import (
	"fmt"
	"testing"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/internal/assert"
	"github.com/netschema/zapc/pkg/parser"
	"github.com/netschema/zapc/pkg/source"
)

func convert(t *testing.T, input string) (config.Config, bool) {
	t.Helper()

	tree, perrs := parser.Parse(source.NewSourceFile("test.zap", []byte(input)))
	assert.Equal(t, 0, len(perrs))

	cfg, reports := config.Convert(tree)

	return cfg, reports.HasErrors(false)
}

// The `num` family widens from the declared range, consulting max alone in
// both branches: unsigned u8→u32 (then f64) when min >= 0; signed i8→i32
// otherwise, pinned to i32 when max is itself negative.
func Test_NumFamilySelection(t *testing.T) {
	cases := []struct {
		decl   string
		family config.NumFamily
	}{
		{"num[0..200]", config.U8},
		{"num[0..300]", config.U16},
		{"num[0..70000]", config.U32},
		{"num[0..5000000000]", config.F64},
		{"num[-5..10]", config.I8},
		{"num[-300..10]", config.I8},
		{"num[-40000..1]", config.I8},
		{"num[-1..200]", config.I16},
		{"num[-1..40000]", config.I32},
		{"num[-10..-1]", config.I32},
	}

	for _, c := range cases {
		cfg, failed := convert(t, fmt.Sprintf("type N = %s", c.decl))
		assert.False(t, failed, "unexpected errors for %s", c.decl)
		assert.Equal(t, c.family, cfg.Types[0].Type.Family, "wrong family for %s", c.decl)
	}
}

func Test_RangeExceedingFamilyIsError(t *testing.T) {
	_, failed := convert(t, "type N = u8[0..300]")
	assert.True(t, failed)
}

func Test_RangeMinAboveMaxIsError(t *testing.T) {
	_, failed := convert(t, "type N = u16[10..5]")
	assert.True(t, failed)
}

func Test_LengthBeyondCapIsError(t *testing.T) {
	_, failed := convert(t, "type S = string[0..70000]")
	assert.True(t, failed)
}

func Test_OptionalOfOptionalIsError(t *testing.T) {
	_, failed := convert(t, "type T = u8??")
	assert.True(t, failed)
}

func Test_OptionalMapKeyIsError(t *testing.T) {
	_, failed := convert(t, "type T = map[u8?]u8")
	assert.True(t, failed)
}

func Test_EmptyEnumIsError(t *testing.T) {
	_, failed := convert(t, "type T = enum { }")
	assert.True(t, failed)
}

func Test_TagFieldCollisionIsError(t *testing.T) {
	_, failed := convert(t, `type T = enum "kind" { A { kind: u8 } }`)
	assert.True(t, failed)
}

func Test_ClassConstraintOnlyOnInstance(t *testing.T) {
	_, failed := convert(t, "type T = Vector3(BasePart)")
	assert.True(t, failed)

	_, failed = convert(t, "type T = Instance(BasePart)")
	assert.False(t, failed)
}

func Test_PlatformReferencesResolve(t *testing.T) {
	cfg, failed := convert(t, "type T = struct { a: Vector3, b: CFrame, c: boolean, d: unknown }")
	assert.False(t, failed)

	fields := cfg.Types[0].Type.Fields
	assert.Equal(t, config.Vector3, fields[0].Type.Platform)
	assert.Equal(t, config.CFrame, fields[1].Type.Platform)
	assert.Equal(t, config.Boolean, fields[2].Type.Platform)
	assert.Equal(t, config.Unknown, fields[3].Type.Platform)
}

// Bounded recursion through an optional or zero-minimum container is
// accepted; the size analysis must also terminate on it.
func Test_BoundedRecursionThroughOptional(t *testing.T) {
	cfg, failed := convert(t, "type Tree = struct { value: u8, left: Tree?, right: Tree? }")
	assert.False(t, failed)
	assert.True(t, cfg.MaxPayloadSize(cfg.Types[0].Type) > 0)
}

func Test_MutualRecursionRejected(t *testing.T) {
	_, failed := convert(t, `
		type A = struct { b: B }
		type B = struct { a: A }
	`)
	assert.True(t, failed)
}

func Test_UnknownOptionIsWarningOnly(t *testing.T) {
	tree, _ := parser.Parse(source.NewSourceFile("test.zap", []byte("opt nonsense = true\ntype T = u8")))
	_, reports := config.Convert(tree)

	assert.False(t, reports.HasErrors(false))
	assert.True(t, reports.HasErrors(true))
}

func Test_YieldTypeRequiresAsyncLib(t *testing.T) {
	_, failed := convert(t, `opt yield_type = promise`)
	assert.True(t, failed)

	_, failed = convert(t, "opt yield_type = promise\nopt async_lib = \"require(game.ReplicatedStorage.Promise)\"")
	assert.False(t, failed)
}

func Test_AsyncLibWithYieldIsError(t *testing.T) {
	_, failed := convert(t, `opt async_lib = "require(x)"`)
	assert.True(t, failed)
}

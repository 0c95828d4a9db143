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
package parser_test

import (
	"testing"

	"github.com/netschema/zapc/pkg/ast"
	"github.com/netschema/zapc/pkg/internal/assert"
	"github.com/netschema/zapc/pkg/parser"
	"github.com/netschema/zapc/pkg/source"
)

func parse(t *testing.T, input string) (*ast.File, int) {
	t.Helper()

	file, reports := parser.Parse(source.NewSourceFile("test.zap", []byte(input)))

	return file, len(reports)
}

func Test_Parse_AllDeclarationKinds(t *testing.T) {
	file, errs := parse(t, `
		opt casing = snake_case
		opt remote_scope = "Net"
		type Health = u8[0..100]
		event Damage = { from: Server, type: Reliable, call: ManyAsync, data: (amount: Health) }
		funct Add = { call: Sync, args: (a: u8, b: u8), rets: (u16) }
	`)

	assert.Equal(t, 0, errs)
	assert.Equal(t, 2, len(file.Options))
	assert.Equal(t, 1, len(file.Types))
	assert.Equal(t, 1, len(file.Events))
	assert.Equal(t, 1, len(file.Functs))
	assert.Equal(t, "Damage", file.Events[0].Name)
	assert.Equal(t, "ManyAsync", file.Events[0].Call)
	assert.Equal(t, 2, len(file.Functs[0].Args))
	assert.Equal(t, 1, len(file.Functs[0].Rets))
}

func Test_Parse_RangeSuffixForms(t *testing.T) {
	file, errs := parse(t, `
		type A = u16[..100]
		type B = string[5..20]
		type C = A[0..]
		type D = f32[-1.5..1.5]
	`)

	assert.Equal(t, 0, errs)
	assert.Equal(t, 4, len(file.Types))

	num := file.Types[0].Type.(*ast.NumExpr)
	assert.True(t, num.Range.Min == nil)
	assert.Equal(t, 100.0, *num.Range.Max)

	str := file.Types[1].Type.(*ast.StringExpr)
	assert.Equal(t, 5.0, *str.Range.Min)
	assert.Equal(t, 20.0, *str.Range.Max)

	arr := file.Types[2].Type.(*ast.ArrExpr)
	assert.Equal(t, "A", arr.Elem.(*ast.RefExpr).Name)
	assert.Equal(t, 0.0, *arr.Range.Min)
	assert.True(t, arr.Range.Max == nil)

	flt := file.Types[3].Type.(*ast.NumExpr)
	assert.Equal(t, -1.5, *flt.Range.Min)
}

func Test_Parse_OptionalMarker(t *testing.T) {
	file, errs := parse(t, `type A = u8?`)

	assert.Equal(t, 0, errs)

	opt := file.Types[0].Type.(*ast.OptExpr)
	assert.Equal(t, "u8", opt.Inner.(*ast.NumExpr).Family)
}

func Test_Parse_ContainerTypes(t *testing.T) {
	file, errs := parse(t, `
		type M = map[string]u8
		type S = set[u16]
		type T = struct { x: u8, y: u8 }
	`)

	assert.Equal(t, 0, errs)

	m := file.Types[0].Type.(*ast.MapExpr)
	assert.Equal(t, "u8", m.Val.(*ast.NumExpr).Family)

	s := file.Types[1].Type.(*ast.SetExpr)
	assert.Equal(t, "u16", s.Elem.(*ast.NumExpr).Family)

	st := file.Types[2].Type.(*ast.StructExpr)
	assert.Equal(t, 2, len(st.Fields))
	assert.Equal(t, "y", st.Fields[1].Name)
}

func Test_Parse_Enums(t *testing.T) {
	file, errs := parse(t, `
		type Mode = enum { Idle, Walking, Running }
		type Shape = enum "kind" { Circle { radius: f32 }, Square { side: f32 } }
	`)

	assert.Equal(t, 0, errs)

	unit := file.Types[0].Type.(*ast.EnumExpr)
	assert.True(t, unit.Tag == nil)
	assert.Equal(t, 3, len(unit.Variants))

	tagged := file.Types[1].Type.(*ast.EnumExpr)
	assert.Equal(t, "kind", *tagged.Tag)
	assert.Equal(t, 2, len(tagged.Variants))
	assert.Equal(t, "radius", tagged.Variants[0].Fields[0].Name)
}

func Test_Parse_InstanceClassConstraint(t *testing.T) {
	file, errs := parse(t, `type P = Instance(BasePart)`)

	assert.Equal(t, 0, errs)

	ref := file.Types[0].Type.(*ast.RefExpr)
	assert.Equal(t, "Instance", ref.Name)
	assert.Equal(t, "BasePart", *ref.Class)
}

// A malformed declaration is reported and skipped; parsing resumes at the
// next top-level keyword.
func Test_Parse_RecoversAtNextDeclaration(t *testing.T) {
	file, errs := parse(t, `
		type Broken = = u8
		type Fine = u16
	`)

	assert.True(t, errs > 0)
	assert.Equal(t, 1, len(file.Types))
	assert.Equal(t, "Fine", file.Types[0].Name)
}

func Test_Parse_NamedReturnRejected(t *testing.T) {
	file, errs := parse(t, `funct F = { call: Sync, args: (), rets: (x: u8) }`)

	assert.True(t, errs > 0)
	// The type itself is still recovered so conversion can continue.
	assert.Equal(t, 1, len(file.Functs))
	assert.Equal(t, 1, len(file.Functs[0].Rets))
}

func Test_Parse_EmptyStringOptionValue(t *testing.T) {
	file, errs := parse(t, `opt async_lib = ""`)

	assert.Equal(t, 0, errs)
	assert.Equal(t, ast.StringValue, file.Options[0].Value.Kind)
	assert.Equal(t, "", file.Options[0].Value.Str)
}

func Test_Parse_CommentsAndWhitespaceIgnored(t *testing.T) {
	file, errs := parse(t, `
		// leading comment
		type A = u8 // trailing comment
	`)

	assert.Equal(t, 0, errs)
	assert.Equal(t, 1, len(file.Types))
}

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
package irgen_test

import (
	"testing"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/internal/assert"
	"github.com/netschema/zapc/pkg/irgen"
)

var cursor = irgen.Cursor{
	Buf:  irgen.Ident{Name: "buff"},
	Pos:  irgen.Ident{Name: "pos"},
	Refs: irgen.Ident{Name: "refs"},
}

func gen(checks bool) *irgen.Generator {
	cfg := &config.Config{Options: config.Options{WriteChecks: checks}}
	return irgen.NewGenerator(cfg)
}

func f64p(v float64) *float64 { return &v }

// frameBalance walks a statement stream counting open frames; a correct
// stream ends at zero and never dips negative (§9: every Begin is paired
// with exactly one End).
func frameBalance(t *testing.T, stmts []irgen.Stmt) {
	t.Helper()

	open := 0

	for _, s := range stmts {
		switch s.(type) {
		case irgen.NumForBegin, irgen.GenForBegin, irgen.BranchBegin:
			open++
		case irgen.Else:
			assert.True(t, open > 0)
		case irgen.End:
			open--
			assert.True(t, open >= 0)
		}
	}

	assert.Equal(t, 0, open)
}

func countKind[T irgen.Stmt](stmts []irgen.Stmt) int {
	n := 0

	for _, s := range stmts {
		if _, ok := s.(T); ok {
			n++
		}
	}

	return n
}

func Test_Serialize_NumWithChecks(t *testing.T) {
	ty := config.Type{Kind: config.KindNum, Family: config.U8, Range: config.Range{Min: f64p(0), Max: f64p(100)}}

	stmts := gen(true).Serialize(ty, irgen.Ident{Name: "value"}, cursor, irgen.NewNames())
	frameBalance(t, stmts)
	assert.Equal(t, 1, countKind[irgen.Assert](stmts))

	// Disabling write_checks drops the assertion but not the write.
	stmts = gen(false).Serialize(ty, irgen.Ident{Name: "value"}, cursor, irgen.NewNames())
	assert.Equal(t, 0, countKind[irgen.Assert](stmts))
	assert.Equal(t, 1, countKind[irgen.CallStmt](stmts))
}

func Test_Serialize_OptionalEmitsDiscriminantBranch(t *testing.T) {
	inner := config.Type{Kind: config.KindNum, Family: config.U8}
	ty := config.Type{Kind: config.KindOpt, Elem: &inner}

	stmts := gen(false).Serialize(ty, irgen.Ident{Name: "value"}, cursor, irgen.NewNames())
	frameBalance(t, stmts)
	assert.Equal(t, 1, countKind[irgen.BranchBegin](stmts))
	assert.Equal(t, 1, countKind[irgen.Else](stmts))
}

// Maps reserve a 2-byte slot, count entries through a generic loop, then
// back-patch the slot — the write to the remembered offset must come after
// the loop's End (§4.3: "the only use of back-patching").
func Test_Serialize_MapBackPatchesLength(t *testing.T) {
	key := config.Type{Kind: config.KindString, Range: config.Range{Min: f64p(0), Max: f64p(20)}}
	val := config.Type{Kind: config.KindNum, Family: config.U8}
	ty := config.Type{Kind: config.KindMap, Key: &key, Val: &val}

	stmts := gen(false).Serialize(ty, irgen.Ident{Name: "value"}, cursor, irgen.NewNames())
	frameBalance(t, stmts)
	assert.Equal(t, 1, countKind[irgen.GenForBegin](stmts))

	endIdx, patchIdx := -1, -1

	for i, s := range stmts {
		switch s.(type) {
		case irgen.End:
			endIdx = i
		case irgen.CallStmt:
			patchIdx = i
		}
	}

	assert.True(t, patchIdx > endIdx)
}

func Test_Serialize_SetOmitsValueHalf(t *testing.T) {
	elem := config.Type{Kind: config.KindNum, Family: config.U16}
	ty := config.Type{Kind: config.KindSet, Elem: &elem}

	stmts := gen(false).Serialize(ty, irgen.Ident{Name: "value"}, cursor, irgen.NewNames())
	frameBalance(t, stmts)

	// One generic-for with a single loop variable: the key only.
	for _, s := range stmts {
		if loop, ok := s.(irgen.GenForBegin); ok {
			assert.Equal(t, 1, len(loop.Vars))
		}
	}
}

func Test_Deserialize_TaggedEnumDispatchChain(t *testing.T) {
	u8 := config.Type{Kind: config.KindNum, Family: config.U8}
	ty := config.Type{
		Kind: config.KindEnum,
		Tag:  "kind",
		Variants: []config.Variant{
			{Name: "A", Fields: []config.Field{{Name: "x", Type: u8}}},
			{Name: "B", Fields: []config.Field{{Name: "y", Type: u8}}},
		},
	}

	stmts, val := gen(false).Deserialize(ty, cursor, irgen.NewNames())
	frameBalance(t, stmts)

	// One branch per variant, and an out-of-range Raise as the innermost
	// else — the deserializer never yields a partial value (§4.3).
	assert.Equal(t, 2, countKind[irgen.BranchBegin](stmts))
	assert.Equal(t, 1, countKind[irgen.Raise](stmts))

	if _, ok := val.(irgen.Ident); !ok {
		t.Fatalf("expected decoded value to be a fresh local, got %T", val)
	}
}

func Test_Deserialize_UnitEnumRaisesOnUnknownTag(t *testing.T) {
	ty := config.Type{
		Kind:     config.KindEnum,
		Variants: []config.Variant{{Name: "On"}, {Name: "Off"}},
	}

	stmts, _ := gen(false).Deserialize(ty, cursor, irgen.NewNames())
	frameBalance(t, stmts)
	assert.Equal(t, 1, countKind[irgen.Raise](stmts))
}

func Test_Serialize_StructConcatenatesFieldsInOrder(t *testing.T) {
	u8 := config.Type{Kind: config.KindNum, Family: config.U8}
	u16 := config.Type{Kind: config.KindNum, Family: config.U16}
	ty := config.Type{Kind: config.KindStruct, Fields: []config.Field{
		{Name: "a", Type: u8},
		{Name: "b", Type: u16},
	}}

	stmts := gen(false).Serialize(ty, irgen.Ident{Name: "value"}, cursor, irgen.NewNames())
	frameBalance(t, stmts)
	// Two writes, two cursor advances, nothing else.
	assert.Equal(t, 2, countKind[irgen.CallStmt](stmts))
	assert.Equal(t, 2, countKind[irgen.Assign](stmts))
}

func Test_Serialize_RefDispatchesToNamedCodec(t *testing.T) {
	ty := config.Type{Kind: config.KindRef, Ref: "Foo"}

	stmts := gen(false).Serialize(ty, irgen.Ident{Name: "value"}, cursor, irgen.NewNames())
	assert.Equal(t, 1, len(stmts))

	set := stmts[0].(irgen.Assign)
	call := set.Values[0].(irgen.Call)
	assert.Equal(t, irgen.WriteFuncName("Foo"), call.Fn.(irgen.Ident).Name)
}

func Test_Serialize_InstanceWritesToRefList(t *testing.T) {
	ty := config.Type{Kind: config.KindPlatform, Platform: config.Instance, Class: "BasePart"}

	stmts := gen(true).Serialize(ty, irgen.Ident{Name: "value"}, cursor, irgen.NewNames())
	// Class predicate assertion first, then the side-channel insert; no
	// bytes are written to the buffer at all.
	assert.Equal(t, 1, countKind[irgen.Assert](stmts))
	assert.Equal(t, 1, countKind[irgen.CallStmt](stmts))
	assert.Equal(t, 0, countKind[irgen.Assign](stmts))
}

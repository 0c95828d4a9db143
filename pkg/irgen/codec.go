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
package irgen

import (
	"fmt"

	"github.com/netschema/zapc/pkg/config"
)

// Cursor threads the three pieces of state every codec statement needs:
// the buffer being read or written, the byte offset within it, and the
// out-of-band reference list for opaque handles (Instance values).
//
// Pos is always the same Ident across an entire codec function body. Luau
// has no reference parameters, so advancing it is always an Assign to that
// one pre-declared local — never a LocalBind, which would merely shadow it
// for the remainder of the innermost block and silently lose the advance
// once a loop or branch frame closes (see DESIGN.md).
type Cursor struct {
	Buf  Expr
	Pos  Expr
	Refs Expr
}

// WriteFuncName is the generated serializer function name for a user type
// declaration, used both when defining it and when a KindRef dispatches to
// it.
func WriteFuncName(typeName string) string { return "write_" + typeName }

// ReadFuncName is the generated deserializer function name for a user type
// declaration.
func ReadFuncName(typeName string) string { return "read_" + typeName }

// numeric family -> (write primitive, read primitive, width in bytes), per
// Luau's buffer library (buffer.write*/read*, all real Roblox primitives).
var numericOps = map[config.NumFamily]struct {
	write string
	read  string
	width int
}{
	config.U8:  {"writeu8", "readu8", 1},
	config.I8:  {"writei8", "readi8", 1},
	config.U16: {"writeu16", "readu16", 2},
	config.I16: {"writei16", "readi16", 2},
	config.U32: {"writeu32", "readu32", 4},
	config.I32: {"writei32", "readi32", 4},
	config.F32: {"writef32", "readf32", 4},
	config.F64: {"writef64", "readf64", 8},
}

// Generator produces serialize/deserialize statement streams for a
// resolved Config's types, per the contracts of §4.3.
type Generator struct {
	cfg  *config.Config
	opts config.Options
}

// NewGenerator builds a Generator bound to a converted Config.
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg, opts: cfg.Options}
}

func bufferFn(name string) Expr { return Dot(Ident{"buffer"}, name) }

func advance(cur Cursor, by Expr) Stmt { return Set(cur.Pos, Add(cur.Pos, by)) }

// Serialize returns the statement stream that writes value (an arbitrary
// Luau expression denoting the field's current value) into cur, advancing
// cur.Pos as it goes. n names a fresh local for any intermediate bindings
// this call needs (length counters, loop variables); callers generating a
// whole struct or event should share a single *names across all of its
// fields so temporaries never collide.
func (g *Generator) Serialize(t config.Type, value Expr, cur Cursor, n *names) []Stmt {
	switch t.Kind {
	case config.KindNum:
		return g.serializeNum(t, value, cur)
	case config.KindString:
		return g.serializeBytes(t, value, cur, n, "writestring", Len{value})
	case config.KindBuf:
		return g.serializeBytes(t, value, cur, n, "copy", Invoke(Dot(Ident{"buffer"}, "len"), value))
	case config.KindArr:
		return g.serializeArr(t, value, cur, n)
	case config.KindMap:
		return g.serializeMap(t, value, cur, n, true)
	case config.KindSet:
		return g.serializeMap(t, value, cur, n, false)
	case config.KindOpt:
		return g.serializeOpt(t, value, cur, n)
	case config.KindStruct:
		return g.serializeStruct(t, value, cur, n)
	case config.KindEnum:
		if t.IsTagged() {
			return g.serializeTaggedEnum(t, value, cur, n)
		}

		return g.serializeUnitEnum(t, value, cur)
	case config.KindPlatform:
		return g.serializePlatform(t, value, cur, n)
	case config.KindRef:
		return []Stmt{Set(cur.Pos, Invoke(Ident{WriteFuncName(t.Ref)}, cur.Buf, cur.Pos, value, cur.Refs))}
	default:
		return nil
	}
}

// Deserialize returns the statement stream that reads a value of type t
// out of cur, advancing cur.Pos, and the expression holding the decoded
// value: a freshly bound local, or, for platform types, a constructor
// expression over freshly bound locals.
func (g *Generator) Deserialize(t config.Type, cur Cursor, n *names) ([]Stmt, Expr) {
	switch t.Kind {
	case config.KindNum:
		return g.deserializeNum(t, cur, n)
	case config.KindString:
		return g.deserializeBytes(t, cur, n)
	case config.KindBuf:
		return g.deserializeBytes(t, cur, n)
	case config.KindArr:
		return g.deserializeArr(t, cur, n)
	case config.KindMap:
		return g.deserializeMap(t, cur, n, true)
	case config.KindSet:
		return g.deserializeMap(t, cur, n, false)
	case config.KindOpt:
		return g.deserializeOpt(t, cur, n)
	case config.KindStruct:
		return g.deserializeStruct(t, cur, n)
	case config.KindEnum:
		if t.IsTagged() {
			return g.deserializeTaggedEnum(t, cur, n)
		}

		return g.deserializeUnitEnum(t, cur, n)
	case config.KindPlatform:
		return g.deserializePlatform(t, cur, n)
	case config.KindRef:
		v := n.fresh("v")
		// read_<name> returns (pos, value), mirroring write_<name>'s
		// returned pos.
		stmts := []Stmt{
			LocalBind{Names: []string{v}},
			Assign{Targets: []Expr{cur.Pos, Ident{v}}, Values: []Expr{
				Invoke(Ident{ReadFuncName(t.Ref)}, cur.Buf, cur.Pos, cur.Refs),
			}},
		}

		return stmts, Ident{v}
	default:
		return nil, Nil{}
	}
}

// ---------------------------------------------------------------------
// Numerics
// ---------------------------------------------------------------------

func rangeAssert(value Expr, r config.Range, label string) (Stmt, bool) {
	var cond Expr

	if r.Min != nil {
		cond = Bin{Op: ">=", Left: value, Right: Number{*r.Min}}
	}

	if r.Max != nil {
		hi := Expr(Bin{Op: "<=", Left: value, Right: Number{*r.Max}})
		if cond != nil {
			cond = And(cond, hi)
		} else {
			cond = hi
		}
	}

	if cond == nil {
		return nil, false
	}

	return Assert{Cond: cond, Message: fmt.Sprintf("%s out of range [%s]", label, r.String())}, true
}

func (g *Generator) serializeNum(t config.Type, value Expr, cur Cursor) []Stmt {
	ops := numericOps[t.Family]

	var stmts []Stmt

	if g.opts.WriteChecks {
		if a, ok := rangeAssert(value, t.Range, string(t.Family)); ok {
			stmts = append(stmts, a)
		}
	}

	stmts = append(stmts,
		CallStmt{Call: Invoke(bufferFn(ops.write), cur.Buf, cur.Pos, value)},
		advance(cur, Number{float64(ops.width)}),
	)

	return stmts
}

func (g *Generator) deserializeNum(t config.Type, cur Cursor, n *names) ([]Stmt, Expr) {
	ops := numericOps[t.Family]
	v := n.fresh("v")

	stmts := []Stmt{
		LocalBind{Names: []string{v}, Values: []Expr{Invoke(bufferFn(ops.read), cur.Buf, cur.Pos)}},
		advance(cur, Number{float64(ops.width)}),
	}

	if g.opts.WriteChecks {
		if a, ok := rangeAssert(Ident{v}, t.Range, string(t.Family)); ok {
			stmts = append(stmts, a)
		}
	}

	return stmts, Ident{v}
}

// ---------------------------------------------------------------------
// Strings and buffers
// ---------------------------------------------------------------------

// serializeBytes handles both KindString and KindBuf: copyFn is the
// primitive used to transfer the exact-length payload ("writestring" for
// a Luau string, "copy" for a source buffer); lenExpr computes the
// runtime length of value when the range is not exact.
func (g *Generator) serializeBytes(t config.Type, value Expr, cur Cursor, n *names, copyFn string, lenExpr Expr) []Stmt {
	if t.Range.Exact() {
		width := Number{*t.Range.Min}

		if copyFn == "copy" {
			return []Stmt{
				CallStmt{Call: Invoke(bufferFn("copy"), cur.Buf, cur.Pos, value, Number{0}, width)},
				advance(cur, width),
			}
		}

		return []Stmt{
			CallStmt{Call: Invoke(bufferFn("writestring"), cur.Buf, cur.Pos, value, width)},
			advance(cur, width),
		}
	}

	l := n.fresh("len")
	stmts := []Stmt{LocalBind{Names: []string{l}, Values: []Expr{lenExpr}}}

	if g.opts.WriteChecks {
		if a, ok := rangeAssert(Ident{l}, t.Range, "length"); ok {
			stmts = append(stmts, a)
		}
	}

	stmts = append(stmts,
		CallStmt{Call: Invoke(bufferFn("writeu16"), cur.Buf, cur.Pos, Ident{l})},
		advance(cur, Number{2}),
	)

	if copyFn == "copy" {
		stmts = append(stmts,
			CallStmt{Call: Invoke(bufferFn("copy"), cur.Buf, cur.Pos, value, Number{0}, Ident{l})},
		)
	} else {
		stmts = append(stmts,
			CallStmt{Call: Invoke(bufferFn("writestring"), cur.Buf, cur.Pos, value, Ident{l})},
		)
	}

	return append(stmts, advance(cur, Ident{l}))
}

func (g *Generator) deserializeBytes(t config.Type, cur Cursor, n *names) ([]Stmt, Expr) {
	isBuf := t.Kind == config.KindBuf
	v := n.fresh("v")

	if t.Range.Exact() {
		width := Number{*t.Range.Min}

		var readCall Expr
		if isBuf {
			readCall = Invoke(Dot(Ident{"buffer"}, "create"), width)
		} else {
			readCall = Invoke(bufferFn("readstring"), cur.Buf, cur.Pos, width)
		}

		stmts := []Stmt{LocalBind{Names: []string{v}, Values: []Expr{readCall}}}

		if isBuf {
			stmts = append(stmts, CallStmt{Call: Invoke(bufferFn("copy"), Ident{v}, Number{0}, cur.Buf, cur.Pos, width)})
		}

		return append(stmts, advance(cur, width)), Ident{v}
	}

	l := n.fresh("len")
	stmts := []Stmt{
		LocalBind{Names: []string{l}, Values: []Expr{Invoke(bufferFn("readu16"), cur.Buf, cur.Pos)}},
		advance(cur, Number{2}),
	}

	if g.opts.WriteChecks {
		if a, ok := rangeAssert(Ident{l}, t.Range, "length"); ok {
			stmts = append(stmts, a)
		}
	}

	var readCall Expr
	if isBuf {
		readCall = Invoke(Dot(Ident{"buffer"}, "create"), Ident{l})
	} else {
		readCall = Invoke(bufferFn("readstring"), cur.Buf, cur.Pos, Ident{l})
	}

	stmts = append(stmts, LocalBind{Names: []string{v}, Values: []Expr{readCall}})

	if isBuf {
		stmts = append(stmts, CallStmt{Call: Invoke(bufferFn("copy"), Ident{v}, Number{0}, cur.Buf, cur.Pos, Ident{l})})
	}

	return append(stmts, advance(cur, Ident{l})), Ident{v}
}

// ---------------------------------------------------------------------
// Arrays
// ---------------------------------------------------------------------

func (g *Generator) serializeArr(t config.Type, value Expr, cur Cursor, n *names) []Stmt {
	i := n.fresh("i")
	elemStmts := g.Serialize(*t.Elem, At(value, Ident{i}), cur, n)

	if t.Range.Exact() {
		return wrapNumFor(i, Number{1}, Number{*t.Range.Min}, elemStmts)
	}

	l := n.fresh("len")
	stmts := []Stmt{LocalBind{Names: []string{l}, Values: []Expr{Len{value}}}}

	if g.opts.WriteChecks {
		if a, ok := rangeAssert(Ident{l}, t.Range, "array length"); ok {
			stmts = append(stmts, a)
		}
	}

	stmts = append(stmts,
		CallStmt{Call: Invoke(bufferFn("writeu16"), cur.Buf, cur.Pos, Ident{l})},
		advance(cur, Number{2}),
	)

	return append(stmts, wrapNumFor(i, Number{1}, Ident{l}, elemStmts)...)
}

func (g *Generator) deserializeArr(t config.Type, cur Cursor, n *names) ([]Stmt, Expr) {
	v := n.fresh("v")
	i := n.fresh("i")

	var lenExpr Expr

	var stmts []Stmt

	if t.Range.Exact() {
		lenExpr = Number{*t.Range.Min}
	} else {
		l := n.fresh("len")
		stmts = append(stmts,
			LocalBind{Names: []string{l}, Values: []Expr{Invoke(bufferFn("readu16"), cur.Buf, cur.Pos)}},
			advance(cur, Number{2}),
		)

		if g.opts.WriteChecks {
			if a, ok := rangeAssert(Ident{l}, t.Range, "array length"); ok {
				stmts = append(stmts, a)
			}
		}

		lenExpr = Ident{l}
	}

	// table.create pre-sizes the array to its known length.
	stmts = append(stmts, LocalBind{Names: []string{v}, Values: []Expr{Invoke(Dot(Ident{"table"}, "create"), lenExpr)}})

	elemStmts, elemVal := g.Deserialize(*t.Elem, cur, n)
	elemStmts = append(elemStmts, Set(At(Ident{v}, Ident{i}), elemVal))

	stmts = append(stmts, wrapNumFor(i, Number{1}, lenExpr, elemStmts)...)

	return stmts, Ident{v}
}

func wrapNumFor(v string, from, to Expr, body []Stmt) []Stmt {
	stmts := make([]Stmt, 0, len(body)+2)
	stmts = append(stmts, NumForBegin{Var: v, From: from, To: to})
	stmts = append(stmts, body...)
	stmts = append(stmts, End{})

	return stmts
}

// ---------------------------------------------------------------------
// Maps and sets
// ---------------------------------------------------------------------

func (g *Generator) serializeMap(t config.Type, value Expr, cur Cursor, n *names, withValue bool) []Stmt {
	lenPos := n.fresh("lenPos")
	count := n.fresh("count")
	k := n.fresh("k")

	stmts := []Stmt{
		LocalBind{Names: []string{lenPos}, Values: []Expr{cur.Pos}},
		advance(cur, Number{2}),
		LocalBind{Names: []string{count}, Values: []Expr{Number{0}}},
	}

	// A set carries its element type in Elem; Key is only set for maps.
	keyT := t.Key
	if !withValue {
		keyT = t.Elem
	}

	body := g.Serialize(*keyT, Ident{k}, cur, n)
	vars := []string{k}

	if withValue {
		v := n.fresh("mv")
		body = append(body, g.Serialize(*t.Val, Ident{v}, cur, n)...)
		vars = append(vars, v)
	}

	body = append(body, Set(Ident{count}, Add(Ident{count}, Number{1})))
	stmts = append(stmts, wrapGenFor(vars, Invoke(Ident{"pairs"}, value), body)...)

	stmts = append(stmts, CallStmt{Call: Invoke(bufferFn("writeu16"), cur.Buf, Ident{lenPos}, Ident{count})})

	return stmts
}

func (g *Generator) deserializeMap(t config.Type, cur Cursor, n *names, withValue bool) ([]Stmt, Expr) {
	v := n.fresh("v")
	l := n.fresh("len")
	i := n.fresh("i")

	stmts := []Stmt{
		LocalBind{Names: []string{l}, Values: []Expr{Invoke(bufferFn("readu16"), cur.Buf, cur.Pos)}},
		advance(cur, Number{2}),
		// A map/set decodes into a fresh, empty Luau table literal.
		LocalBind{Names: []string{v}, Values: []Expr{tableLiteral()}},
	}

	keyT := t.Key
	if !withValue {
		keyT = t.Elem
	}

	keyStmts, keyVal := g.Deserialize(*keyT, cur, n)

	var body []Stmt
	if withValue {
		valStmts, val := g.Deserialize(*t.Val, cur, n)
		body = append(append(keyStmts, valStmts...), Set(At(Ident{v}, keyVal), val))
	} else {
		body = append(keyStmts, Set(At(Ident{v}, keyVal), Bool{true}))
	}

	stmts = append(stmts, wrapNumFor(i, Number{1}, Ident{l}, body)...)

	return stmts, Ident{v}
}

// tableLiteral denotes the empty table constructor `{}`. It is modelled as
// an Ident named "{}" rather than a dedicated Expr kind; the printer writes
// an Ident's name verbatim, so it renders as `{}`.
func tableLiteral() Expr { return Ident{"{}"} }

func wrapGenFor(vars []string, iter Expr, body []Stmt) []Stmt {
	stmts := make([]Stmt, 0, len(body)+2)
	stmts = append(stmts, GenForBegin{Vars: vars, Iter: iter})
	stmts = append(stmts, body...)
	stmts = append(stmts, End{})

	return stmts
}

// ---------------------------------------------------------------------
// Optionals
// ---------------------------------------------------------------------

func (g *Generator) serializeOpt(t config.Type, value Expr, cur Cursor, n *names) []Stmt {
	inner := g.Serialize(*t.Elem, value, cur, n)

	return flatten([]Stmt{
		BranchBegin{Cond: Eq(value, Nil{})},
		CallStmt{Call: Invoke(bufferFn("writeu8"), cur.Buf, cur.Pos, Number{0})},
		advance(cur, Number{1}),
		Else{},
		CallStmt{Call: Invoke(bufferFn("writeu8"), cur.Buf, cur.Pos, Number{1})},
		advance(cur, Number{1}),
		stmtsAsOne(inner),
		End{},
	})
}

// stmtsAsOne is a no-op marker used only to keep the Serialize call above
// readable; the slice it wraps is spliced flat by flatten before the
// emitter ever sees it.
func stmtsAsOne(stmts []Stmt) Stmt { return block(stmts) }

// block is a pseudo-statement that exists only within this file: flatten
// below expands it back into its constituent statements so nothing
// downstream of Generator ever observes one.
type block []Stmt

func (block) isStmt() {}

// flatten inlines every block marker in stmts, producing the true flat
// stream described in §9.
func flatten(stmts []Stmt) []Stmt {
	out := make([]Stmt, 0, len(stmts))

	for _, s := range stmts {
		if b, ok := s.(block); ok {
			out = append(out, flatten(b)...)
			continue
		}

		out = append(out, s)
	}

	return out
}

func (g *Generator) deserializeOpt(t config.Type, cur Cursor, n *names) ([]Stmt, Expr) {
	v := n.fresh("v")
	tag := n.fresh("tag")

	innerStmts, innerVal := g.Deserialize(*t.Elem, cur, n)

	stmts := []Stmt{
		LocalBind{Names: []string{tag}, Values: []Expr{Invoke(bufferFn("readu8"), cur.Buf, cur.Pos)}},
		advance(cur, Number{1}),
		LocalBind{Names: []string{v}},
		BranchBegin{Cond: Eq(Ident{tag}, Number{0})},
		Set(Ident{v}, Nil{}),
		Else{},
		stmtsAsOne(innerStmts),
		Set(Ident{v}, innerVal),
		End{},
	}

	return flatten(stmts), Ident{v}
}

// ---------------------------------------------------------------------
// Structs
// ---------------------------------------------------------------------

func (g *Generator) serializeStruct(t config.Type, value Expr, cur Cursor, n *names) []Stmt {
	var stmts []Stmt

	for _, f := range t.Fields {
		stmts = append(stmts, g.Serialize(f.Type, Dot(value, f.Name), cur, n)...)
	}

	return stmts
}

func (g *Generator) deserializeStruct(t config.Type, cur Cursor, n *names) ([]Stmt, Expr) {
	v := n.fresh("v")
	stmts := []Stmt{LocalBind{Names: []string{v}, Values: []Expr{tableLiteral()}}}

	for _, f := range t.Fields {
		fStmts, fVal := g.Deserialize(f.Type, cur, n)
		stmts = append(stmts, fStmts...)
		stmts = append(stmts, Set(Dot(Ident{v}, f.Name), fVal))
	}

	return stmts, Ident{v}
}

// ---------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------

// discWidth returns the narrowest unsigned integer family covering
// [0, count-1] (§4.3: "write the narrowest integer that fits").
func discWidth(count int) (write, read string, width int) {
	switch {
	case count <= 256:
		return "writeu8", "readu8", 1
	case count <= 65536:
		return "writeu16", "readu16", 2
	default:
		return "writeu32", "readu32", 4
	}
}

func (g *Generator) serializeTaggedEnum(t config.Type, value Expr, cur Cursor, n *names) []Stmt {
	// Chain of BranchBegin/Else frames, one per variant in declaration
	// order, nested so each Else only needs to consider the remaining
	// variants; the innermost Else is an unreachable-guard Raise.
	var build func(i int) []Stmt

	build = func(i int) []Stmt {
		if i == len(t.Variants) {
			return []Stmt{Raise{Message: fmt.Sprintf("unknown variant for enum tagged by '%s'", t.Tag)}}
		}

		v := t.Variants[i]
		idx := float64(i)
		write, _, width := discWidth(len(t.Variants))

		var body []Stmt
		body = append(body,
			CallStmt{Call: Invoke(bufferFn(write), cur.Buf, cur.Pos, Number{idx})},
			advance(cur, Number{float64(width)}),
		)

		for _, f := range v.Fields {
			body = append(body, g.Serialize(f.Type, Dot(value, f.Name), cur, n)...)
		}

		return []Stmt{
			BranchBegin{Cond: Eq(Dot(value, t.Tag), String{v.Name})},
			stmtsAsOne(body),
			Else{},
			stmtsAsOne(build(i + 1)),
			End{},
		}
	}

	return flatten(build(0))
}

func (g *Generator) deserializeTaggedEnum(t config.Type, cur Cursor, n *names) ([]Stmt, Expr) {
	_, read, width := discWidth(len(t.Variants))

	tag := n.fresh("tag")
	v := n.fresh("v")

	prelude := []Stmt{
		LocalBind{Names: []string{tag}, Values: []Expr{Invoke(bufferFn(read), cur.Buf, cur.Pos)}},
		advance(cur, Number{float64(width)}),
		LocalBind{Names: []string{v}},
	}

	var build func(i int) []Stmt

	build = func(i int) []Stmt {
		if i == len(t.Variants) {
			return []Stmt{Raise{Message: fmt.Sprintf("enum tag out of range for '%s'", t.Tag)}}
		}

		variant := t.Variants[i]

		var body []Stmt
		body = append(body, Set(Ident{v}, tableLiteral()))
		body = append(body, Set(Dot(Ident{v}, t.Tag), String{variant.Name}))

		for _, f := range variant.Fields {
			fStmts, fVal := g.Deserialize(f.Type, cur, n)
			body = append(body, fStmts...)
			body = append(body, Set(Dot(Ident{v}, f.Name), fVal))
		}

		return []Stmt{
			BranchBegin{Cond: Eq(Ident{tag}, Number{float64(i)})},
			stmtsAsOne(body),
			Else{},
			stmtsAsOne(build(i + 1)),
			End{},
		}
	}

	return flatten(append(prelude, build(0)...)), Ident{v}
}

func (g *Generator) serializeUnitEnum(t config.Type, value Expr, cur Cursor) []Stmt {
	write, _, width := discWidth(len(t.Variants))

	var build func(i int) []Stmt

	build = func(i int) []Stmt {
		if i == len(t.Variants) {
			return []Stmt{Raise{Message: "unknown enumerator"}}
		}

		return []Stmt{
			BranchBegin{Cond: Eq(value, String{t.Variants[i].Name})},
			CallStmt{Call: Invoke(bufferFn(write), cur.Buf, cur.Pos, Number{float64(i)})},
			advance(cur, Number{float64(width)}),
			Else{},
			stmtsAsOne(build(i + 1)),
			End{},
		}
	}

	return flatten(build(0))
}

func (g *Generator) deserializeUnitEnum(t config.Type, cur Cursor, n *names) ([]Stmt, Expr) {
	_, read, width := discWidth(len(t.Variants))
	tag := n.fresh("tag")
	v := n.fresh("v")

	prelude := []Stmt{
		LocalBind{Names: []string{tag}, Values: []Expr{Invoke(bufferFn(read), cur.Buf, cur.Pos)}},
		advance(cur, Number{float64(width)}),
		LocalBind{Names: []string{v}},
	}

	var build func(i int) []Stmt

	build = func(i int) []Stmt {
		if i == len(t.Variants) {
			return []Stmt{Raise{Message: "enum tag out of range"}}
		}

		return []Stmt{
			BranchBegin{Cond: Eq(Ident{tag}, Number{float64(i)})},
			Set(Ident{v}, String{t.Variants[i].Name}),
			Else{},
			stmtsAsOne(build(i + 1)),
			End{},
		}
	}

	return flatten(append(prelude, build(0)...)), Ident{v}
}

// ---------------------------------------------------------------------
// Platform value types
// ---------------------------------------------------------------------

func (g *Generator) serializePlatform(t config.Type, value Expr, cur Cursor, n *names) []Stmt {
	writeF32 := func(e Expr) []Stmt {
		return []Stmt{CallStmt{Call: Invoke(bufferFn("writef32"), cur.Buf, cur.Pos, e)}, advance(cur, Number{4})}
	}

	switch t.Platform {
	case config.Vector3:
		var stmts []Stmt
		for _, axis := range []string{"X", "Y", "Z"} {
			stmts = append(stmts, writeF32(Dot(value, axis))...)
		}

		return stmts
	case config.Vector2:
		var stmts []Stmt
		for _, axis := range []string{"X", "Y"} {
			stmts = append(stmts, writeF32(Dot(value, axis))...)
		}

		return stmts
	case config.Color3:
		var stmts []Stmt
		for _, ch := range []string{"R", "G", "B"} {
			byteVal := Invoke(Dot(Ident{"math"}, "round"), Bin{Op: "*", Left: Dot(value, ch), Right: Number{255}})
			stmts = append(stmts,
				CallStmt{Call: Invoke(bufferFn("writeu8"), cur.Buf, cur.Pos, byteVal)},
				advance(cur, Number{1}),
			)
		}

		return stmts
	case config.CFrame:
		axis := n.fresh("axis")
		angle := n.fresh("angle")
		packed := n.fresh("packed")

		var stmts []Stmt
		stmts = append(stmts, writeF32(Dot(Dot(value, "Position"), "X"))...)
		stmts = append(stmts, writeF32(Dot(Dot(value, "Position"), "Y"))...)
		stmts = append(stmts, writeF32(Dot(Dot(value, "Position"), "Z"))...)
		stmts = append(stmts, LocalBind{
			Names:  []string{axis, angle},
			Values: []Expr{InvokeMethod(value, "ToAxisAngle")},
		})
		stmts = append(stmts, LocalBind{
			Names:  []string{packed},
			Values: []Expr{Bin{Op: "*", Left: Ident{axis}, Right: Ident{angle}}},
		})
		stmts = append(stmts, writeF32(Dot(Ident{packed}, "X"))...)
		stmts = append(stmts, writeF32(Dot(Ident{packed}, "Y"))...)
		stmts = append(stmts, writeF32(Dot(Ident{packed}, "Z"))...)

		return stmts
	case config.AlignedCFrame:
		idx := n.fresh("idx")
		var stmts []Stmt
		stmts = append(stmts, writeF32(Dot(Dot(value, "Position"), "X"))...)
		stmts = append(stmts, writeF32(Dot(Dot(value, "Position"), "Y"))...)
		stmts = append(stmts, writeF32(Dot(Dot(value, "Position"), "Z"))...)
		stmts = append(stmts, LocalBind{
			Names: []string{idx},
			Values: []Expr{Invoke(Dot(Ident{"table"}, "find"),
				Ident{"CFRAME_SPECIAL_CASES"}, Dot(value, "Rotation")),
			},
		})
		stmts = append(stmts, Assert{
			Cond:    Bin{Op: "~=", Left: Ident{idx}, Right: Nil{}},
			Message: "CFrame orientation is not one of the 24 axis-aligned canonical rotations",
		})
		stmts = append(stmts,
			CallStmt{Call: Invoke(bufferFn("writeu8"), cur.Buf, cur.Pos, Bin{Op: "-", Left: Ident{idx}, Right: Number{1}})},
			advance(cur, Number{1}),
		)

		return stmts
	case config.DateTime, config.DateTimeMillis:
		field := "UnixTimestamp"
		if t.Platform == config.DateTimeMillis {
			field = "UnixTimestampMillis"
		}

		return []Stmt{
			CallStmt{Call: Invoke(bufferFn("writef64"), cur.Buf, cur.Pos, Dot(value, field))},
			advance(cur, Number{8}),
		}
	case config.Boolean:
		byteVal := IfExpr{Cond: value, Then: Number{1}, Else: Number{0}}

		return []Stmt{
			CallStmt{Call: Invoke(bufferFn("writeu8"), cur.Buf, cur.Pos, byteVal)},
			advance(cur, Number{1}),
		}
	case config.Instance:
		stmts := []Stmt{CallStmt{Call: Invoke(Dot(Ident{"table"}, "insert"), cur.Refs, value)}}

		if t.Class != "" {
			stmts = append([]Stmt{Assert{
				Cond:    InvokeMethod(value, "IsA", String{t.Class}),
				Message: fmt.Sprintf("Instance is not of class '%s'", t.Class),
			}}, stmts...)
		}

		return stmts
	default:
		return nil
	}
}

// deserializePlatform mirrors serializePlatform field-for-field, so a
// round-trip through the wire is bit-exact on every platform value type
// except CFrame (which reconstructs the rotation from axis*angle, not a
// byte-identical matrix) and Color3 (which loses sub-1/255 precision on
// the forward direction, not the reverse).
func (g *Generator) deserializePlatform(t config.Type, cur Cursor, n *names) ([]Stmt, Expr) {
	readF32 := func(name string) (Stmt, Expr) {
		v := n.fresh(name)
		return LocalBind{Names: []string{v}, Values: []Expr{Invoke(bufferFn("readf32"), cur.Buf, cur.Pos)}}, Ident{v}
	}

	advanceF32 := func() Stmt { return advance(cur, Number{4}) }

	switch t.Platform {
	case config.Vector3:
		xs, x := readF32("x")
		ys, y := readF32("y")
		zs, z := readF32("z")

		stmts := []Stmt{xs, advanceF32(), ys, advanceF32(), zs, advanceF32()}

		return stmts, Invoke(Dot(Ident{"Vector3"}, "new"), x, y, z)
	case config.Vector2:
		xs, x := readF32("x")
		ys, y := readF32("y")

		stmts := []Stmt{xs, advanceF32(), ys, advanceF32()}

		return stmts, Invoke(Dot(Ident{"Vector2"}, "new"), x, y)
	case config.Color3:
		r := n.fresh("r")
		gr := n.fresh("g")
		b := n.fresh("b")

		chByte := func(local string) Stmt {
			return LocalBind{Names: []string{local}, Values: []Expr{Invoke(bufferFn("readu8"), cur.Buf, cur.Pos)}}
		}

		stmts := []Stmt{
			chByte(r), advance(cur, Number{1}),
			chByte(gr), advance(cur, Number{1}),
			chByte(b), advance(cur, Number{1}),
		}

		div255 := func(e Expr) Expr { return Bin{Op: "/", Left: e, Right: Number{255}} }

		return stmts, Invoke(Dot(Ident{"Color3"}, "new"), div255(Ident{r}), div255(Ident{gr}), div255(Ident{b}))
	case config.CFrame:
		xs, x := readF32("px")
		ys, y := readF32("py")
		zs, z := readF32("pz")
		axs, ax := readF32("ax")
		ays, ay := readF32("ay")
		azs, az := readF32("az")

		angle := n.fresh("angle")
		axis := n.fresh("axis")
		packed := n.fresh("packed")

		stmts := []Stmt{
			xs, advanceF32(), ys, advanceF32(), zs, advanceF32(),
			axs, advanceF32(), ays, advanceF32(), azs, advanceF32(),
			LocalBind{Names: []string{packed}, Values: []Expr{Invoke(Dot(Ident{"Vector3"}, "new"), ax, ay, az)}},
			LocalBind{Names: []string{angle}, Values: []Expr{Dot(Ident{packed}, "Magnitude")}},
			LocalBind{Names: []string{axis}, Values: []Expr{Invoke(Dot(Ident{"Vector3"}, "new"), Number{0}, Number{1}, Number{0})}},
			BranchBegin{Cond: Bin{Op: ">", Left: Ident{angle}, Right: Number{0}}},
			Set(Ident{axis}, Bin{Op: "/", Left: Ident{packed}, Right: Ident{angle}}),
			End{},
		}

		pos := Invoke(Dot(Ident{"CFrame"}, "new"), x, y, z)
		rot := Invoke(Dot(Ident{"CFrame"}, "fromAxisAngle"), Ident{axis}, Ident{angle})

		return stmts, Bin{Op: "*", Left: pos, Right: rot}
	case config.AlignedCFrame:
		xs, x := readF32("px")
		ys, y := readF32("py")
		zs, z := readF32("pz")

		idx := n.fresh("idx")

		stmts := []Stmt{
			xs, advanceF32(), ys, advanceF32(), zs, advanceF32(),
			LocalBind{Names: []string{idx}, Values: []Expr{Invoke(bufferFn("readu8"), cur.Buf, cur.Pos)}},
			advance(cur, Number{1}),
		}

		pos := Invoke(Dot(Ident{"CFrame"}, "new"), x, y, z)
		rot := At(Ident{"CFRAME_SPECIAL_CASES"}, Add(Ident{idx}, Number{1}))

		return stmts, Bin{Op: "*", Left: pos, Right: rot}
	case config.DateTime, config.DateTimeMillis:
		v := n.fresh("ts")
		ctor := "fromUnixTimestamp"

		if t.Platform == config.DateTimeMillis {
			ctor = "fromUnixTimestampMillis"
		}

		stmts := []Stmt{
			LocalBind{Names: []string{v}, Values: []Expr{Invoke(bufferFn("readf64"), cur.Buf, cur.Pos)}},
			advance(cur, Number{8}),
		}

		return stmts, Invoke(Dot(Ident{"DateTime"}, ctor), Ident{v})
	case config.Boolean:
		v := n.fresh("v")

		stmts := []Stmt{
			LocalBind{Names: []string{v}, Values: []Expr{Invoke(bufferFn("readu8"), cur.Buf, cur.Pos)}},
			advance(cur, Number{1}),
		}

		return stmts, Eq(Ident{v}, Number{1})
	case config.Instance:
		// Refs arrive in the same order they were written (§6: "consumed
		// positionally"); popping the front of the list keeps both
		// directions using a single shared cursor-free counter.
		v := n.fresh("v")

		stmts := []Stmt{
			LocalBind{Names: []string{v}, Values: []Expr{Invoke(Dot(Ident{"table"}, "remove"), cur.Refs, Number{1})}},
		}

		if t.Class != "" {
			stmts = append(stmts, Assert{
				Cond:    InvokeMethod(Ident{v}, "IsA", String{t.Class}),
				Message: fmt.Sprintf("Instance is not of class '%s'", t.Class),
			})
		}

		return stmts, Ident{v}
	default:
		return nil, Nil{}
	}
}

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

// Package luau implements the structured pretty-printer shared by the
// server and client emitters (§4.4): a push/indent/dedent buffer (grounded
// in original_source/zap/src/output/luau/{server,client}.rs's Output trait)
// plus a renderer that walks a flat pkg/irgen.Stmt stream, recovering Luau
// block structure purely by matching Begin/End frame markers (§9).
package luau

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/netschema/zapc/pkg/irgen"
)

// Printer accumulates generated Luau source with tab-width indentation
// tracking, mirroring the teacher's push/push_indent/indent/dedent quartet.
type Printer struct {
	buf  strings.Builder
	tabs int
}

// Push appends s verbatim with no indentation or trailing newline.
func (p *Printer) Push(s string) { p.buf.WriteString(s) }

// PushIndent writes the current indentation (one tab per nesting level).
func (p *Printer) PushIndent() { p.buf.WriteString(strings.Repeat("\t", p.tabs)) }

// Indent increases the nesting level by one.
func (p *Printer) Indent() { p.tabs++ }

// Dedent decreases the nesting level by one.
func (p *Printer) Dedent() { p.tabs-- }

// Line writes one indented, newline-terminated line.
func (p *Printer) Line(format string, args ...any) {
	p.PushIndent()
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

// Blank writes an empty line.
func (p *Printer) Blank() { p.buf.WriteByte('\n') }

// String returns the accumulated buffer.
func (p *Printer) String() string { return p.buf.String() }

// Len returns the number of bytes accumulated so far.
func (p *Printer) Len() int { return p.buf.Len() }

// Block runs body with the indentation increased by one, then restores it;
// used for the common push-header/indent/...body.../dedent/push-footer
// shape that recurs throughout the emitters.
func (p *Printer) Block(body func()) {
	p.Indent()
	body()
	p.Dedent()
}

// ---------------------------------------------------------------------
// Expression rendering
// ---------------------------------------------------------------------

// Expr renders a single irgen.Expr as Luau source text.
func Expr(e irgen.Expr) string {
	switch x := e.(type) {
	case irgen.Ident:
		return x.Name
	case irgen.Number:
		return formatNumber(x.Value)
	case irgen.String:
		return strconv.Quote(x.Value)
	case irgen.Bool:
		if x.Value {
			return "true"
		}

		return "false"
	case irgen.Nil:
		return "nil"
	case irgen.Field:
		return Expr(x.Base) + "." + x.Name
	case irgen.Index:
		return Expr(x.Base) + "[" + Expr(x.Key) + "]"
	case irgen.Len:
		return "#" + Expr(x.Operand)
	case irgen.Call:
		return Expr(x.Fn) + "(" + joinExprs(x.Args) + ")"
	case irgen.MethodCall:
		return Expr(x.Recv) + ":" + x.Method + "(" + joinExprs(x.Args) + ")"
	case irgen.Bin:
		return Expr(x.Left) + " " + x.Op + " " + Expr(x.Right)
	case irgen.Un:
		return x.Op + " " + Expr(x.Operand)
	case irgen.IfExpr:
		return "if " + Expr(x.Cond) + " then " + Expr(x.Then) + " else " + Expr(x.Else)
	default:
		panic(fmt.Sprintf("luau: unhandled expr kind %T", e))
	}
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}

func joinExprs(es []irgen.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = Expr(e)
	}

	return strings.Join(parts, ", ")
}

func joinIdents(names []string) string { return strings.Join(names, ", ") }

// ---------------------------------------------------------------------
// Statement rendering
// ---------------------------------------------------------------------

// RenderStmts walks a flat irgen.Stmt stream and writes it to p as indented
// Luau source. It is the single point in the compiler that recovers block
// structure from the flat stream: a counter of open frames is implicit in
// Printer's own tabs field, since Indent/Dedent already nest correctly as
// long as every *Begin is paired with exactly one End (guaranteed by
// pkg/irgen, §9).
func (p *Printer) RenderStmts(stmts []irgen.Stmt) {
	for _, s := range stmts {
		p.renderStmt(s)
	}
}

func (p *Printer) renderStmt(s irgen.Stmt) {
	switch x := s.(type) {
	case irgen.LocalBind:
		if len(x.Values) == 0 {
			p.Line("local %s", joinIdents(x.Names))
			return
		}

		p.Line("local %s = %s", joinIdents(x.Names), joinExprs(x.Values))
	case irgen.Assign:
		p.Line("%s = %s", joinExprs(x.Targets), joinExprs(x.Values))
	case irgen.CallStmt:
		p.Line("%s", Expr(x.Call))
	case irgen.NumForBegin:
		if x.Step != nil {
			p.Line("for %s = %s, %s, %s do", x.Var, Expr(x.From), Expr(x.To), Expr(x.Step))
		} else {
			p.Line("for %s = %s, %s do", x.Var, Expr(x.From), Expr(x.To))
		}

		p.Indent()
	case irgen.GenForBegin:
		p.Line("for %s in %s do", joinIdents(x.Vars), Expr(x.Iter))
		p.Indent()
	case irgen.BranchBegin:
		p.Line("if %s then", Expr(x.Cond))
		p.Indent()
	case irgen.Else:
		p.Dedent()
		p.Line("else")
		p.Indent()
	case irgen.End:
		p.Dedent()
		p.Line("end")
	case irgen.Assert:
		p.Line("assert(%s, %s)", Expr(x.Cond), strconv.Quote(x.Message))
	case irgen.Raise:
		p.Line("error(%s)", strconv.Quote(x.Message))
	case irgen.Return:
		if len(x.Values) == 0 {
			p.Line("return")
			return
		}

		p.Line("return %s", joinExprs(x.Values))
	case irgen.Break:
		p.Line("break")
	default:
		panic(fmt.Sprintf("luau: unhandled stmt kind %T", s))
	}
}

// SortedKeys returns m's keys sorted for deterministic iteration, used
// everywhere the emitter walks a map (e.g. Config.TypeIndex) so that two
// compilations of the same input always produce byte-identical output
// (§8 property 5).
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

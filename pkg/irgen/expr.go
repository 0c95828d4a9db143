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

// Package irgen implements the IR codec generator (§4.3): given a resolved
// pkg/config.Type and a cursor over a buffer, value and reference list,
// produce the serialize and deserialize statement streams an emitter prints
// as Luau source. The IR only ever names things by string (a local variable,
// a field, a generated function) and never holds a pointer into pkg/config,
// matching the "never a direct pointer" discipline of §9.
package irgen

// Expr is the sum of every expression form the codec generator emits. It is
// a closed interface, not a general-purpose Luau expression AST: only the
// shapes the codec needs are represented.
type Expr interface {
	isExpr()
}

// Ident is a bare name: a local variable, parameter, or global such as
// "buffer" or "table".
type Ident struct {
	Name string
}

// Number is a numeric literal.
type Number struct {
	Value float64
}

// String is a string literal, printed with Luau quoting by the emitter.
type String struct {
	Value string
}

// Bool is a boolean literal.
type Bool struct {
	Value bool
}

// Nil is the literal `nil`.
type Nil struct{}

// Field is `Base.Name`.
type Field struct {
	Base Expr
	Name string
}

// Index is `Base[Key]`.
type Index struct {
	Base Expr
	Key  Expr
}

// Len is `#Operand`.
type Len struct {
	Operand Expr
}

// Call is `Fn(Args...)`.
type Call struct {
	Fn   Expr
	Args []Expr
}

// MethodCall is `Recv:Method(Args...)`.
type MethodCall struct {
	Recv   Expr
	Method string
	Args   []Expr
}

// Bin is a binary operator expression: Op is one of the Luau infix
// operators ("+", "-", "==", "and", "or", "..", ...).
type Bin struct {
	Op          string
	Left, Right Expr
}

// Un is a unary operator expression: Op is "-" or "not".
type Un struct {
	Op      string
	Operand Expr
}

// IfExpr is Luau's if-then-else expression form: `if Cond then Then else
// Else`. Used for small value-level choices (e.g. a boolean-to-byte
// conversion) that would be needlessly verbose as a branch statement.
type IfExpr struct {
	Cond, Then, Else Expr
}

func (Ident) isExpr()      {}
func (Number) isExpr()     {}
func (String) isExpr()     {}
func (Bool) isExpr()       {}
func (Nil) isExpr()        {}
func (Field) isExpr()      {}
func (Index) isExpr()      {}
func (Len) isExpr()        {}
func (Call) isExpr()       {}
func (MethodCall) isExpr() {}
func (Bin) isExpr()        {}
func (Un) isExpr()         {}
func (IfExpr) isExpr()     {}

// Dot builds a Field access.
func Dot(base Expr, name string) Expr { return Field{Base: base, Name: name} }

// At builds an Index access.
func At(base, key Expr) Expr { return Index{Base: base, Key: key} }

// Invoke builds a Call.
func Invoke(fn Expr, args ...Expr) Expr { return Call{Fn: fn, Args: args} }

// InvokeMethod builds a MethodCall.
func InvokeMethod(recv Expr, method string, args ...Expr) Expr {
	return MethodCall{Recv: recv, Method: method, Args: args}
}

// Eq, Add, And and Or build the binary operator expressions the codec
// generator needs; the remaining operators are constructed with Bin
// directly since they appear at only one call site each.
func Eq(l, r Expr) Expr  { return Bin{Op: "==", Left: l, Right: r} }
func Add(l, r Expr) Expr { return Bin{Op: "+", Left: l, Right: r} }
func And(l, r Expr) Expr { return Bin{Op: "and", Left: l, Right: r} }
func Or(l, r Expr) Expr  { return Bin{Op: "or", Left: l, Right: r} }

// Not builds a unary negation.
func Not(x Expr) Expr { return Un{Op: "not", Operand: x} }

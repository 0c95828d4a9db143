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

// Package ast defines the syntax tree produced by pkg/parser: a direct,
// largely unvalidated transcription of the surface grammar (§4.1 of the
// schema). Resolution, range-checking, id assignment and all other
// semantic work happens one layer up, in pkg/config.
package ast

import "github.com/netschema/zapc/pkg/source"

// Node is implemented by every element of the syntax tree, giving the
// converter and diagnostic renderer a uniform way to recover the span of
// original text a node came from.
type Node interface {
	Span() source.Span
}

// File is the root of the syntax tree: the flat list of top-level
// declarations recovered from one schema source file, in declaration
// order.
type File struct {
	Options []*OptionDecl
	Types   []*TypeDecl
	Events  []*EventDecl
	Functs  []*FunctDecl
}

// OptionDecl is `opt name = value`.
type OptionDecl struct {
	Name     string
	NameSpan source.Span
	Value    Value
	span     source.Span
}

// Span implements Node.
func (d *OptionDecl) Span() source.Span { return d.span }

// NewOptionDecl constructs an option declaration.
func NewOptionDecl(name string, nameSpan source.Span, value Value, span source.Span) *OptionDecl {
	return &OptionDecl{name, nameSpan, value, span}
}

// ValueKind distinguishes the literal forms an option's right-hand side may
// take.
type ValueKind uint8

const (
	// BoolValue is `true` / `false`.
	BoolValue ValueKind = iota
	// NumberValue is a decimal literal.
	NumberValue
	// StringValue is a double-quoted string literal.
	StringValue
	// IdentValue is a bare identifier (used for enum-like option values,
	// e.g. `opt casing = Pascal`).
	IdentValue
)

// Value is the right-hand side of an option assignment.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Number float64
	Str    string
	span   source.Span
}

// Span implements Node.
func (v Value) Span() source.Span { return v.span }

// NewBoolValue constructs a boolean option value.
func NewBoolValue(b bool, span source.Span) Value { return Value{Kind: BoolValue, Bool: b, span: span} }

// NewNumberValue constructs a numeric option value.
func NewNumberValue(n float64, span source.Span) Value {
	return Value{Kind: NumberValue, Number: n, span: span}
}

// NewStringValue constructs a string option value.
func NewStringValue(s string, span source.Span) Value {
	return Value{Kind: StringValue, Str: s, span: span}
}

// NewIdentValue constructs a bare-identifier option value.
func NewIdentValue(s string, span source.Span) Value {
	return Value{Kind: IdentValue, Str: s, span: span}
}

// TypeDecl is `type Name = TypeExpr`.
type TypeDecl struct {
	Name     string
	NameSpan source.Span
	Type     TypeExpr
	span     source.Span
}

// Span implements Node.
func (d *TypeDecl) Span() source.Span { return d.span }

// NewTypeDecl constructs a type declaration.
func NewTypeDecl(name string, nameSpan source.Span, ty TypeExpr, span source.Span) *TypeDecl {
	return &TypeDecl{name, nameSpan, ty, span}
}

// Param is a (name?, type) pair, used for event/function parameters and
// struct fields. Function returns are not Params: FunctDecl.Rets holds
// plain TypeExprs.
type Param struct {
	Name     string
	NameSpan source.Span
	Type     TypeExpr
}

// EventDecl is `event Name = { from, type, call, data }`.
type EventDecl struct {
	Name     string
	NameSpan source.Span
	From     string // "Server" or "Client"
	FromSpan source.Span
	Reliable string // "Reliable" or "Unreliable"
	TypeSpan source.Span
	Call     string // "SingleSync" | "SingleAsync" | "ManySync" | "ManyAsync"
	CallSpan source.Span
	Data     []Param
	span     source.Span
}

// Span implements Node.
func (d *EventDecl) Span() source.Span { return d.span }

// WithSpan returns a copy of the declaration with its overall span set;
// used once the closing brace has been consumed.
func (d *EventDecl) WithSpan(span source.Span) *EventDecl {
	d.span = span
	return d
}

// FunctDecl is `funct Name = { call, args, rets }`.
type FunctDecl struct {
	Name     string
	NameSpan source.Span
	Call     string // "Sync" | "Async"
	CallSpan source.Span
	Args     []Param
	Rets     []TypeExpr
	span     source.Span
}

// Span implements Node.
func (d *FunctDecl) Span() source.Span { return d.span }

// WithSpan returns a copy of the declaration with its overall span set;
// used once the closing brace has been consumed.
func (d *FunctDecl) WithSpan(span source.Span) *FunctDecl {
	d.span = span
	return d
}

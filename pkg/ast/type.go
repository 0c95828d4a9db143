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
package ast

import "github.com/netschema/zapc/pkg/source"

// TypeExpr is the sum of every type-expression form the grammar admits
// (§3, §4.1). Unlike pkg/config.Type, a TypeExpr is not yet resolved: a
// RefExpr may name either a user type declaration or a built-in platform
// type, and ranges have not been validated.
type TypeExpr interface {
	Node
	isTypeExpr()
}

// RangeExpr is an optional `[min..max]` suffix. Either bound may be absent.
type RangeExpr struct {
	Min  *float64
	Max  *float64
	span source.Span
}

// Span implements Node.
func (r *RangeExpr) Span() source.Span { return r.span }

// NewRangeExpr constructs a range expression.
func NewRangeExpr(min, max *float64, span source.Span) *RangeExpr {
	return &RangeExpr{min, max, span}
}

type baseExpr struct {
	span source.Span
}

func (b baseExpr) Span() source.Span { return b.span }
func (baseExpr) isTypeExpr()         {}

// NumExpr is a numeric type expression: either an explicit family keyword
// (`u8`, `f32`, ...) or the bare `num` family inferred later from range, each
// with an optional range.
type NumExpr struct {
	baseExpr
	Family string // "u8","u16","u32","i8","i16","i32","f32","f64","num"
	Range  *RangeExpr
}

// NewNumExpr constructs a numeric type expression.
func NewNumExpr(family string, rng *RangeExpr, span source.Span) *NumExpr {
	return &NumExpr{baseExpr{span}, family, rng}
}

// StringExpr is `string[range]`.
type StringExpr struct {
	baseExpr
	Range *RangeExpr
}

// NewStringExpr constructs a string type expression.
func NewStringExpr(rng *RangeExpr, span source.Span) *StringExpr {
	return &StringExpr{baseExpr{span}, rng}
}

// BufExpr is `buff[range]`, a length-bounded byte buffer.
type BufExpr struct {
	baseExpr
	Range *RangeExpr
}

// NewBufExpr constructs a buffer type expression.
func NewBufExpr(rng *RangeExpr, span source.Span) *BufExpr {
	return &BufExpr{baseExpr{span}, rng}
}

// ArrExpr is `Elem[range]` (array of Elem, distinguished from a scalar
// range-suffix by the parser based on Elem's shape).
type ArrExpr struct {
	baseExpr
	Elem  TypeExpr
	Range *RangeExpr
}

// NewArrExpr constructs an array type expression.
func NewArrExpr(elem TypeExpr, rng *RangeExpr, span source.Span) *ArrExpr {
	return &ArrExpr{baseExpr{span}, elem, rng}
}

// MapExpr is `map[Key]Value`.
type MapExpr struct {
	baseExpr
	Key TypeExpr
	Val TypeExpr
}

// NewMapExpr constructs a map type expression.
func NewMapExpr(key, val TypeExpr, span source.Span) *MapExpr {
	return &MapExpr{baseExpr{span}, key, val}
}

// SetExpr is `set[Elem]`.
type SetExpr struct {
	baseExpr
	Elem TypeExpr
}

// NewSetExpr constructs a set type expression.
func NewSetExpr(elem TypeExpr, span source.Span) *SetExpr {
	return &SetExpr{baseExpr{span}, elem}
}

// OptExpr is `Inner?`.
type OptExpr struct {
	baseExpr
	Inner TypeExpr
}

// NewOptExpr constructs an optional type expression.
func NewOptExpr(inner TypeExpr, span source.Span) *OptExpr {
	return &OptExpr{baseExpr{span}, inner}
}

// RefExpr names a type: either a user declaration or a built-in platform
// type (Vector3, Vector2, Color3, CFrame, AlignedCFrame, DateTime,
// DateTimeMillis, Instance, boolean, unknown), resolved by the converter.
type RefExpr struct {
	baseExpr
	Name  string
	Class *string // optional class constraint, e.g. Instance(BasePart)
}

// NewRefExpr constructs a named-reference type expression.
func NewRefExpr(name string, class *string, span source.Span) *RefExpr {
	return &RefExpr{baseExpr{span}, name, class}
}

// StructExpr is `struct { field: Type, ... }`.
type StructExpr struct {
	baseExpr
	Fields []Param
}

// NewStructExpr constructs a struct type expression.
func NewStructExpr(fields []Param, span source.Span) *StructExpr {
	return &StructExpr{baseExpr{span}, fields}
}

// EnumVariant is one arm of an `enum` declaration. Fields is empty for a
// unit-enum enumerator.
type EnumVariant struct {
	Name     string
	NameSpan source.Span
	Fields   []Param
}

// EnumExpr is a tagged or untagged enum. Tag holds the discriminant field
// name for a tagged enum, and is nil for a unit enum.
type EnumExpr struct {
	baseExpr
	Tag      *string
	TagSpan  source.Span
	Variants []EnumVariant
}

// NewEnumExpr constructs an enum type expression.
func NewEnumExpr(tag *string, tagSpan source.Span, variants []EnumVariant, span source.Span) *EnumExpr {
	return &EnumExpr{baseExpr{span}, tag, tagSpan, variants}
}

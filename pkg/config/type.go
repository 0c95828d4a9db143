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

// Package config implements the converter: the semantic pass that turns a
// pkg/ast.File into a resolved Config, assigning ids, resolving references,
// validating ranges and structural invariants, and detecting unbounded
// recursion. Every exported type here is fully resolved; nothing downstream
// consults pkg/ast again.
package config

import "fmt"

// NumFamily is one of the eight numeric families of §3.
type NumFamily string

// The numeric families, narrowest to widest within each signedness.
const (
	F32 NumFamily = "f32"
	F64 NumFamily = "f64"
	U8  NumFamily = "u8"
	U16 NumFamily = "u16"
	U32 NumFamily = "u32"
	I8  NumFamily = "i8"
	I16 NumFamily = "i16"
	I32 NumFamily = "i32"
)

// Range is an optional (min, max) pair of float64 bounds, mirroring
// zap/src/util.rs's Range<T> (see DESIGN.md).
type Range struct {
	Min *float64
	Max *float64
}

// Exact reports whether the range pins a single value.
func (r Range) Exact() bool {
	return r.Min != nil && r.Max != nil && *r.Min == *r.Max
}

// String renders the range the way diagnostics quote it: "min..max",
// "min..", "..max", or "..".
func (r Range) String() string {
	lo, hi := "", ""
	if r.Min != nil {
		lo = fmt.Sprintf("%v", *r.Min)
	}

	if r.Max != nil {
		hi = fmt.Sprintf("%v", *r.Max)
	}

	return lo + ".." + hi
}

// PlatformKind enumerates the platform value types of §3.
type PlatformKind string

// Platform value type names, resolved from bare RefExpr identifiers that
// match no user type declaration.
const (
	Vector3        PlatformKind = "Vector3"
	Vector2        PlatformKind = "Vector2"
	Color3         PlatformKind = "Color3"
	CFrame         PlatformKind = "CFrame"
	AlignedCFrame  PlatformKind = "AlignedCFrame"
	DateTime       PlatformKind = "DateTime"
	DateTimeMillis PlatformKind = "DateTimeMillis"
	Instance       PlatformKind = "Instance"
	Boolean        PlatformKind = "boolean"
	Unknown        PlatformKind = "unknown"
)

// Platforms indexes every recognized platform type name for reference
// resolution (step 4 of §4.2).
var Platforms = map[string]PlatformKind{
	"Vector3":        Vector3,
	"Vector2":        Vector2,
	"Color3":         Color3,
	"CFrame":         CFrame,
	"AlignedCFrame":  AlignedCFrame,
	"DateTime":       DateTime,
	"DateTimeMillis": DateTimeMillis,
	"Instance":       Instance,
	"boolean":        Boolean,
	"unknown":        Unknown,
}

// Kind discriminates the resolved shape of a Type.
type Kind uint8

// The closed set of resolved type shapes (§3).
const (
	KindNum Kind = iota
	KindString
	KindBuf
	KindArr
	KindMap
	KindSet
	KindOpt
	KindRef
	KindEnum
	KindStruct
	KindPlatform
)

// Field is a named member of a struct, enum variant, event, or function
// parameter list. Function returns are not Fields: FunctDecl.Rets holds
// plain Types.
type Field struct {
	Name string
	Type Type
}

// Variant is one arm of an enum. Fields is empty for a unit-enum
// enumerator.
type Variant struct {
	Name   string
	Fields []Field
}

// Type is the fully resolved sum described in §3. Only the fields relevant
// to Kind are meaningful; zero values elsewhere.
type Type struct {
	Kind Kind

	// KindNum
	Family NumFamily
	Range  Range // numeric value range, or string/buffer/array length range

	// KindArr, KindOpt, KindSet
	Elem *Type

	// KindMap
	Key *Type
	Val *Type

	// KindRef — name of a user type declaration. Never a pointer to the
	// declaration itself (§9): cyclic type graphs are represented purely by
	// name, looked up in Config.TypeIndex at the point of use.
	Ref string

	// KindPlatform
	Platform PlatformKind
	Class    string // optional Instance(ClassName) constraint; "" if absent

	// KindStruct
	Fields []Field

	// KindEnum
	Tag      string // discriminant field name; "" for a unit enum
	Variants []Variant
}

// IsOptional reports whether t is an optional type.
func (t Type) IsOptional() bool { return t.Kind == KindOpt }

// IsTagged reports whether t is a tagged (struct-carrying) enum.
func (t Type) IsTagged() bool { return t.Kind == KindEnum && t.Tag != "" }

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
package config

import (
	"math"

	"github.com/netschema/zapc/pkg/ast"
	"github.com/netschema/zapc/pkg/diag"
	"github.com/netschema/zapc/pkg/source"
)

// naturalRange is the (min, max) a family can represent without loss,
// consulted by step 5 ("clamp to the family's natural range").
var naturalRange = map[NumFamily][2]float64{
	U8:  {0, 255},
	U16: {0, 65535},
	U32: {0, 4294967295},
	I8:  {-128, 127},
	I16: {-32768, 32767},
	I32: {-2147483648, 2147483647},
	F32: {-3.4e38, 3.4e38},
	F64: {-math.MaxFloat64, math.MaxFloat64},
}

// resolveType resolves one ast.TypeExpr into a fully-validated config.Type
// (§4.2 steps 4-6). Errors are appended to c.reports; resolution always
// returns a best-effort value so callers never need a second return.
func (c *converter) resolveType(expr ast.TypeExpr) Type {
	switch t := expr.(type) {
	case *ast.NumExpr:
		return c.resolveNum(t)
	case *ast.StringExpr:
		return Type{Kind: KindString, Range: c.resolveLengthRange(t.Range, t.Span())}
	case *ast.BufExpr:
		return Type{Kind: KindBuf, Range: c.resolveLengthRange(t.Range, t.Span())}
	case *ast.ArrExpr:
		elem := c.resolveType(t.Elem)

		return Type{Kind: KindArr, Elem: &elem, Range: c.resolveLengthRange(t.Range, t.Span())}
	case *ast.MapExpr:
		key := c.resolveType(t.Key)
		val := c.resolveType(t.Val)

		if key.IsOptional() {
			c.reports = append(c.reports, diag.Errorf("E-OPT-KEY", t.Key.Span(), "a map key may not be optional"))
		}

		return Type{Kind: KindMap, Key: &key, Val: &val}
	case *ast.SetExpr:
		elem := c.resolveType(t.Elem)
		return Type{Kind: KindSet, Elem: &elem}
	case *ast.OptExpr:
		inner := c.resolveType(t.Inner)

		if inner.IsOptional() {
			c.reports = append(c.reports, diag.Errorf("E-OPT-OPT", t.Span(), "an optional may not directly wrap another optional"))
		}

		return Type{Kind: KindOpt, Elem: &inner}
	case *ast.RefExpr:
		return c.resolveRef(t)
	case *ast.StructExpr:
		return Type{Kind: KindStruct, Fields: c.resolveFields(t.Fields)}
	case *ast.EnumExpr:
		return c.resolveEnum(t)
	default:
		// Unreachable over the closed ast.TypeExpr sum; an internal bug if hit.
		panic("resolveType: unhandled TypeExpr")
	}
}

func (c *converter) resolveNum(t *ast.NumExpr) Type {
	rng := c.astRangeToRange(t.Range)

	inferred := t.Family == "num"

	family := NumFamily(t.Family)
	if inferred {
		family = selectNumFamily(rng)
	}

	nat, ok := naturalRange[family]
	if !ok {
		// Unrecognised family keyword slipped past the parser's allow-list;
		// treat as f64 rather than propagate a zero value downstream.
		family = F64
		nat = naturalRange[F64]
	}

	if rng.Min == nil {
		lo := nat[0]
		rng.Min = &lo
	}

	if rng.Max == nil {
		hi := nat[1]
		rng.Max = &hi
	}

	if *rng.Min > *rng.Max {
		c.reports = append(c.reports, diag.Errorf("E-RANGE", t.Span(),
			"invalid range %s: min exceeds max", rng.String()))
	}

	if *rng.Min < nat[0] || *rng.Max > nat[1] {
		// An explicit family keyword makes the oversized literal an error;
		// an inferred `num` family clamps silently, as the original does.
		if !inferred {
			c.reports = append(c.reports, diag.Errorf("E-RANGE-FAMILY", t.Span(),
				"range %s exceeds the natural range of %s", rng.String(), family))
		}

		lo, hi := nat[0], nat[1]
		if *rng.Min < lo {
			rng.Min = &lo
		}

		if *rng.Max > hi {
			rng.Max = &hi
		}
	}

	return Type{Kind: KindNum, Family: family, Range: rng}
}

// selectNumFamily implements zap/src/util.rs::NumTy::from_f64 (see
// DESIGN.md and SPEC_FULL.md §4): a signed range (min < 0) consults max
// alone — i32 when max is itself negative, else widening i8→i16→i32 — and
// an unsigned range (min >= 0) widens u8→u32, falling back to f64 only
// once max exceeds u32::MAX.
func selectNumFamily(rng Range) NumFamily {
	min, max := 0.0, 0.0
	if rng.Min != nil {
		min = *rng.Min
	}

	if rng.Max != nil {
		max = *rng.Max
	}

	if min < 0 {
		switch {
		case max < 0:
			return I32
		case max <= 127:
			return I8
		case max <= 32767:
			return I16
		default:
			return I32
		}
	}

	switch {
	case max <= 255:
		return U8
	case max <= 65535:
		return U16
	case max <= 4294967295:
		return U32
	default:
		return F64
	}
}

func (c *converter) astRangeToRange(r *ast.RangeExpr) Range {
	if r == nil {
		return Range{}
	}

	return Range{Min: r.Min, Max: r.Max}
}

// resolveLengthRange validates a string/buffer/array length range lies in
// [0, 65535] (§3). exprSpan is the span of the owning type expression, used
// when no explicit `[min..max]` suffix was written.
func (c *converter) resolveLengthRange(r *ast.RangeExpr, exprSpan source.Span) Range {
	rng := c.astRangeToRange(r)

	span := exprSpan
	if r != nil {
		span = r.Span()
	}

	zero, max := 0.0, 65535.0
	if rng.Min == nil {
		rng.Min = &zero
	}

	if rng.Max == nil {
		rng.Max = &max
	}

	if *rng.Min > *rng.Max {
		c.reports = append(c.reports, diag.Errorf("E-RANGE", span, "invalid length range %s: min exceeds max", rng.String()))
	}

	if *rng.Min < 0 || *rng.Max > 65535 {
		c.reports = append(c.reports, diag.Errorf("E-RANGE", span, "length range %s exceeds [0, 65535]", rng.String()))
	}

	return rng
}

func (c *converter) resolveRef(t *ast.RefExpr) Type {
	if kind, ok := Platforms[t.Name]; ok {
		class := ""
		if t.Class != nil {
			class = *t.Class
		}

		if class != "" && kind != Instance {
			c.reports = append(c.reports, diag.Errorf("E-CLASS-CONSTRAINT", t.Span(),
				"class constraints are only valid on Instance, not %s", t.Name))
		}

		return Type{Kind: KindPlatform, Platform: kind, Class: class}
	}

	if _, ok := c.cfg.TypeIndex[t.Name]; ok {
		return Type{Kind: KindRef, Ref: t.Name}
	}

	c.reports = append(c.reports, diag.Errorf("E-UNKNOWN-TYPE", t.Span(), "unknown type reference '%s'", t.Name))

	return Type{Kind: KindRef, Ref: t.Name}
}

func (c *converter) resolveFields(params []ast.Param) []Field {
	seen := map[string]bool{}
	fields := make([]Field, 0, len(params))

	for _, p := range params {
		if seen[p.Name] {
			c.reports = append(c.reports, diag.Errorf("E-DUP-FIELD", p.NameSpan, "duplicate field name '%s'", p.Name))
			continue
		}

		seen[p.Name] = true
		fields = append(fields, Field{Name: p.Name, Type: c.resolveType(p.Type)})
	}

	return fields
}

func (c *converter) resolveEnum(t *ast.EnumExpr) Type {
	if len(t.Variants) == 0 {
		c.reports = append(c.reports, diag.Errorf("E-EMPTY-ENUM", t.Span(), "an enum must declare at least one variant"))
	}

	tag := ""
	if t.Tag != nil {
		tag = *t.Tag
	}

	variants := make([]Variant, 0, len(t.Variants))
	seen := map[string]bool{}

	for _, v := range t.Variants {
		if seen[v.Name] {
			c.reports = append(c.reports, diag.Errorf("E-DUP-VARIANT", v.NameSpan, "duplicate enum variant '%s'", v.Name))
			continue
		}

		seen[v.Name] = true

		if tag == "" && len(v.Fields) > 0 {
			c.reports = append(c.reports, diag.Errorf("E-ENUM-SHAPE", v.NameSpan,
				"variant '%s' may not carry fields in an untagged enum", v.Name))
		}

		if tag != "" && len(v.Fields) == 0 {
			c.reports = append(c.reports, diag.Errorf("E-ENUM-SHAPE", v.NameSpan,
				"variant '%s' must carry a struct body in a tagged enum", v.Name))
		}

		for _, f := range v.Fields {
			if f.Name == tag {
				c.reports = append(c.reports, diag.Errorf("E-TAG-FIELD-COLLISION", f.NameSpan,
					"field '%s' collides with the enum's discriminant field name", f.Name))
			}
		}

		variants = append(variants, Variant{Name: v.Name, Fields: c.resolveFields(v.Fields)})
	}

	return Type{Kind: KindEnum, Tag: tag, Variants: variants}
}

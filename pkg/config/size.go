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
	"github.com/netschema/zapc/pkg/diag"
	"github.com/netschema/zapc/pkg/util"
)

var numWidth = map[NumFamily]int{
	U8: 1, I8: 1,
	U16: 2, I16: 2,
	U32: 4, I32: 4, F32: 4,
	F64: 8,
}

// payloadSize computes (min, max) serialized size in bytes for t, per the
// codec contracts of §4.3. max is empty when the size is variable. visiting
// guards against infinite recursion through a bounded-but-cyclic reference
// (e.g. a linked list): re-entering a ref already on the current path is
// conservatively sized as 0/variable, since its true size depends on a
// runtime value and step 7 has already confirmed the type is bounded.
func (c *Config) payloadSize(t Type, visiting map[string]bool) (int, util.Option[int]) {
	switch t.Kind {
	case KindNum:
		w := numWidth[t.Family]
		return w, util.Some(w)
	case KindString, KindBuf:
		if t.Range.Exact() {
			n := int(*t.Range.Min)
			return n, util.Some(n)
		}

		return 2 + int(*t.Range.Min), util.None[int]()
	case KindArr:
		emin, emax := c.payloadSize(*t.Elem, visiting)

		if t.Range.Exact() {
			n := int(*t.Range.Min)

			if emax.IsEmpty() {
				return n * emin, util.None[int]()
			}

			return n * emin, util.Some(n * emax.Unwrap())
		}

		return 2 + int(*t.Range.Min)*emin, util.None[int]()
	case KindMap, KindSet:
		return 2, util.None[int]()
	case KindOpt:
		_, imax := c.payloadSize(*t.Elem, visiting)

		if imax.IsEmpty() {
			return 1, util.None[int]()
		}

		return 1, util.Some(1 + imax.Unwrap())
	case KindStruct:
		min, max, bounded := 0, 0, true

		for _, f := range t.Fields {
			fmin, fmax := c.payloadSize(f.Type, visiting)
			min += fmin

			if fmax.HasValue() {
				max += fmax.Unwrap()
			} else {
				bounded = false
			}
		}

		if !bounded {
			return min, util.None[int]()
		}

		return min, util.Some(max)
	case KindEnum:
		if t.Tag == "" {
			return 1, util.Some(1) // unit enum discriminant; widening beyond a byte is not needed below 256 enumerators
		}

		min, max, bounded := -1, 0, true

		for _, v := range t.Variants {
			vmin, vmax := 0, 0

			for _, f := range v.Fields {
				fmin, fmax := c.payloadSize(f.Type, visiting)
				vmin += fmin

				if fmax.HasValue() {
					vmax += fmax.Unwrap()
				} else {
					bounded = false
				}
			}

			if min < 0 || vmin < min {
				min = vmin
			}

			if vmax > max {
				max = vmax
			}
		}

		if min < 0 {
			min = 0
		}

		min++

		if !bounded {
			return min, util.None[int]()
		}

		return min, util.Some(max + 1)
	case KindRef:
		if visiting[t.Ref] {
			return 0, util.None[int]()
		}

		decl, ok := c.Lookup(t.Ref)
		if !ok {
			return 0, util.None[int]()
		}

		visiting[t.Ref] = true
		min, max := c.payloadSize(decl.Type, visiting)
		delete(visiting, t.Ref)

		return min, max
	case KindPlatform:
		return platformSize(t.Platform)
	default:
		return 0, util.None[int]()
	}
}

func platformSize(k PlatformKind) (int, util.Option[int]) {
	switch k {
	case Vector3:
		return 12, util.Some(12)
	case Vector2:
		return 8, util.Some(8)
	case Color3:
		return 3, util.Some(3)
	case CFrame:
		return 24, util.Some(24)
	case AlignedCFrame:
		return 13, util.Some(13)
	case DateTime, DateTimeMillis:
		return 8, util.Some(8)
	case Boolean:
		return 1, util.Some(1)
	default: // Instance, Unknown — out-of-band or not wire-represented
		return 0, util.Some(0)
	}
}

// MaxPayloadSize returns a conservative upper bound, in bytes, for any
// value of t: every variable-length dimension (string/buffer/array length,
// map/set entry count) is sized at its explicit maximum or, absent one,
// the hard 65535 cap of §3. The emitters reserve this many bytes once, up
// front, before serializing a Fire/Call record (§4.4 item 6), then walk
// the record with pkg/irgen's plain advancing cursor exactly as the
// per-type write_<Name> functions do — unlike payloadSize (§4.2 step 8,
// which needs an honest "unknown" for the oversize diagnostic), every
// dimension here always resolves to a concrete number, since step 7 has
// already confirmed t is bounded and every length is capped at 65535.
func (c *Config) MaxPayloadSize(t Type) int {
	return c.maxPayloadSize(t, map[string]bool{})
}

const maxDynamicLen = 65535

func (c *Config) maxPayloadSize(t Type, visiting map[string]bool) int {
	switch t.Kind {
	case KindNum:
		return numWidth[t.Family]
	case KindString, KindBuf:
		if t.Range.Exact() {
			return int(*t.Range.Min)
		}

		n := maxDynamicLen
		if t.Range.Max != nil {
			n = int(*t.Range.Max)
		}

		return 2 + n
	case KindArr:
		em := c.maxPayloadSize(*t.Elem, visiting)

		if t.Range.Exact() {
			return int(*t.Range.Min) * em
		}

		n := maxDynamicLen
		if t.Range.Max != nil {
			n = int(*t.Range.Max)
		}

		return 2 + n*em
	case KindMap:
		return 2 + maxDynamicLen*(c.maxPayloadSize(*t.Key, visiting)+c.maxPayloadSize(*t.Val, visiting))
	case KindSet:
		return 2 + maxDynamicLen*c.maxPayloadSize(*t.Elem, visiting)
	case KindOpt:
		return 1 + c.maxPayloadSize(*t.Elem, visiting)
	case KindStruct:
		total := 0
		for _, f := range t.Fields {
			total += c.maxPayloadSize(f.Type, visiting)
		}

		return total
	case KindEnum:
		if t.Tag == "" {
			_, w := discWidthBytes(len(t.Variants))
			return w
		}

		_, w := discWidthBytes(len(t.Variants))
		max := 0

		for _, v := range t.Variants {
			size := 0
			for _, f := range v.Fields {
				size += c.maxPayloadSize(f.Type, visiting)
			}

			if size > max {
				max = size
			}
		}

		return w + max
	case KindRef:
		if visiting[t.Ref] {
			return 0
		}

		decl, ok := c.Lookup(t.Ref)
		if !ok {
			return 0
		}

		visiting[t.Ref] = true
		n := c.maxPayloadSize(decl.Type, visiting)
		delete(visiting, t.Ref)

		return n
	case KindPlatform:
		_, max := platformSize(t.Platform)
		return max.UnwrapOr(0)
	default:
		return 0
	}
}

// discWidthBytes mirrors pkg/irgen's private discWidth table (the
// narrowest unsigned width covering an enum's discriminant range) without
// introducing a dependency from pkg/config back onto pkg/irgen.
func discWidthBytes(count int) (string, int) {
	switch {
	case count <= 256:
		return "u8", 1
	case count <= 65536:
		return "u16", 2
	default:
		return "u32", 4
	}
}

// sizeAnalysis implements §4.2 step 8: for each unreliable event, bound the
// serialized payload against the per-bucket budget from step 2.
func (c *converter) sizeAnalysis() {
	for i, e := range c.cfg.Events {
		if e.Reliable {
			continue
		}

		count := c.cfg.ServerUnreliableCount
		if e.From == Client {
			count = c.cfg.ClientUnreliableCount
		}

		budget := UnreliableBudget(IdWidth(count))

		min, max, bounded := 0, 0, true

		for _, f := range e.Data {
			fmin, fmax := c.cfg.payloadSize(f.Type, map[string]bool{})
			min += fmin

			if fmax.HasValue() && bounded {
				max += fmax.Unwrap()
			} else {
				bounded = false
			}
		}

		span := c.file.Events[i].Span()

		if min > budget {
			c.reports = append(c.reports, diag.Errorf("E-UNRELIABLE-BUDGET", span,
				"event '%s' minimum serialized size %d exceeds the unreliable budget of %d bytes", e.Name, min, budget))

			continue
		}

		if !bounded || max >= budget {
			c.reports = append(c.reports, diag.Warnf("W-UNRELIABLE-BUDGET", span,
				"event '%s' may exceed the unreliable budget of %d bytes", e.Name, budget))
		}
	}
}

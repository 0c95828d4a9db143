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

import "github.com/netschema/zapc/pkg/diag"

// unboundedEdges collects the set of type-declaration names reachable from
// t without crossing a size-bounding construct (§4.2 step 7): an optional,
// a map, a set, or an array whose minimum length is zero all break the
// chain, since each admits a finite (indeed zero-length) base case.
func unboundedEdges(t Type, out map[string]bool) {
	switch t.Kind {
	case KindRef:
		out[t.Ref] = true
	case KindStruct:
		for _, f := range t.Fields {
			unboundedEdges(f.Type, out)
		}
	case KindEnum:
		if t.Tag == "" {
			return // unit enum carries no fields
		}

		for _, v := range t.Variants {
			for _, f := range v.Fields {
				unboundedEdges(f.Type, out)
			}
		}
	case KindArr:
		if t.Range.Min != nil && *t.Range.Min > 0 {
			unboundedEdges(*t.Elem, out)
		}
	default:
		// KindOpt, KindMap, KindSet, KindNum, KindString, KindBuf, KindPlatform
		// all admit a finite base case and terminate the chain.
	}
}

// detectRecursion implements §4.2 step 7: builds the reduced graph of
// "unbounded" edges between type declarations and rejects any cycle,
// including self-loops.
func (c *converter) detectRecursion() {
	graph := make(map[string]map[string]bool, len(c.cfg.Types))
	for _, d := range c.cfg.Types {
		edges := map[string]bool{}
		unboundedEdges(d.Type, edges)
		graph[d.Name] = edges
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(graph))

	var visit func(name string) bool

	visit = func(name string) bool {
		switch color[name] {
		case gray:
			return true
		case black:
			return false
		}

		color[name] = gray

		for next := range graph[name] {
			if visit(next) {
				return true
			}
		}

		color[name] = black

		return false
	}

	for _, d := range c.cfg.Types {
		if color[d.Name] != white {
			continue
		}

		if visit(d.Name) {
			c.reports = append(c.reports, diag.Errorf("E-UNBOUNDED-RECURSION", c.typeSpan(d.Name),
				"type '%s' is unbounded-recursive: every cycle back to itself passes only through "+
					"references, structs, tagged-enum variants, or arrays with a non-zero minimum length", d.Name))
		}
	}
}

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

import "strconv"

// names allocates fresh, collision-free local variable names scoped to a
// single codec function. Counting rather than hashing keeps generated
// output stable across runs for a given type (useful for diffing emitted
// modules between compiler versions).
type names struct {
	counters map[string]int
}

func newNames() *names {
	return &names{counters: map[string]int{}}
}

// Names is names exported under its own name, and NewNames the matching
// constructor, for callers outside this package (pkg/output/luau) that
// generate a whole codec function body in one Serialize/Deserialize call
// and need a fresh allocator to pass in.
type Names = names

// NewNames constructs a fresh, empty allocator.
func NewNames() *Names { return newNames() }

// fresh returns "prefix" on first use and "prefix2", "prefix3", ... on
// each subsequent use, so nested loops over the same kind of type (an
// array of arrays, say) never shadow one another.
func (n *names) fresh(prefix string) string {
	n.counters[prefix]++

	if c := n.counters[prefix]; c > 1 {
		return prefix + strconv.Itoa(c)
	}

	return prefix
}

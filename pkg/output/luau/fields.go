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
package luau

import (
	"fmt"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/irgen"
)

// FieldName returns the Luau-surface parameter name for a field at
// position i: its declared name, or the positional fallback "<fallback><i+1>"
// when the name is empty. Function returns are not Fields; retNames in
// funct.go names those.
func FieldName(f config.Field, i int, fallback string) string {
	if f.Name != "" {
		return f.Name
	}

	return fmt.Sprintf("%s%d", fallback, i+1)
}

// SerializeFields writes each field of fields, read from the Luau locals
// named by FieldName, in order — the shape event data and function
// arguments take on the wire (§4.3: "Structs: concatenate field codecs in
// declaration order", which this mirrors for the unwrapped top-level
// parameter list of an event or function).
func SerializeFields(gen *irgen.Generator, fields []config.Field, fallback string, cur irgen.Cursor, n *irgen.Names) []irgen.Stmt {
	var stmts []irgen.Stmt

	for i, f := range fields {
		stmts = append(stmts, gen.Serialize(f.Type, irgen.Ident{Name: FieldName(f, i, fallback)}, cur, n)...)
	}

	return stmts
}

// DeserializeFields reads each field of fields in order, returning the
// statement stream and the list of decoded value expressions (fresh
// locals, or for platform types constructor expressions over fresh locals)
// in declaration order, ready to splice into a handler call
// or a `return`.
func DeserializeFields(gen *irgen.Generator, fields []config.Type, cur irgen.Cursor, n *irgen.Names) ([]irgen.Stmt, []irgen.Expr) {
	var stmts []irgen.Stmt

	vals := make([]irgen.Expr, 0, len(fields))

	for _, t := range fields {
		fStmts, val := gen.Deserialize(t, cur, n)
		stmts = append(stmts, fStmts...)
		vals = append(vals, val)
	}

	return stmts, vals
}

// FieldTypes projects the Type out of a []config.Field, for callers (event
// data, function args) that need the DeserializeFields shape.
func FieldTypes(fields []config.Field) []config.Type {
	types := make([]config.Type, len(fields))
	for i, f := range fields {
		types[i] = f.Type
	}

	return types
}

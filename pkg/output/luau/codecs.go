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
	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/irgen"
)

// Cursor names the three locals every generated codec function threads
// through pkg/irgen: the shared buffer, the advancing byte position, and
// the out-of-band reference list. These are identical on both endpoints,
// since the wire format (§6) and codec (§4.3) are direction-agnostic.
var Cursor = irgen.Cursor{
	Buf:  irgen.Ident{Name: "buff"},
	Pos:  irgen.Ident{Name: "pos"},
	Refs: irgen.Ident{Name: "refs"},
}

// EmitTypeCodecs writes `local function write_<name>`/`read_<name>` for
// every declared type, in declaration order (so two compilations of the
// same input emit byte-identical function bodies, §8 property 5). These
// are the only functions a KindRef dispatches to (§4.3).
func EmitTypeCodecs(p *Printer, cfg *config.Config, gen *irgen.Generator) {
	for _, decl := range cfg.Types {
		emitWriteFunc(p, gen, decl)
		p.Blank()
		emitReadFunc(p, gen, decl)
		p.Blank()
	}
}

// EmitReadCodecs writes only the read_<name> halves, for consumers that
// never serialize: the tooling inspector decodes captured buffers but has
// no write path (§4.5).
func EmitReadCodecs(p *Printer, cfg *config.Config, gen *irgen.Generator) {
	for _, decl := range cfg.Types {
		emitReadFunc(p, gen, decl)
		p.Blank()
	}
}

func emitWriteFunc(p *Printer, gen *irgen.Generator, decl config.TypeDecl) {
	p.Line("local function %s(buff, pos, value, refs)", irgen.WriteFuncName(decl.Name))
	p.Block(func() {
		n := irgen.NewNames()
		stmts := gen.Serialize(decl.Type, irgen.Ident{Name: "value"}, Cursor, n)
		p.RenderStmts(stmts)
		p.Line("return pos")
	})
	p.Line("end")
}

func emitReadFunc(p *Printer, gen *irgen.Generator, decl config.TypeDecl) {
	p.Line("local function %s(buff, pos, refs)", irgen.ReadFuncName(decl.Name))
	p.Block(func() {
		n := irgen.NewNames()
		stmts, val := gen.Deserialize(decl.Type, Cursor, n)
		p.RenderStmts(stmts)
		p.Line("return pos, %s", Expr(val))
	})
	p.Line("end")
}

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

// Package tooling emits the inspector module (§4.5): given a captured
// buffer and reference list, decode every framed record into a list of
// {name, arguments} tables using the same pkg/irgen codec the live
// endpoints use. The module is pure — it never touches the wire endpoints
// and never mutates its inputs (the reference list is cloned before the
// positional Instance reads consume it).
package tooling

import (
	log "github.com/sirupsen/logrus"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/irgen"
	"github.com/netschema/zapc/pkg/output/luau"
)

const prelude = `--!strict
-- This file was generated by zapc. Do not edit it by hand; recompile the
-- schema instead.

-- The 24 canonical axis-aligned orientations, indexed by the byte an
-- axis-aligned frame serializes to.
local CFRAME_SPECIAL_CASES = {}
for _, base in {
	CFrame.new(),
	CFrame.Angles(math.pi / 2, 0, 0),
	CFrame.Angles(math.pi, 0, 0),
	CFrame.Angles(-math.pi / 2, 0, 0),
	CFrame.Angles(0, 0, math.pi / 2),
	CFrame.Angles(0, 0, -math.pi / 2),
} do
	for i = 0, 3 do
		table.insert(CFRAME_SPECIAL_CASES, (base * CFrame.Angles(0, i * math.pi / 2, 0)).Rotation)
	end
end
`

// decoder carries the per-direction emission state: which endpoint
// originated the captured buffer, and hence which id bucket its records
// were framed with.
type decoder struct {
	p    *luau.Printer
	cfg  *config.Config
	gen  *irgen.Generator
	from config.Direction
}

// Emit renders the complete tooling module source for cfg: four decode
// functions, one per (direction, reliability) bucket, each returning the
// in-order list of decoded records for one captured message.
func Emit(cfg *config.Config) string {
	p := &luau.Printer{}
	p.Push(prelude)
	p.Blank()

	luau.EmitReadCodecs(p, cfg, irgen.NewGenerator(cfg))

	p.Line("local tooling = {}")
	p.Blank()

	for _, from := range []config.Direction{config.Server, config.Client} {
		d := &decoder{p: p, cfg: cfg, gen: irgen.NewGenerator(cfg), from: from}
		d.emitDecode(true)
		d.emitDecode(false)
	}

	p.Line("return tooling")

	log.WithField("bytes", p.Len()).Debug("tooling: emitted inspector module")

	return p.String()
}

// bucketCount returns the number of ids assigned in this decoder's
// (direction, reliability) bucket, which fixes the id width of every
// record in the captured buffer (§6).
func (d *decoder) bucketCount(reliable bool) int {
	switch {
	case d.from == config.Server && reliable:
		return d.cfg.ServerReliableCount
	case d.from == config.Server:
		return d.cfg.ServerUnreliableCount
	case reliable:
		return d.cfg.ClientReliableCount
	default:
		return d.cfg.ClientUnreliableCount
	}
}

func idReadFn(width int) string {
	switch width {
	case 1:
		return "readu8"
	case 2:
		return "readu16"
	default:
		return "readu32"
	}
}

// emitDecode writes one DecodeServerReliable/DecodeServerUnreliable/
// DecodeClientReliable/DecodeClientUnreliable function. Reliable buffers
// hold records until the cursor reaches the buffer length; unreliable
// buffers hold exactly one (§6).
func (d *decoder) emitDecode(reliable bool) {
	p := d.p

	name := "Decode" + d.from.String()
	if reliable {
		name += "Reliable"
	} else {
		name += "Unreliable"
	}

	p.Line("function tooling.%s(buff, captured_refs)", name)
	p.Block(func() {
		p.Line("local refs = if captured_refs then table.clone(captured_refs) else {}")
		p.Line("local out = {}")
		p.Line("local pos = 0")

		if reliable {
			p.Line("local len = buffer.len(buff)")
			p.Line("while pos < len do")
			p.Block(func() { d.emitRecord(reliable) })
			p.Line("end")
		} else {
			d.emitRecord(reliable)
		}

		p.Line("return out")
	})
	p.Line("end")
	p.Blank()
}

// emitRecord decodes one framed record: id, optional call-id, payload.
func (d *decoder) emitRecord(reliable bool) {
	p := d.p
	width := config.IdWidth(d.bucketCount(reliable))

	p.Line("local id = buffer.%s(buff, pos)", idReadFn(width))
	p.Line("pos = pos + %d", width)

	first := true
	open := func(id uint16) {
		if first {
			p.Line("if id == %d then", id)
			first = false
		} else {
			p.Line("elseif id == %d then", id)
		}

		p.Indent()
	}

	for _, evt := range d.cfg.Events {
		if evt.From != d.from || evt.Reliable != reliable {
			continue
		}

		open(evt.Id)
		d.emitEventRecord(evt)
		p.Dedent()
	}

	if reliable {
		// Function records ride the reliable channel in both directions:
		// requests under the client bucket, responses under the server one.
		for _, f := range d.cfg.Functs {
			if d.from == config.Client {
				open(f.ClientId)
				d.emitFunctRecord(f, luau.FieldTypes(f.Args), f.Args, f.ClientId)
			} else {
				open(f.ServerId)
				d.emitFunctRecord(f, f.Rets, nil, f.ServerId)
			}

			p.Dedent()
		}
	}

	if first {
		p.Line("error(\"unknown event id\")")
	} else {
		p.Line("else")
		p.Block(func() { p.Line("error(\"unknown event id\")") })
		p.Line("end")
	}
}

func (d *decoder) emitEventRecord(evt config.EventDecl) {
	p := d.p

	n := irgen.NewNames()
	stmts, vals := luau.DeserializeFields(d.gen, luau.FieldTypes(evt.Data), luau.Cursor, n)
	p.RenderStmts(stmts)

	p.Line("local record = { name = %q, arguments = {} }", evt.Name)
	d.assignArguments(evt.Data, vals)

	if d.cfg.Options.ToolingShowInternalData {
		p.Line("record.id = %d", evt.Id)
	}

	p.Line("table.insert(out, record)")
}

// emitFunctRecord decodes a request (args non-nil) or response (rets only)
// record: both carry a 1-byte call-id after the event id.
func (d *decoder) emitFunctRecord(f config.FunctDecl, types []config.Type, args []config.Field, id uint16) {
	p := d.p

	p.Line("local call_id = buffer.readu8(buff, pos)")
	p.Line("pos = pos + 1")

	n := irgen.NewNames()
	stmts, vals := luau.DeserializeFields(d.gen, types, luau.Cursor, n)
	p.RenderStmts(stmts)

	p.Line("local record = { name = %q, arguments = {} }", f.Name)
	d.assignArguments(args, vals)

	if d.cfg.Options.ToolingShowInternalData {
		p.Line("record.id = %d", id)
		p.Line("record.call_id = call_id")
	}

	p.Line("table.insert(out, record)")
}

// assignArguments stores each decoded value into record.arguments, keyed
// by the declared parameter name or, for unnamed members (function
// returns), by position.
func (d *decoder) assignArguments(fields []config.Field, vals []irgen.Expr) {
	p := d.p

	for i, v := range vals {
		if i < len(fields) && fields[i].Name != "" {
			p.Line("record.arguments.%s = %s", fields[i].Name, luau.Expr(v))
		} else {
			p.Line("record.arguments[%d] = %s", i+1, luau.Expr(v))
		}
	}
}

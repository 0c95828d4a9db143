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

// Every funct declaration is called by the client and answered by the
// server: original_source/zap/src/output/luau/server.rs never references a
// function declaration at all, while client.rs and tooling.rs both do
// (confirmed by direct inspection — see DESIGN.md). ServerId names the id
// the response travels under (drawn from the server-reliable bucket);
// ClientId names the id the request travels under (drawn from the
// client-reliable bucket).

func functHandlerName(f config.FunctDecl) string { return "handler_" + f.Name }
func respondName(f config.FunctDecl) string      { return "respond_" + f.Name }
func requestName(f config.FunctDecl) string      { return "handle_request_" + f.Name }

// retNames synthesizes positional names for a function's unnamed return
// list (§3: "Returns are never named").
func retNames(rets []config.Type, fallback string) []string {
	names := make([]string, len(rets))
	for i := range rets {
		names[i] = fmt.Sprintf("%s%d", fallback, i+1)
	}

	return names
}

func serializeTypes(gen *irgen.Generator, types []config.Type, names []string, cur irgen.Cursor, n *irgen.Names) []irgen.Stmt {
	var stmts []irgen.Stmt

	for i, t := range types {
		stmts = append(stmts, gen.Serialize(t, irgen.Ident{Name: names[i]}, cur, n)...)
	}

	return stmts
}

// emitRequestCores declares the callee-side (server) state for every funct:
// the registered handler, the respond_<Name> writer that serializes the
// response onto the calling player's batch, and handle_request_<Name>,
// which invokes the handler synchronously or via a cooperative spawn per
// f.Async (§4.4 item 10).
func (e *endpoint) emitRequestCores() {
	p := e.p
	width := e.outboundReliableWidth()

	for _, f := range e.cfg.Functs {
		rnames := retNames(f.Rets, "r")

		p.Line("local %s = nil", functHandlerName(f))
		p.Blank()

		sig := "player, call_id"
		if len(rnames) > 0 {
			sig += ", " + joinIdents(rnames)
		}

		p.Line("local function %s(%s)", respondName(f), sig)
		p.Block(func() {
			p.Line("local state = ensure_player(player)")
			p.Line("ensure_capacity(state, %d)", width+1+maxTypesSize(e.cfg, f.Rets))
			p.Line("local buff = state.buff")
			p.Line("local pos = state.used")
			p.Line("local refs = state.refs")
			p.Line("buffer.%s(buff, pos, %d)", idWriteFn(width), f.ServerId)
			p.Line("pos = pos + %d", width)
			p.Line("buffer.writeu8(buff, pos, call_id)")
			p.Line("pos = pos + 1")
			n := irgen.NewNames()
			p.RenderStmts(serializeTypes(e.gen, f.Rets, rnames, Cursor, n))
			p.Line("state.used = pos")
		})
		p.Line("end")
		p.Blank()

		argNames := fmtArgs(f.Args, "arg")
		reqSig := "player, call_id"

		if argNames != "" {
			reqSig += ", " + argNames
		}

		p.Line("local function %s(%s)", requestName(f), reqSig)
		p.Block(func() {
			p.Line("if not %s then return end", functHandlerName(f))

			respond := func() {
				callExpr := fmt.Sprintf("%s(player", functHandlerName(f))
				if argNames != "" {
					callExpr += ", " + argNames
				}

				callExpr += ")"

				if len(rnames) > 0 {
					p.Line("local %s = %s", joinIdents(rnames), callExpr)
				} else {
					p.Line("%s", callExpr)
				}

				respondArgs := "player, call_id"
				if len(rnames) > 0 {
					respondArgs += ", " + joinIdents(rnames)
				}

				p.Line("%s(%s)", respondName(f), respondArgs)
			}

			if f.Async {
				p.Line("task.spawn(function()")
				p.Block(respond)
				p.Line("end)")
			} else {
				respond()
			}
		})
		p.Line("end")
		p.Blank()
	}
}

// emitRequestBranch is spliced into the server's reliable dispatch chain
// at id == f.ClientId: read the call-id, decode the arguments, and hand
// off to handle_request_<Name>.
func (e *endpoint) emitRequestBranch(f config.FunctDecl) {
	p := e.p

	p.Line("local call_id = buffer.readu8(buff, pos)")
	p.Line("pos = pos + 1")

	n := irgen.NewNames()
	stmts, vals := DeserializeFields(e.gen, FieldTypes(f.Args), Cursor, n)
	p.RenderStmts(stmts)

	call := fmt.Sprintf("%s(player, call_id", requestName(f))
	if len(vals) > 0 {
		call += ", " + joinExprs(vals)
	}

	call += ")"
	p.Line("%s", call)
}

// emitResponseBranch is spliced into the client's reliable dispatch chain
// at id == f.ServerId: read the call-id, decode the return values, and
// resume whichever continuation reserve_call_id handed out for it.
func (e *endpoint) emitResponseBranch(f config.FunctDecl) {
	p := e.p

	p.Line("local call_id = buffer.readu8(buff, pos)")
	p.Line("pos = pos + 1")

	n := irgen.NewNames()
	stmts, vals := DeserializeFields(e.gen, f.Rets, Cursor, n)
	p.RenderStmts(stmts)

	p.Line("local cont = call_continuations[call_id]")
	p.Line("call_continuations[call_id] = nil")
	p.Line("if cont then")
	p.Block(func() {
		switch e.opts.YieldType {
		case config.YieldPromise:
			if len(vals) > 0 {
				p.Line("cont(%s)", joinExprs(vals))
			} else {
				p.Line("cont()")
			}
		default: // yield, future: both suspend the caller's own coroutine
			if len(vals) > 0 {
				p.Line("task.spawn(cont, %s)", joinExprs(vals))
			} else {
				p.Line("task.spawn(cont)")
			}
		}
	})
	p.Line("end")
}

// emitFunct writes the per-funct surface: Call on the client, SetCallback
// on the server (§4.4 item 10).
func (e *endpoint) emitFunct(f config.FunctDecl) {
	p := e.p

	p.Line("M.%s = {}", f.Name)

	if e.local == config.Server {
		p.Line("function M.%s.%s(callback)", f.Name, e.opts.Casing.Name(config.MethodSetCallback))
		p.Block(func() {
			p.Line("%s = callback", functHandlerName(f))
			p.Line("return function() %s = nil end", functHandlerName(f))
		})
		p.Line("end")
		p.Blank()

		return
	}

	e.emitFunctCall(f)
}

// asyncLib is the loader expression a promise/future Call wraps its
// continuation in. Empty only in the typescript configuration, where the
// option resolver forbids a loader and an ambient Promise global is
// guaranteed by the roblox-ts runtime.
func (e *endpoint) asyncLib() string {
	if e.opts.AsyncLib != "" {
		return e.opts.AsyncLib
	}

	return "Promise"
}

func (e *endpoint) emitFunctCall(f config.FunctDecl) {
	p := e.p
	argNames := fmtArgs(f.Args, "arg")
	width := e.outboundReliableWidth()

	sig := argNames

	p.Line("function M.%s.%s(%s)", f.Name, e.opts.Casing.Name(config.MethodCall), sig)
	p.Block(func() {
		p.Line("local call_id = reserve_call_id(%q)", f.Name)
		p.Line("ensure_capacity(outgoing, %d)", width+1+maxFieldsSize(e.cfg, f.Args))
		p.Line("local buff = outgoing.buff")
		p.Line("local pos = outgoing.used")
		p.Line("local refs = outgoing.refs")
		p.Line("buffer.%s(buff, pos, %d)", idWriteFn(width), f.ClientId)
		p.Line("pos = pos + %d", width)
		p.Line("buffer.writeu8(buff, pos, call_id)")
		p.Line("pos = pos + 1")

		n := irgen.NewNames()
		p.RenderStmts(SerializeFields(e.gen, f.Args, "arg", Cursor, n))
		p.Line("outgoing.used = pos")

		switch e.opts.YieldType {
		case config.YieldPromise:
			p.Line("return %s.new(function(resolve)", e.asyncLib())
			p.Block(func() { p.Line("call_continuations[call_id] = resolve") })
			p.Line("end)")
		case config.YieldFuture:
			p.Line("return %s.new(function()", e.asyncLib())
			p.Block(func() {
				p.Line("call_continuations[call_id] = coroutine.running()")
				p.Line("return coroutine.yield()")
			})
			p.Line("end)")
		default:
			p.Line("call_continuations[call_id] = coroutine.running()")
			p.Line("return coroutine.yield()")
		}
	})
	p.Line("end")
	p.Blank()
}

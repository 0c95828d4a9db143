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

import "github.com/netschema/zapc/pkg/config"

// emitEvent writes one event's full surface: the reliable/unreliable
// write helper plus Fire family on the originating endpoint, or the
// listening surface on the receiving endpoint (§4.4 items 8-9). The
// queue/handler/listener state and dispatch_<Name> function for an
// incoming event were already declared by emitIncomingCore inside
// emitDispatch, before the inbound connect handlers that call them.
func (e *endpoint) emitEvent(evt config.EventDecl) {
	p := e.p

	p.Line("M.%s = {}", evt.Name)

	if e.isOutgoing(evt) {
		e.emitOutgoingCore(evt)
		e.emitFireSurface(evt)
	} else {
		e.emitListenSurface(evt)
	}

	p.Blank()
}

func (e *endpoint) emitFireSurface(evt config.EventDecl) {
	p := e.p
	args := fmtArgs(evt.Data, "arg")

	fireSig := args
	if e.local == config.Server {
		if args == "" {
			fireSig = "player"
		} else {
			fireSig = "player, " + args
		}
	}

	p.Line("function M.%s.%s(%s)", evt.Name, e.opts.Casing.Name(config.MethodFire), fireSig)
	p.Block(func() { e.emitSendTo(evt, "player", args) })
	p.Line("end")
	p.Blank()

	if e.local != config.Server {
		return
	}

	if !e.opts.DisableFireAll {
		p.Line("function M.%s.%s(%s)", evt.Name, e.opts.Casing.Name(config.MethodFireAll), args)
		p.Block(func() {
			p.Line("for _, player in Players:GetPlayers() do")
			p.Block(func() { e.emitSendTo(evt, "player", args) })
			p.Line("end")
		})
		p.Line("end")
		p.Blank()
	}

	exceptSig := "except"
	if args != "" {
		exceptSig += ", " + args
	}

	p.Line("function M.%s.%s(%s)", evt.Name, e.opts.Casing.Name(config.MethodFireExcept), exceptSig)
	p.Block(func() {
		p.Line("for _, player in Players:GetPlayers() do")
		p.Block(func() {
			p.Line("if player ~= except then")
			p.Block(func() { e.emitSendTo(evt, "player", args) })
			p.Line("end")
		})
		p.Line("end")
	})
	p.Line("end")
	p.Blank()

	listSig := "list"
	if args != "" {
		listSig += ", " + args
	}

	p.Line("function M.%s.%s(%s)", evt.Name, e.opts.Casing.Name(config.MethodFireList), listSig)
	p.Block(func() {
		p.Line("for _, player in list do")
		p.Block(func() { e.emitSendTo(evt, "player", args) })
		p.Line("end")
	})
	p.Line("end")
	p.Blank()

	setSig := "set"
	if args != "" {
		setSig += ", " + args
	}

	p.Line("function M.%s.%s(%s)", evt.Name, e.opts.Casing.Name(config.MethodFireSet), setSig)
	p.Block(func() {
		p.Line("for player in set do")
		p.Block(func() { e.emitSendTo(evt, "player", args) })
		p.Line("end")
	})
	p.Line("end")
	p.Blank()
}

// emitSendTo writes the per-recipient send statement shared by Fire and
// its fan-out variants: for a reliable event it commits into the
// recipient's batched state; for unreliable it builds and sends a
// one-shot record immediately, untouched by the batch flush (§4.4 item 8).
func (e *endpoint) emitSendTo(evt config.EventDecl, playerExpr, args string) {
	p := e.p

	if evt.Reliable {
		call := writeName(evt) + "(" + e.stateExpr(playerExpr)
		if args != "" {
			call += ", " + args
		}

		call += ")"
		p.Line("%s", call)

		return
	}

	call := buildName(evt) + "(" + args + ")"
	p.Line("local buff, len, refs = %s", call)

	if e.local == config.Server {
		p.Line("unreliable:FireClient(%s, buff, refs)", playerExpr)
	} else {
		p.Line("unreliable:FireServer(buff, refs)")
	}
}

func (e *endpoint) emitListenSurface(evt config.EventDecl) {
	p := e.p

	method := config.MethodOn
	if evt.Call.IsSingle() {
		method = config.MethodSetCallback
	}

	p.Line("function M.%s.%s(callback)", evt.Name, e.opts.Casing.Name(method))
	p.Block(func() {
		if evt.Call.IsSingle() {
			p.Line("%s = callback", handlerName(evt))
			e.drainQueue(evt, func(unpack string) { p.Line("callback(%s)", unpack) })
			p.Line("return function() %s = nil end", handlerName(evt))

			return
		}

		p.Line("local id = #%s + 1", listenersName(evt))
		p.Line("%s[id] = callback", listenersName(evt))
		e.drainQueue(evt, func(unpack string) { p.Line("callback(%s)", unpack) })
		p.Line("return function() %s[id] = nil end", listenersName(evt))
	})
	p.Line("end")
}

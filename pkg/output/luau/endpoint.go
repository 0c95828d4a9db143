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
	log "github.com/sirupsen/logrus"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/irgen"
)

// endpoint carries the state shared by every emission step for one side of
// the protocol (§4.4): which Direction this module runs on, the resolved
// Config, a codec generator bound to it, and the Printer accumulating
// output. Both pkg/output/luau/server and pkg/output/luau/client are thin
// wrappers that call Emit with their own Direction and embedded prelude.
type endpoint struct {
	p     *Printer
	cfg   *config.Config
	gen   *irgen.Generator
	opts  config.Options
	local config.Direction
}

// Emit lays down one full endpoint module in the order of §4.4 items 1-10:
// prelude, wire endpoint declarations, per-type codecs, outgoing batch
// loop, inbound dispatch, and the per-direction fire/listen/call surface.
// prelude is items 1-3 (embedded verbatim, opaque to this function, per
// pkg/output/luau/{server,client}.Prelude).
func Emit(cfg *config.Config, local config.Direction, prelude string) string {
	p := &Printer{}
	p.Push(prelude)
	p.Blank()

	e := &endpoint{p: p, cfg: cfg, gen: irgen.NewGenerator(cfg), opts: cfg.Options, local: local}

	e.emitRemotes()
	e.emitOutgoingState()
	p.Blank()

	// M is declared ahead of the batch loop so a manual_event_loop flush
	// method can hang off it.
	p.Line("local M = {}")
	p.Blank()

	EmitTypeCodecs(p, cfg, e.gen)
	e.emitHelpers()
	e.emitOutgoingLoop()
	e.emitDispatch()

	for _, evt := range cfg.Events {
		e.emitEvent(evt)
	}

	for _, f := range cfg.Functs {
		e.emitFunct(f)
	}

	p.Line("return M")

	log.WithFields(log.Fields{"endpoint": local.String(), "bytes": p.Len()}).
		Debug("luau: emitted endpoint module")

	return p.String()
}

// isOutgoing reports whether evt originates at this endpoint (so it gets a
// Fire surface here) as opposed to arriving here (an On/SetCallback
// surface).
func (e *endpoint) isOutgoing(evt config.EventDecl) bool { return evt.From == e.local }

// emitRemotes declares the two RemoteEvent/UnreliableRemoteEvent instances every
// endpoint talks through, scoped by the remote_scope/remote_folder options
// (§4.4 item 4).
func (e *endpoint) emitRemotes() {
	p := e.p
	folder := e.opts.RemoteFolder
	scope := e.opts.RemoteScope

	p.Line("local ReplicatedStorage = game:GetService(\"ReplicatedStorage\")")

	if e.local == config.Server {
		p.Line("local Players = game:GetService(\"Players\")")
		p.Line("local remoteFolder = ReplicatedStorage:FindFirstChild(%q)", folder)
		p.Line("if not remoteFolder then")
		p.Block(func() {
			p.Line("remoteFolder = Instance.new(\"Folder\")")
			p.Line("remoteFolder.Name = %q", folder)
			p.Line("remoteFolder.Parent = ReplicatedStorage")
		})
		p.Line("end")
		p.Line("local function getRemote(name, className)")
		p.Block(func() {
			p.Line("local inst = remoteFolder:FindFirstChild(name)")
			p.Line("if not inst then")
			p.Block(func() {
				p.Line("inst = Instance.new(className)")
				p.Line("inst.Name = name")
				p.Line("inst.Parent = remoteFolder")
			})
			p.Line("end")
			p.Line("return inst")
		})
		p.Line("end")
		p.Line("local reliable = getRemote(%q, \"RemoteEvent\")", scope+"Reliable")
		p.Line("local unreliable = getRemote(%q, \"UnreliableRemoteEvent\")", scope+"Unreliable")
	} else {
		p.Line("local remoteFolder = ReplicatedStorage:WaitForChild(%q)", folder)
		p.Line("local reliable = remoteFolder:WaitForChild(%q)", scope+"Reliable")
		p.Line("local unreliable = remoteFolder:WaitForChild(%q)", scope+"Unreliable")
	}

	p.Blank()
}

// emitOutgoingState declares the reliable batch state (§5 "shared-resource
// policy": per-peer on the server, a process-wide singleton on the
// client), item 7 of §4.4.
func (e *endpoint) emitOutgoingState() {
	p := e.p

	if e.local == config.Server {
		p.Line("local player_state = {}")
		p.Blank()
		p.Line("local function ensure_player(player)")
		p.Block(func() {
			p.Line("local state = player_state[player]")
			p.Line("if not state then")
			p.Block(func() {
				p.Line("state = {buff = buffer.create(64), used = 0, refs = {}}")
				p.Line("player_state[player] = state")
			})
			p.Line("end")
			p.Line("return state")
		})
		p.Line("end")
		p.Blank()
		p.Line("Players.PlayerRemoving:Connect(function(player)")
		p.Block(func() { p.Line("player_state[player] = nil") })
		p.Line("end)")
	} else {
		p.Line("local outgoing = {buff = buffer.create(64), used = 0, refs = {}}")
	}
}

// stateExpr is the Luau expression naming the batch state a reliable Fire
// variant writes into: per-peer on the server, the single process-wide
// batch on the client (§5 "shared-resource policy").
func (e *endpoint) stateExpr(playerExpr string) string {
	if e.local == config.Server {
		return "ensure_player(" + playerExpr + ")"
	}

	return "outgoing"
}

// emitHelpers writes the buffer-growth and call-id-exhaustion machinery
// every Fire/Call site shares. Buffers never shrink in place (Luau buffers
// are fixed-size once created), so capacity growth doubles until the
// request fits, mirroring the alloc-then-grow idiom observed in
// original_source/zap/src/output/luau/{server,client}.rs.
func (e *endpoint) emitHelpers() {
	p := e.p

	p.Line("local function ensure_capacity(state, needed)")
	p.Block(func() {
		p.Line("local cap = buffer.len(state.buff)")
		p.Line("if state.used + needed <= cap then return end")
		p.Line("local new_cap = cap")
		p.Line("while new_cap < state.used + needed do")
		p.Block(func() { p.Line("new_cap = new_cap * 2") })
		p.Line("end")
		p.Line("local new_buff = buffer.create(new_cap)")
		p.Line("buffer.copy(new_buff, 0, state.buff, 0, state.used)")
		p.Line("state.buff = new_buff")
	})
	p.Line("end")
	p.Blank()

	if hasFuncts(e.cfg, e.local) {
		p.Line("local call_continuations = {}")
		p.Line("local next_call_id = 0")
		p.Blank()
		p.Line("local function reserve_call_id(label)")
		p.Block(func() {
			p.Line("local call_id = next_call_id")
			p.Line("local attempts = 0")
			p.Line("while call_continuations[call_id] ~= nil do")
			p.Block(func() {
				p.Line("call_id = (call_id + 1) %% 256")
				p.Line("attempts = attempts + 1")
				p.Line("if attempts > 256 then")
				p.Block(func() { p.Line("error(label .. \": no free call ids, 256 calls in flight\")") })
				p.Line("end")
			})
			p.Line("end")
			p.Line("next_call_id = (call_id + 1) %% 256")
			p.Line("return call_id")
		})
		p.Line("end")
		p.Blank()
	}
}

// hasFuncts reports whether any function declaration needs call-id
// bookkeeping on this endpoint: always true for the client (caller) side
// when at least one funct is declared, since every funct is caller-client /
// callee-server (see DESIGN.md).
func hasFuncts(cfg *config.Config, local config.Direction) bool {
	return local == config.Client && len(cfg.Functs) > 0
}

// emitOutgoingLoop writes §4.4 item 6: once per tick (or once per manual
// flush), trim every non-empty batch into a freshly sized allocation and
// send it, then clear the batch and its reference list.
func (e *endpoint) emitOutgoingLoop() {
	p := e.p

	p.Line("local function flush(player, state)")
	p.Block(func() {
		p.Line("if state.used == 0 then return end")
		p.Line("local out = buffer.create(state.used)")
		p.Line("buffer.copy(out, 0, state.buff, 0, state.used)")

		if e.local == config.Server {
			p.Line("reliable:FireClient(player, out, state.refs)")
		} else {
			p.Line("reliable:FireServer(out, state.refs)")
		}

		p.Line("state.used = 0")
		p.Line("state.refs = {}")
	})
	p.Line("end")
	p.Blank()

	flushAll := func() {
		if e.local == config.Server {
			p.Line("for player, state in player_state do")
			p.Block(func() { p.Line("flush(player, state)") })
			p.Line("end")
		} else {
			p.Line("flush(nil, outgoing)")
		}
	}

	if e.opts.ManualEventLoop {
		p.Line("function M.SendEvents()")
		p.Block(flushAll)
		p.Line("end")
	} else {
		p.Line("local RunService = game:GetService(\"RunService\")")
		p.Line("RunService.Heartbeat:Connect(function()")
		p.Block(flushAll)
		p.Line("end)")
	}

	p.Blank()
}

func idWriteFn(width int) string {
	switch width {
	case 1:
		return "writeu8"
	case 2:
		return "writeu16"
	default:
		return "writeu32"
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

// inboundReliableWidth returns the id width of the reliable bucket an
// endpoint reads from its peer: the server reads the client-reliable
// bucket (events from Client plus every funct's request), the client
// reads the server-reliable bucket (events from Server plus every
// funct's response), per the id assignment in pkg/config/convert.go.
func (e *endpoint) inboundReliableWidth() int {
	if e.local == config.Server {
		return config.IdWidth(e.cfg.ClientReliableCount)
	}

	return config.IdWidth(e.cfg.ServerReliableCount)
}

func (e *endpoint) inboundUnreliableWidth() int {
	if e.local == config.Server {
		return config.IdWidth(e.cfg.ClientUnreliableCount)
	}

	return config.IdWidth(e.cfg.ServerUnreliableCount)
}

func (e *endpoint) outboundReliableWidth() int {
	if e.local == config.Server {
		return config.IdWidth(e.cfg.ServerReliableCount)
	}

	return config.IdWidth(e.cfg.ClientReliableCount)
}

func (e *endpoint) outboundUnreliableWidth() int {
	if e.local == config.Server {
		return config.IdWidth(e.cfg.ServerUnreliableCount)
	}

	return config.IdWidth(e.cfg.ClientUnreliableCount)
}

// fmtArgs renders fields as a Luau parameter list, falling back to
// arg1, arg2, ... for an event's unnamed data (functions are the only
// declaration with unnamed members, but the fallback is shared).
func fmtArgs(fields []config.Field, fallback string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = FieldName(f, i, fallback)
	}

	return joinIdents(parts)
}

func maxFieldsSize(cfg *config.Config, fields []config.Field) int {
	total := 0
	for _, f := range fields {
		total += cfg.MaxPayloadSize(f.Type)
	}

	return total
}

func maxTypesSize(cfg *config.Config, types []config.Type) int {
	total := 0
	for _, t := range types {
		total += cfg.MaxPayloadSize(t)
	}

	return total
}

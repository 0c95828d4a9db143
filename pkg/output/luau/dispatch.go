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

// queueThreshold is the queue-depth warning threshold of §4.4 item 7: 64
// when the event carries data, 16 when it is a bare signal.
func queueThreshold(data []config.Field) int {
	if len(data) > 0 {
		return 64
	}

	return 16
}

// dispatchName/queueName/handlerName/listenersName name the per-event
// locals declared once and shared between the inbound connect handler and
// the On/SetCallback surface below it.
func dispatchName(evt config.EventDecl) string  { return "dispatch_" + evt.Name }
func queueName(evt config.EventDecl) string     { return "queue_" + evt.Name }
func handlerName(evt config.EventDecl) string   { return "handler_" + evt.Name }
func listenersName(evt config.EventDecl) string { return "listeners_" + evt.Name }
func writeName(evt config.EventDecl) string     { return "write_" + evt.Name }
func buildName(evt config.EventDecl) string     { return "build_" + evt.Name }

// recvArgs is the parameter list a handler/listener for an incoming event
// is invoked with: the decoded fields, preceded by `player` on the server
// since every client-originated event needs its sender identified.
func (e *endpoint) recvArgs(evt config.EventDecl) string {
	args := fmtArgs(evt.Data, "arg")

	if e.local != config.Server {
		return args
	}

	if args == "" {
		return "player"
	}

	return "player, " + args
}

// emitIncomingCore declares the queue/handler state and the dispatch_<Name>
// function an incoming event is routed through: when a handler (or at
// least one listener) is registered it is invoked directly (async styles
// via task.spawn, §5); otherwise the decoded payload is queued, with a
// queue-depth warning past the threshold of §4.4 item 7, and drained the
// moment a listener first attaches (see emitEvent).
func (e *endpoint) emitIncomingCore(evt config.EventDecl) {
	p := e.p
	recvArgs := e.recvArgs(evt)

	p.Line("local %s = {}", queueName(evt))

	if evt.Call.IsSingle() {
		p.Line("local %s = nil", handlerName(evt))
	} else {
		p.Line("local %s = {}", listenersName(evt))
	}

	p.Line("local function %s(%s)", dispatchName(evt), recvArgs)
	p.Block(func() {
		invoke := func(cb string) {
			if evt.Call.IsAsync() {
				if recvArgs == "" {
					p.Line("task.spawn(%s)", cb)
				} else {
					p.Line("task.spawn(%s, %s)", cb, recvArgs)
				}
			} else {
				p.Line("%s(%s)", cb, recvArgs)
			}
		}

		if evt.Call.IsSingle() {
			p.Line("if %s then", handlerName(evt))
			p.Block(func() { invoke(handlerName(evt)) })
			p.Line("else")
			p.Block(func() { e.queuePush(evt, recvArgs) })
			p.Line("end")

			return
		}

		p.Line("if next(%s) ~= nil then", listenersName(evt))
		p.Block(func() {
			p.Line("for _, cb in %s do", listenersName(evt))
			p.Block(func() {
				p.Line("if cb then")
				p.Block(func() { invoke("cb") })
				p.Line("end")
			})
			p.Line("end")
		})
		p.Line("else")
		p.Block(func() { e.queuePush(evt, recvArgs) })
		p.Line("end")
	})
	p.Line("end")
	p.Blank()
}

func (e *endpoint) queuePush(evt config.EventDecl, recvArgs string) {
	p := e.p

	p.Line("table.insert(%s, {%s})", queueName(evt), recvArgs)
	p.Line("if #%s > %d then", queueName(evt), queueThreshold(evt.Data))
	p.Block(func() { p.Line("warn(%q)", evt.Name+": queue depth exceeds threshold, no listener attached") })
	p.Line("end")
}

// drainQueue is emitted inside SetCallback/On, immediately after a handler
// attaches, so events fired before anyone subscribed are not lost. Entries
// are always stored (and replayed) as tables, per queuePush, so an empty
// arg list just unpacks to nothing.
func (e *endpoint) drainQueue(evt config.EventDecl, invoke func(args string)) {
	p := e.p

	p.Line("for _, entry in %s do", queueName(evt))
	p.Block(func() { invoke("table.unpack(entry)") })
	p.Line("end")
	p.Line("%s = {}", queueName(evt))
}

// emitOutgoingCore declares the write_<Name> (reliable) or build_<Name>
// (unreliable) helper an outgoing event's Fire family shares, so
// FireAll/FireExcept/FireList/FireSet never duplicate the serialize
// statement stream (§4.4 item 8).
func (e *endpoint) emitOutgoingCore(evt config.EventDecl) {
	p := e.p
	params := fmtArgs(evt.Data, "arg")
	width := e.outboundReliableWidth()

	if !evt.Reliable {
		width = e.outboundUnreliableWidth()
	}

	sig := "state"
	if params != "" {
		sig += ", " + params
	}

	if evt.Reliable {
		p.Line("local function %s(%s)", writeName(evt), sig)
		p.Block(func() {
			p.Line("ensure_capacity(state, %d)", width+maxFieldsSize(e.cfg, evt.Data))
			p.Line("local buff = state.buff")
			p.Line("local pos = state.used")
			p.Line("local refs = state.refs")
			p.Line("buffer.%s(buff, pos, %d)", idWriteFn(width), evt.Id)
			p.Line("pos = pos + %d", width)
			n := irgen.NewNames()
			p.RenderStmts(SerializeFields(e.gen, evt.Data, "arg", Cursor, n))
			p.Line("state.used = pos")
		})
		p.Line("end")
	} else {
		argsSig := params

		p.Line("local function %s(%s)", buildName(evt), argsSig)
		p.Block(func() {
			p.Line("local buff = buffer.create(%d)", width+maxFieldsSize(e.cfg, evt.Data))
			p.Line("local pos = 0")
			p.Line("local refs = {}")
			p.Line("buffer.%s(buff, pos, %d)", idWriteFn(width), evt.Id)
			p.Line("pos = pos + %d", width)
			n := irgen.NewNames()
			p.RenderStmts(SerializeFields(e.gen, evt.Data, "arg", Cursor, n))
			p.Line("return buff, pos, refs")
		})
		p.Line("end")
	}

	p.Blank()
}

// emitDispatch connects both wire endpoints (§4.4 item 7): a reliable
// handler looping over every framed record in the buffer, and an
// unreliable handler decoding exactly one.
func (e *endpoint) emitDispatch() {
	p := e.p

	for _, evt := range e.cfg.Events {
		if !e.isOutgoing(evt) {
			e.emitIncomingCore(evt)
		}
	}

	if e.local == config.Server {
		e.emitRequestCores()
	}

	reliableConn, unreliableConn := "OnServerEvent", "OnServerEvent"
	connArgs := "player, buff, refs"

	if e.local == config.Client {
		reliableConn, unreliableConn = "OnClientEvent", "OnClientEvent"
		connArgs = "buff, refs"
	}

	p.Line("reliable.%s:Connect(function(%s)", reliableConn, connArgs)
	p.Block(func() {
		p.Line("local pos = 0")
		p.Line("local len = buffer.len(buff)")
		p.Line("while pos < len do")
		p.Block(func() { e.emitReliableBranch() })
		p.Line("end")
	})
	p.Line("end)")
	p.Blank()

	if e.hasUnreliableInbound() {
		p.Line("unreliable.%s:Connect(function(%s)", unreliableConn, connArgs)
		p.Block(func() {
			p.Line("local pos = 0")
			e.emitUnreliableBranch()
		})
		p.Line("end)")
		p.Blank()
	}
}

func (e *endpoint) hasUnreliableInbound() bool {
	for _, evt := range e.cfg.Events {
		if !evt.Reliable && !e.isOutgoing(evt) {
			return true
		}
	}

	return false
}

func (e *endpoint) emitReliableBranch() {
	p := e.p
	width := e.inboundReliableWidth()

	p.Line("local id = buffer.%s(buff, pos)", idReadFn(width))
	p.Line("pos = pos + %d", width)

	first := true
	open := func(cond string, args ...any) {
		if first {
			p.Line("if "+cond+" then", args...)
			first = false
		} else {
			p.Line("elseif "+cond+" then", args...)
		}

		p.Indent()
	}

	for _, evt := range e.cfg.Events {
		if evt.Reliable && !e.isOutgoing(evt) {
			open("id == %d", evt.Id)
			n := irgen.NewNames()
			stmts, vals := DeserializeFields(e.gen, FieldTypes(evt.Data), Cursor, n)
			p.RenderStmts(stmts)

			call := dispatchName(evt)
			if e.local == config.Server {
				if len(vals) == 0 {
					p.Line("%s(player)", call)
				} else {
					p.Line("%s(player, %s)", call, joinExprs(vals))
				}
			} else {
				p.Line("%s(%s)", call, joinExprs(vals))
			}

			p.Dedent()
		}
	}

	if e.local == config.Server {
		for _, f := range e.cfg.Functs {
			open("id == %d", f.ClientId)
			e.emitRequestBranch(f)
			p.Dedent()
		}
	} else {
		for _, f := range e.cfg.Functs {
			open("id == %d", f.ServerId)
			e.emitResponseBranch(f)
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

func (e *endpoint) emitUnreliableBranch() {
	p := e.p
	width := e.inboundUnreliableWidth()

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

	for _, evt := range e.cfg.Events {
		if !evt.Reliable && !e.isOutgoing(evt) {
			open(evt.Id)
			n := irgen.NewNames()
			stmts, vals := DeserializeFields(e.gen, FieldTypes(evt.Data), Cursor, n)
			p.RenderStmts(stmts)

			call := dispatchName(evt)
			if e.local == config.Server {
				if len(vals) == 0 {
					p.Line("%s(player)", call)
				} else {
					p.Line("%s(player, %s)", call, joinExprs(vals))
				}
			} else {
				p.Line("%s(%s)", call, joinExprs(vals))
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

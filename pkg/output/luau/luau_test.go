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
package luau_test

import (
	"strings"
	"testing"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/internal/assert"
	"github.com/netschema/zapc/pkg/irgen"
	"github.com/netschema/zapc/pkg/output/luau"
	"github.com/netschema/zapc/pkg/parser"
	"github.com/netschema/zapc/pkg/source"
)

func compile(t *testing.T, input string) *config.Config {
	t.Helper()

	tree, perrs := parser.Parse(source.NewSourceFile("test.zap", []byte(input)))
	assert.Equal(t, 0, len(perrs))

	cfg, reports := config.Convert(tree)
	assert.False(t, reports.HasErrors(false))

	return &cfg
}

const s1Schema = `event Tick = { from: Server, type: Reliable, call: SingleSync, data: (n: u8) }`

// S1: the server gets the Fire surface with the player axis and writes id 0
// into the reliable batch; the client gets a single-listener SetCallback.
func Test_S1_ServerFireClientSetCallback(t *testing.T) {
	cfg := compile(t, s1Schema)

	serverOut := luau.Emit(cfg, config.Server, "")
	assert.Contains(t, serverOut, "function M.Tick.Fire(player, n)")
	assert.Contains(t, serverOut, "buffer.writeu8(buff, pos, 0)")

	clientOut := luau.Emit(cfg, config.Client, "")
	assert.Contains(t, clientOut, "function M.Tick.SetCallback(callback)")
	assert.NotContains(t, clientOut, "M.Tick.Fire")
}

// Property 5: byte-for-byte determinism across repeated emission of the
// same config.
func Test_EmitIsDeterministic(t *testing.T) {
	cfg := compile(t, `
		type Item = struct { id: u16, tags: set[string[0..16]] }
		event Sync = { from: Server, type: Reliable, call: ManySync, data: (items: Item[0..]) }
		funct Fetch = { call: Async, args: (id: u16), rets: (Item) }
	`)

	first := luau.Emit(cfg, config.Server, "")
	second := luau.Emit(cfg, config.Server, "")
	assert.Equal(t, first, second)
}

func Test_ManualEventLoopExposesFlush(t *testing.T) {
	cfg := compile(t, "opt manual_event_loop = true\n"+s1Schema)

	out := luau.Emit(cfg, config.Server, "")
	assert.Contains(t, out, "function M.SendEvents()")
	assert.NotContains(t, out, "RunService.Heartbeat:Connect")
}

func Test_AutomaticEventLoopBindsHeartbeat(t *testing.T) {
	cfg := compile(t, s1Schema)

	out := luau.Emit(cfg, config.Server, "")
	assert.Contains(t, out, "RunService.Heartbeat:Connect")
	assert.NotContains(t, out, "M.SendEvents")
}

func Test_DisableFireAllOmitsBroadcastOnly(t *testing.T) {
	cfg := compile(t, "opt disable_fire_all = true\n"+s1Schema)

	out := luau.Emit(cfg, config.Server, "")
	assert.NotContains(t, out, "M.Tick.FireAll")
	// The remaining fan-out variants are unaffected by the option.
	assert.Contains(t, out, "M.Tick.FireExcept")
	assert.Contains(t, out, "M.Tick.FireList")
	assert.Contains(t, out, "M.Tick.FireSet")
}

func Test_SnakeCasingAppliesToSurface(t *testing.T) {
	cfg := compile(t, "opt casing = snake_case\n"+s1Schema)

	out := luau.Emit(cfg, config.Server, "")
	assert.Contains(t, out, "function M.Tick.fire(player, n)")
	assert.Contains(t, out, "M.Tick.fire_all")
}

// S5: a call reserves its call-id before a single byte is written, so an
// exhausted ring raises without sending.
func Test_S5_CallIdReservedBeforeWrite(t *testing.T) {
	cfg := compile(t, `funct Add = { call: Sync, args: (a: u8, b: u8), rets: (u16) }`)

	out := luau.Emit(cfg, config.Client, "")

	callBody := out[strings.Index(out, "function M.Add.Call"):]
	reserve := strings.Index(callBody, "reserve_call_id")
	firstWrite := strings.Index(callBody, "buffer.write")
	assert.True(t, reserve >= 0)
	assert.True(t, firstWrite >= 0)
	assert.True(t, reserve < firstWrite)

	assert.Contains(t, out, "no free call ids, 256 calls in flight")
}

func Test_UnreliableFireBypassesBatch(t *testing.T) {
	cfg := compile(t, `event Blip = { from: Client, type: Unreliable, call: SingleSync, data: (x: f32) }`)

	out := luau.Emit(cfg, config.Client, "")
	assert.Contains(t, out, "unreliable:FireServer(buff, refs)")

	// Reliable batching state is untouched by the unreliable path: the
	// build helper allocates a one-shot buffer instead.
	fire := out[strings.Index(out, "function M.Blip.Fire"):]
	end := strings.Index(fire, "end")
	assert.NotContains(t, fire[:end], "outgoing")
}

func Test_QueueThresholdsFollowPayloadShape(t *testing.T) {
	cfg := compile(t, `
		event WithData = { from: Server, type: Reliable, call: SingleSync, data: (n: u8) }
		event NoData = { from: Server, type: Reliable, call: SingleSync, data: () }
	`)

	out := luau.Emit(cfg, config.Client, "")
	assert.Contains(t, out, "#queue_WithData > 64")
	assert.Contains(t, out, "#queue_NoData > 16")
}

func Test_DispatchRejectsUnknownId(t *testing.T) {
	cfg := compile(t, s1Schema)

	out := luau.Emit(cfg, config.Client, "")
	assert.Contains(t, out, `error("unknown event id")`)
}

// The statement renderer recovers nesting purely from Begin/Else/End
// markers (§9).
func Test_RenderStmts_RecoversBlockStructure(t *testing.T) {
	p := &luau.Printer{}
	p.RenderStmts([]irgen.Stmt{
		irgen.BranchBegin{Cond: irgen.Eq(irgen.Ident{Name: "x"}, irgen.Number{Value: 1})},
		irgen.NumForBegin{Var: "i", From: irgen.Number{Value: 1}, To: irgen.Number{Value: 3}},
		irgen.CallStmt{Call: irgen.Invoke(irgen.Ident{Name: "f"}, irgen.Ident{Name: "i"})},
		irgen.End{},
		irgen.Else{},
		irgen.Raise{Message: "boom"},
		irgen.End{},
	})

	expected := "if x == 1 then\n" +
		"\tfor i = 1, 3 do\n" +
		"\t\tf(i)\n" +
		"\tend\n" +
		"else\n" +
		"\terror(\"boom\")\n" +
		"end\n"

	assert.Equal(t, expected, p.String())
}

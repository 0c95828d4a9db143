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
package typescript_test

import (
	"testing"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/internal/assert"
	"github.com/netschema/zapc/pkg/output/typescript"
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

func Test_Emit_EventSurfaces(t *testing.T) {
	cfg := compile(t, `event Tick = { from: Server, type: Reliable, call: SingleSync, data: (n: u8) }`)

	server := typescript.Emit(cfg, config.Server)
	assert.Contains(t, server, "Fire: (player: Player, n: number) => void;")
	assert.Contains(t, server, "FireAll: (n: number) => void;")
	assert.Contains(t, server, "FireList: (list: Player[], n: number) => void;")

	client := typescript.Emit(cfg, config.Client)
	assert.Contains(t, client, "SetCallback: (callback: (n: number) => void) => () => void;")
	assert.NotContains(t, client, "Fire: ")
}

func Test_Emit_TypeAliases(t *testing.T) {
	cfg := compile(t, `
		type Health = u8[0..100]
		type Inventory = map[string[0..32]]u16
		type Mode = enum { Idle, Busy }
		type Shape = enum "kind" { Circle { radius: f32 } }
		event E = { from: Server, type: Reliable, call: SingleSync, data: (h: Health) }
	`)

	out := typescript.Emit(cfg, config.Server)
	assert.Contains(t, out, "type Health = number;")
	assert.Contains(t, out, "type Inventory = Map<string, number>;")
	assert.Contains(t, out, `type Mode = "Idle" | "Busy";`)
	assert.Contains(t, out, `type Shape = { kind: "Circle"; radius: number };`)
	assert.Contains(t, out, "h: Health")
}

func Test_Emit_FunctReturnShapes(t *testing.T) {
	cfg := compile(t, `
		funct None = { call: Sync, args: () }
		funct One = { call: Sync, args: (), rets: (u8) }
		funct Two = { call: Sync, args: (), rets: (u8, string) }
	`)

	client := typescript.Emit(cfg, config.Client)
	assert.Contains(t, client, "Call: () => void;")
	assert.Contains(t, client, "Call: () => number;")
	assert.Contains(t, client, "Call: () => LuaTuple<[number, string]>;")

	server := typescript.Emit(cfg, config.Server)
	assert.Contains(t, server,
		"SetCallback: (callback: (player: Player) => LuaTuple<[number, string]>) => () => void;")
}

func Test_Emit_TupleCapBoundsExpansion(t *testing.T) {
	cfg := compile(t, `
		opt typescript_max_tuple_length = 3
		type Short = boolean[3..3]
		type Long = boolean[4..4]
		event E = { from: Server, type: Reliable, call: SingleSync, data: (s: Short, l: Long) }
	`)

	out := typescript.Emit(cfg, config.Server)
	assert.Contains(t, out, "type Short = [boolean, boolean, boolean];")
	assert.Contains(t, out, "type Long = boolean[];")
}

func Test_Emit_PromiseWrapsCallReturn(t *testing.T) {
	cfg := compile(t, `
		opt typescript = true
		opt yield_type = promise
		funct Get = { call: Sync, args: (), rets: (u8) }
	`)

	client := typescript.Emit(cfg, config.Client)
	assert.Contains(t, client, "Call: () => Promise<number>;")
}

func Test_Emit_OptionalAndPlatformTypes(t *testing.T) {
	cfg := compile(t, `
		type T = struct { pos: Vector3, part: Instance(BasePart), note: string[0..64]? }
		event E = { from: Server, type: Reliable, call: SingleSync, data: (t: T) }
	`)

	out := typescript.Emit(cfg, config.Server)
	assert.Contains(t, out, "pos: Vector3")
	assert.Contains(t, out, "part: BasePart")
	assert.Contains(t, out, "note: string | undefined")
}

func Test_Emit_ManualEventLoopMember(t *testing.T) {
	cfg := compile(t, `
		opt manual_event_loop = true
		event E = { from: Server, type: Reliable, call: SingleSync, data: () }
	`)

	out := typescript.Emit(cfg, config.Server)
	assert.Contains(t, out, "SendEvents: () => void;")
}

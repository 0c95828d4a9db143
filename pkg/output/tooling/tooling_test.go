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
package tooling_test

import (
	"testing"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/internal/assert"
	"github.com/netschema/zapc/pkg/output/tooling"
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

const schema = `
	opt tooling = true
	event Tick = { from: Server, type: Reliable, call: SingleSync, data: (n: u8) }
	event Blip = { from: Client, type: Unreliable, call: SingleSync, data: () }
	funct Add = { call: Sync, args: (a: u8, b: u8), rets: (u16) }
`

func Test_Emit_DecodersPerBucket(t *testing.T) {
	out := tooling.Emit(compile(t, schema))

	assert.Contains(t, out, "function tooling.DecodeServerReliable(buff, captured_refs)")
	assert.Contains(t, out, "function tooling.DecodeServerUnreliable(buff, captured_refs)")
	assert.Contains(t, out, "function tooling.DecodeClientReliable(buff, captured_refs)")
	assert.Contains(t, out, "function tooling.DecodeClientUnreliable(buff, captured_refs)")
}

func Test_Emit_RecordsCarryNameAndArguments(t *testing.T) {
	out := tooling.Emit(compile(t, schema))

	assert.Contains(t, out, `record = { name = "Tick", arguments = {} }`)
	assert.Contains(t, out, "record.arguments.n =")
	// Function responses are unnamed, so return values key positionally.
	assert.Contains(t, out, "record.arguments[1] =")
}

func Test_Emit_InternalDataGatedByOption(t *testing.T) {
	plain := tooling.Emit(compile(t, schema))
	assert.NotContains(t, plain, "record.id =")
	assert.NotContains(t, plain, "record.call_id =")

	verbose := tooling.Emit(compile(t, "opt tooling_show_internal_data = true\n"+schema))
	assert.Contains(t, verbose, "record.id =")
	assert.Contains(t, verbose, "record.call_id = call_id")
}

func Test_Emit_ClonesReferenceList(t *testing.T) {
	out := tooling.Emit(compile(t, schema))

	// Inputs are never mutated: the positional Instance reads consume a
	// clone of the captured list.
	assert.Contains(t, out, "table.clone(captured_refs)")
}

func Test_Emit_NeverTouchesWireEndpoints(t *testing.T) {
	out := tooling.Emit(compile(t, schema))

	assert.NotContains(t, out, "FireServer")
	assert.NotContains(t, out, "FireClient")
	assert.NotContains(t, out, "game:GetService")
}

func Test_Emit_IsDeterministic(t *testing.T) {
	cfg := compile(t, schema)

	assert.Equal(t, tooling.Emit(cfg), tooling.Emit(cfg))
}

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
package config_test

import (
	"testing"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/internal/assert"
	"github.com/netschema/zapc/pkg/parser"
	"github.com/netschema/zapc/pkg/source"
)

// S1: a single reliable server-to-client event gets id 0 in the
// client-reliable bucket.
func Test_S1_SingleReliableEvent(t *testing.T) {
	file := source.NewSourceFile("s1.zap", []byte(
		`event Tick = { from: Server, type: Reliable, call: SingleSync, data: (n: u8) }`))

	tree, perrs := parser.Parse(file)
	assert.Equal(t, 0, len(perrs))

	cfg, reports := config.Convert(tree)
	assert.False(t, reports.HasErrors(false))
	assert.Equal(t, 1, len(cfg.Events))
	assert.Equal(t, uint16(0), cfg.Events[0].Id)
	assert.Equal(t, config.Server, cfg.Events[0].From)
	assert.True(t, cfg.Events[0].Reliable)
}

// S2: two unreliable events from the server — the second's fixed payload
// alone exceeds the budget of 1000 - 1 - 2 = 997 bytes.
func Test_S2_UnreliableBudgetExceeded(t *testing.T) {
	file := source.NewSourceFile("s2.zap", []byte(`
		event A = { from: Server, type: Unreliable, call: SingleSync, data: (x: buff[400..400]) }
		event B = { from: Server, type: Unreliable, call: SingleSync, data: (x: buff[1000..1000]) }
	`))

	tree, perrs := parser.Parse(file)
	assert.Equal(t, 0, len(perrs))

	_, reports := config.Convert(tree)
	assert.True(t, reports.HasErrors(false))
}

// S3: an array field with a non-zero minimum length never breaks the
// recursive chain — rejected as unbounded recursion.
func Test_S3_UnboundedRecursionRejected(t *testing.T) {
	file := source.NewSourceFile("s3.zap", []byte(
		`type List = struct { head: u8, tail: List[1..] }`))

	tree, perrs := parser.Parse(file)
	assert.Equal(t, 0, len(perrs))

	_, reports := config.Convert(tree)
	assert.True(t, reports.HasErrors(false))
}

// S4: the same shape with a zero-minimum array accepts, since the chain is
// broken by the zero-length base case.
func Test_S4_ZeroMinimumArrayAccepted(t *testing.T) {
	file := source.NewSourceFile("s4.zap", []byte(
		`type List = struct { head: u8, tail: List[0..] }`))

	tree, perrs := parser.Parse(file)
	assert.Equal(t, 0, len(perrs))

	_, reports := config.Convert(tree)
	assert.False(t, reports.HasErrors(false))
}

// S6: yield_type = "future" together with typescript emission is rejected.
func Test_S6_FutureWithTypescriptRejected(t *testing.T) {
	file := source.NewSourceFile("s6.zap", []byte(`
		opt typescript = true
		opt yield_type = future
	`))

	tree, perrs := parser.Parse(file)
	assert.Equal(t, 0, len(perrs))

	_, reports := config.Convert(tree)
	assert.True(t, reports.HasErrors(false))
}

func Test_DuplicateTypeDeclarationIsError(t *testing.T) {
	file := source.NewSourceFile("dup.zap", []byte(`
		type Foo = u8
		type Foo = u16
	`))

	tree, perrs := parser.Parse(file)
	assert.Equal(t, 0, len(perrs))

	_, reports := config.Convert(tree)
	assert.True(t, reports.HasErrors(false))
}

func Test_UnknownTypeReferenceIsError(t *testing.T) {
	file := source.NewSourceFile("unknown.zap", []byte(`type Foo = Bar`))

	tree, perrs := parser.Parse(file)
	assert.Equal(t, 0, len(perrs))

	_, reports := config.Convert(tree)
	assert.True(t, reports.HasErrors(false))
}

func Test_FunctionIdsShareReliableBucket(t *testing.T) {
	file := source.NewSourceFile("funct.zap", []byte(`
		event First = { from: Server, type: Reliable, call: SingleSync, data: () }
		funct Add = { call: Sync, args: (a: u8, b: u8), rets: (u16) }
	`))

	tree, perrs := parser.Parse(file)
	assert.Equal(t, 0, len(perrs))

	cfg, reports := config.Convert(tree)
	assert.False(t, reports.HasErrors(false))
	assert.Equal(t, uint16(0), cfg.Events[0].Id)
	assert.Equal(t, uint16(1), cfg.Functs[0].ServerId)
}

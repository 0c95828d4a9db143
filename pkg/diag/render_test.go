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
package diag_test

import (
	"bytes"
	"testing"

	"github.com/netschema/zapc/pkg/diag"
	"github.com/netschema/zapc/pkg/internal/assert"
	"github.com/netschema/zapc/pkg/source"
)

func Test_Render_ErrorWithLabeledSecondarySpan(t *testing.T) {
	src := "type Foo = u8\ntype Foo = u16\n"
	file := source.NewSourceFile("net.zap", []byte(src))

	rep := diag.Errorf("E-DUP-TYPE", source.NewSpan(19, 22), "duplicate type declaration 'Foo'").
		WithLabel(source.NewSpan(5, 8), "first declared here")

	var buf bytes.Buffer

	diag.NewRenderer(&buf, file).Render(diag.Reports{rep})
	out := buf.String()

	assert.Contains(t, out, "error[E-DUP-TYPE]: duplicate type declaration 'Foo'")
	assert.Contains(t, out, "net.zap:2")
	assert.Contains(t, out, "net.zap:1")
	assert.Contains(t, out, "type Foo = u16")
	assert.Contains(t, out, "type Foo = u8")
	assert.Contains(t, out, "first declared here")
	assert.Contains(t, out, "^^^")
	// Plain writer: no ANSI escapes.
	assert.NotContains(t, out, "\033[")
}

func Test_Render_WarningSeverityHeader(t *testing.T) {
	file := source.NewSourceFile("net.zap", []byte("opt foo = 1\n"))
	rep := diag.Warnf("W-UNKNOWN-OPTION", source.NewSpan(4, 7), "unknown option 'foo'")

	var buf bytes.Buffer

	diag.NewRenderer(&buf, file).Render(diag.Reports{rep})

	assert.Contains(t, buf.String(), "warning[W-UNKNOWN-OPTION]: unknown option 'foo'")
}

func Test_Reports_HasErrorsPromotion(t *testing.T) {
	warnOnly := diag.Reports{diag.Warnf("W-X", source.NewSpan(0, 1), "w")}

	assert.False(t, warnOnly.HasErrors(false))
	assert.True(t, warnOnly.HasErrors(true))

	mixed := append(warnOnly, diag.Errorf("E-X", source.NewSpan(0, 1), "e"))
	assert.True(t, mixed.HasErrors(false))
}

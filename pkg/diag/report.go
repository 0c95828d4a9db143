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

// Package diag implements the compiler's diagnostic model: reports are
// accumulated through every stage of the pipeline and are only ever
// rendered, never used for control flow.
package diag

import (
	"fmt"

	"github.com/netschema/zapc/pkg/source"
)

// Severity classifies how serious a Report is.
type Severity uint8

const (
	// Note is informational only; never blocks code generation.
	Note Severity = iota
	// Warning may be promoted to Error by the --no-warnings flag.
	Warning
	// Error always blocks code generation.
	Error
)

// String renders the severity the way the terminal renderer expects to see
// it ("error", "warning", "note").
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "note"
	}
}

// Label attaches an explanatory message to a secondary span, e.g. pointing
// at the first of two conflicting declarations.
type Label struct {
	Span    source.Span
	Message string
}

// Report is a single structured diagnostic, carrying everything the
// renderer needs and nothing else: reports are plain data, accumulated by
// every compiler stage and consumed only by the renderer.
type Report struct {
	Severity Severity
	// Code is a short stable identifier, e.g. "E-DUP-TYPE". Empty for notes.
	Code    string
	Primary source.Span
	Message string
	// Secondary carries additional labeled spans, e.g. the span of an
	// earlier conflicting declaration.
	Secondary []Label
}

// Errorf constructs an error-severity report.
func Errorf(code string, span source.Span, format string, args ...any) Report {
	return newReport(Error, code, span, format, args...)
}

// Warnf constructs a warning-severity report.
func Warnf(code string, span source.Span, format string, args ...any) Report {
	return newReport(Warning, code, span, format, args...)
}

// Notef constructs a note-severity report.
func Notef(span source.Span, format string, args ...any) Report {
	return newReport(Note, "", span, format, args...)
}

// WithLabel attaches a secondary labeled span to a report, returning the
// updated report by value.
func (r Report) WithLabel(span source.Span, format string, args ...any) Report {
	r.Secondary = append(r.Secondary, Label{span, fmt.Sprintf(format, args...)})
	return r
}

// Reports is a convenience alias used throughout the pipeline for the
// accumulated set of diagnostics produced by a stage.
type Reports []Report

// HasErrors reports whether any entry in rs is error-severity, optionally
// treating Warning as Error when promote is set (the --no-warnings flag in
// §6 of the schema, which promotes warnings to errors).
func (rs Reports) HasErrors(promote bool) bool {
	for _, r := range rs {
		if r.Severity == Error || (promote && r.Severity == Warning) {
			return true
		}
	}

	return false
}

func newReport(sev Severity, code string, span source.Span, format string, args ...any) Report {
	return Report{Severity: sev, Code: code, Primary: span, Message: fmt.Sprintf(format, args...)}
}

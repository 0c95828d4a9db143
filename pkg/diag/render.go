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
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/netschema/zapc/pkg/source"
	"golang.org/x/term"
)

// Renderer formats reports as human-readable text with source excerpts, in
// the style of a terminal compiler front-end: one header line per report
// (severity, code, message) followed by the enclosing source line and a
// caret underline of the offending span. Colour is only used when the
// output stream is attached to a terminal, mirroring how
// pkg/util/termio.Terminal gates raw-mode and escape-sequence use on
// term.IsTerminal.
type Renderer struct {
	out    io.Writer
	file   *source.File
	colour bool
	width  uint
}

// NewRenderer constructs a renderer for diagnostics arising from file,
// writing to out.  Colour and the width at which quoted source lines are
// clipped are auto-detected from out when it is an *os.File attached to a
// terminal; otherwise output is plain and source lines are clipped at 100
// columns.
func NewRenderer(out io.Writer, file *source.File) *Renderer {
	colour, width := false, uint(100)

	if f, ok := out.(*os.File); ok {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			colour = true

			if w, _, err := term.GetSize(fd); err == nil && w > 20 {
				width = uint(w)
			}
		}
	}

	return &Renderer{out, file, colour, width}
}

// Render writes every report in rs to the renderer's output stream, in
// order.
func (r *Renderer) Render(rs Reports) {
	for _, rep := range rs {
		r.render(rep)
	}
}

func (r *Renderer) render(rep Report) {
	header := r.colourise(rep.Severity, rep.Severity.String())

	if rep.Code != "" {
		fmt.Fprintf(r.out, "%s[%s]: %s\n", header, rep.Code, rep.Message)
	} else {
		fmt.Fprintf(r.out, "%s: %s\n", header, rep.Message)
	}

	r.renderSpan(rep.Primary, "")

	for _, label := range rep.Secondary {
		r.renderSpan(label.Span, label.Message)
	}

	fmt.Fprintln(r.out)
}

func (r *Renderer) renderSpan(span source.Span, note string) {
	line := r.file.FindFirstEnclosingLine(span)
	fmt.Fprintf(r.out, "  --> %s:%d\n", r.file.Filename(), line.Number())
	text := strings.TrimRight(line.String(), "\r\n")
	// Column offsets (0-based) of the span within this line.
	lineStart := line.Start()
	startCol := max(0, span.Start()-lineStart)
	endCol := span.End() - lineStart

	if endCol > len(text) {
		endCol = len(text)
	}

	if endCol <= startCol {
		endCol = startCol + 1
	}

	prefix := fmt.Sprintf(" %4d | ", line.Number())
	fmt.Fprintf(r.out, "%s%s\n", prefix, r.clip(text))

	underline := strings.Repeat(" ", startCol) + strings.Repeat("^", endCol-startCol)
	fmt.Fprintf(r.out, "%s%s", strings.Repeat(" ", len(prefix)), r.colouriseRaw("1;31", underline))

	if note != "" {
		fmt.Fprintf(r.out, " %s", note)
	}

	fmt.Fprintln(r.out)
}

func (r *Renderer) clip(text string) string {
	if uint(len(text)) <= r.width {
		return text
	}

	return text[:r.width]
}

func (r *Renderer) colourise(sev Severity, text string) string {
	switch sev {
	case Error:
		return r.colouriseRaw("1;31", text)
	case Warning:
		return r.colouriseRaw("1;33", text)
	default:
		return r.colouriseRaw("1;36", text)
	}
}

func (r *Renderer) colouriseRaw(code string, text string) string {
	if !r.colour {
		return text
	}

	return fmt.Sprintf("\033[%sm%s\033[0m", code, text)
}

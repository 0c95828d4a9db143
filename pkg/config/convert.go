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
package config

import (
	log "github.com/sirupsen/logrus"

	"github.com/netschema/zapc/pkg/ast"
	"github.com/netschema/zapc/pkg/diag"
	"github.com/netschema/zapc/pkg/source"
)

// converter carries the mutable state threaded through the nine steps of
// §4.2's "Order of work"; each step method is a pure function of the state
// accumulated so far.
type converter struct {
	file     *ast.File
	reports  diag.Reports
	cfg      Config
	typeSpans map[string]source.Span
}

// typeSpan returns the declaration span of a named type, for diagnostics
// raised after the syntax tree has gone out of scope (e.g. recursion
// detection, which only has type names to work with).
func (c *converter) typeSpan(name string) source.Span {
	return c.typeSpans[name]
}

// Convert runs the semantic pass (§4.2): syntax tree in, resolved Config and
// diagnostics out. Convert never panics on a malformed-but-parseable file;
// every failure is reported as a diag.Report.
func Convert(file *ast.File) (Config, diag.Reports) {
	c := &converter{file: file}
	c.cfg.Options = DefaultOptions()

	if len(file.Types)+len(file.Events)+len(file.Functs) == 0 {
		c.reports = append(c.reports, diag.Warnf("W-EMPTY", source.NewSpan(0, 0),
			"schema contains no declarations"))
	}

	c.indexTypes()           // step 1
	c.resolveTypeDecls()      // steps 4, 5 (via resolveType), part of 6
	c.assignIds()             // steps 2, 3
	c.resolveEventsAndFuncts() // steps 4, 5, 6 for event/funct member types
	c.detectRecursion()       // step 7
	c.sizeAnalysis()          // step 8
	c.resolveOptions()        // step 9

	log.WithFields(log.Fields{
		"types": len(c.cfg.Types), "events": len(c.cfg.Events), "functs": len(c.cfg.Functs),
		"reports": len(c.reports),
	}).Debug("convert: finished")

	return c.cfg, c.reports
}

// ---------------------------------------------------------------------
// Step 1: index type declarations
// ---------------------------------------------------------------------

func (c *converter) indexTypes() {
	c.cfg.TypeIndex = map[string]int{}
	c.typeSpans = map[string]source.Span{}

	for _, d := range c.file.Types {
		if prev, dup := c.cfg.TypeIndex[d.Name]; dup {
			c.reports = append(c.reports,
				diag.Errorf("E-DUP-TYPE", d.Span(), "duplicate type declaration '%s'", d.Name).
					WithLabel(c.file.Types[prev].Span(), "first declared here"))

			continue
		}

		idx := len(c.cfg.Types)
		c.cfg.TypeIndex[d.Name] = idx
		c.typeSpans[d.Name] = d.Span()
		c.cfg.Types = append(c.cfg.Types, TypeDecl{Name: d.Name})
	}
}

func (c *converter) resolveTypeDecls() {
	for _, d := range c.file.Types {
		idx, ok := c.cfg.TypeIndex[d.Name]
		if !ok {
			continue // duplicate, already reported
		}

		c.cfg.Types[idx].Type = c.resolveType(d.Type)
	}
}

// ---------------------------------------------------------------------
// Steps 2-3: unreliable counts and id assignment
// ---------------------------------------------------------------------

func (c *converter) assignIds() {
	var serverReliable, serverUnreliable, clientReliable, clientUnreliable uint16

	for _, e := range c.file.Events {
		from := Server
		if e.From == "Client" {
			from = Client
		} else if e.From != "Server" {
			c.reports = append(c.reports, diag.Errorf("E-EVENT-FROM", e.FromSpan,
				"event 'from' must be 'Server' or 'Client', found '%s'", e.From))
		}

		reliable := e.Reliable != "Unreliable"
		if e.Reliable != "Reliable" && e.Reliable != "Unreliable" {
			c.reports = append(c.reports, diag.Errorf("E-EVENT-TYPE", e.TypeSpan,
				"event 'type' must be 'Reliable' or 'Unreliable', found '%s'", e.Reliable))
		}

		call, ok := parseCallStyle(e.Call)
		if !ok {
			c.reports = append(c.reports, diag.Errorf("E-EVENT-CALL", e.CallSpan,
				"event 'call' must be one of SingleSync, SingleAsync, ManySync, ManyAsync, found '%s'", e.Call))
		}

		var id uint16

		switch {
		case from == Server && reliable:
			id, serverReliable = serverReliable, serverReliable+1
		case from == Server && !reliable:
			id, serverUnreliable = serverUnreliable, serverUnreliable+1
		case from == Client && reliable:
			id, clientReliable = clientReliable, clientReliable+1
		default:
			id, clientUnreliable = clientUnreliable, clientUnreliable+1
		}

		c.cfg.Events = append(c.cfg.Events, EventDecl{
			Name: e.Name, From: from, Reliable: reliable, Call: call, Id: id,
		})
	}

	for _, f := range c.file.Functs {
		if f.Call != "Sync" && f.Call != "Async" {
			c.reports = append(c.reports, diag.Errorf("E-FUNCT-CALL", f.CallSpan,
				"function 'call' must be 'Sync' or 'Async', found '%s'", f.Call))
		}

		sid, cid := serverReliable, clientReliable
		serverReliable++
		clientReliable++

		c.cfg.Functs = append(c.cfg.Functs, FunctDecl{
			Name: f.Name, Async: f.Call == "Async", ServerId: sid, ClientId: cid,
		})
	}

	c.cfg.ServerReliableCount = int(serverReliable)
	c.cfg.ServerUnreliableCount = int(serverUnreliable)
	c.cfg.ClientReliableCount = int(clientReliable)
	c.cfg.ClientUnreliableCount = int(clientUnreliable)
}

func parseCallStyle(s string) (CallStyle, bool) {
	switch s {
	case "SingleSync":
		return SingleSync, true
	case "SingleAsync":
		return SingleAsync, true
	case "ManySync":
		return ManySync, true
	case "ManyAsync":
		return ManyAsync, true
	default:
		return SingleSync, false
	}
}

// ---------------------------------------------------------------------
// Member type resolution for events and functions
// ---------------------------------------------------------------------

func (c *converter) resolveEventsAndFuncts() {
	for i, e := range c.file.Events {
		c.cfg.Events[i].Data = c.resolveParams(e.Data)
	}

	for i, f := range c.file.Functs {
		c.cfg.Functs[i].Args = c.resolveParams(f.Args)

		rets := make([]Type, 0, len(f.Rets))
		for _, r := range f.Rets {
			rets = append(rets, c.resolveType(r))
		}

		c.cfg.Functs[i].Rets = rets
	}
}

func (c *converter) resolveParams(params []ast.Param) []Field {
	seen := map[string]bool{}
	fields := make([]Field, 0, len(params))

	for _, p := range params {
		if p.Name != "" {
			if seen[p.Name] {
				c.reports = append(c.reports, diag.Errorf("E-DUP-PARAM", p.NameSpan,
					"duplicate parameter name '%s'", p.Name))

				continue
			}

			seen[p.Name] = true
		}

		fields = append(fields, Field{Name: p.Name, Type: c.resolveType(p.Type)})
	}

	return fields
}

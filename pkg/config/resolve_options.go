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
	"github.com/netschema/zapc/pkg/ast"
	"github.com/netschema/zapc/pkg/diag"
	"github.com/netschema/zapc/pkg/source"
)

// resolveOptions implements §4.2 step 9, including the async_lib/yield_type
// interaction matrix resolved from original_source/ (SPEC_FULL.md §4): an
// empty async_lib is an error whenever yield_type is not "yield", unless
// typescript side-files are enabled (in which case yield_type must resolve
// to a Promise-compatible shape and a non-empty async_lib is instead the
// error); conversely a non-empty async_lib with yield_type = "yield" is
// always an error, since the loader would never be invoked.
func (c *converter) resolveOptions() {
	var yieldSpan, asyncLibSpan, typescriptSpan ast.Node

	for _, o := range c.file.Options {
		if !recognizedOptions[o.Name] {
			c.reports = append(c.reports, diag.Warnf("W-UNKNOWN-OPTION", o.NameSpan, "unknown option '%s'", o.Name))
			continue
		}

		switch o.Name {
		case "typescript":
			typescriptSpan = o
			c.applyBool(&c.cfg.Options.Typescript, o)
		case "typescript_max_tuple_length":
			c.applyInt(&c.cfg.Options.TypescriptMaxTupleLength, o)
		case "tooling":
			c.applyBool(&c.cfg.Options.Tooling, o)
		case "tooling_show_internal_data":
			c.applyBool(&c.cfg.Options.ToolingShowInternalData, o)
		case "write_checks":
			c.applyBool(&c.cfg.Options.WriteChecks, o)
		case "manual_event_loop":
			c.applyBool(&c.cfg.Options.ManualEventLoop, o)
		case "remote_scope":
			c.applyString(&c.cfg.Options.RemoteScope, o)
		case "remote_folder":
			c.applyString(&c.cfg.Options.RemoteFolder, o)
		case "server_output":
			c.applyString(&c.cfg.Options.ServerOutput, o)
		case "client_output":
			c.applyString(&c.cfg.Options.ClientOutput, o)
		case "tooling_output":
			c.applyString(&c.cfg.Options.ToolingOutput, o)
		case "disable_fire_all":
			c.applyBool(&c.cfg.Options.DisableFireAll, o)
		case "casing":
			c.applyCasing(o)
		case "yield_type":
			yieldSpan = o
			c.applyYieldType(o)
		case "async_lib":
			asyncLibSpan = o
			c.applyString(&c.cfg.Options.AsyncLib, o)
		}
	}

	c.validateYieldMatrix(yieldSpan, asyncLibSpan, typescriptSpan)
}

func (c *converter) validateYieldMatrix(yieldSpan, asyncLibSpan, typescriptSpan ast.Node) {
	opts := c.cfg.Options

	if opts.Typescript {
		if opts.YieldType == YieldFuture {
			rep := diag.Errorf("E-OPT-CONFLICT", spanOf(yieldSpan, typescriptSpan),
				"yield_type = \"future\" is incompatible with typescript side-file emission")
			if typescriptSpan != nil {
				rep = rep.WithLabel(typescriptSpan.Span(), "typescript enabled here")
			}

			c.reports = append(c.reports, rep)
		}

		if opts.AsyncLib != "" {
			c.reports = append(c.reports, diag.Errorf("E-OPT-CONFLICT", spanOf(asyncLibSpan, typescriptSpan),
				"async_lib must be empty when typescript side-files are emitted; the side-files describe an ambient Promise-returning surface"))
		}

		return
	}

	switch {
	case opts.YieldType == YieldYield && opts.AsyncLib != "":
		c.reports = append(c.reports, diag.Errorf("E-OPT-CONFLICT", spanOf(asyncLibSpan, yieldSpan),
			"async_lib must be empty when yield_type = \"yield\": the loader would never be invoked"))
	case opts.YieldType != YieldYield && opts.AsyncLib == "":
		c.reports = append(c.reports, diag.Errorf("E-OPT-CONFLICT", spanOf(yieldSpan, asyncLibSpan),
			"yield_type = \"%s\" requires a non-empty async_lib loader expression", opts.YieldType))
	}
}

// spanOf returns the span of the first non-nil node, falling back to a
// zero span when neither option was set explicitly (the default applies).
func spanOf(nodes ...ast.Node) source.Span {
	for _, n := range nodes {
		if n != nil {
			return n.Span()
		}
	}

	return source.Span{}
}

func (c *converter) applyBool(dst *bool, o *ast.OptionDecl) {
	if o.Value.Kind != ast.BoolValue {
		c.reports = append(c.reports, diag.Errorf("E-OPT-VALUE", o.Value.Span(), "option '%s' expects a boolean", o.Name))
		return
	}

	*dst = o.Value.Bool
}

func (c *converter) applyInt(dst *int, o *ast.OptionDecl) {
	if o.Value.Kind != ast.NumberValue {
		c.reports = append(c.reports, diag.Errorf("E-OPT-VALUE", o.Value.Span(), "option '%s' expects a number", o.Name))
		return
	}

	*dst = int(o.Value.Number)
}

func (c *converter) applyString(dst *string, o *ast.OptionDecl) {
	if o.Value.Kind != ast.StringValue {
		c.reports = append(c.reports, diag.Errorf("E-OPT-VALUE", o.Value.Span(), "option '%s' expects a string", o.Name))
		return
	}

	*dst = o.Value.Str
}

func (c *converter) applyCasing(o *ast.OptionDecl) {
	if o.Value.Kind != ast.IdentValue {
		c.reports = append(c.reports, diag.Errorf("E-OPT-VALUE", o.Value.Span(), "option 'casing' expects an identifier"))
		return
	}

	switch Casing(o.Value.Str) {
	case Pascal, Camel, Snake:
		c.cfg.Options.Casing = Casing(o.Value.Str)
	default:
		c.reports = append(c.reports, diag.Errorf("E-OPT-VALUE", o.Value.Span(),
			"casing must be one of Pascal, camel, snake_case, found '%s'", o.Value.Str))
	}
}

func (c *converter) applyYieldType(o *ast.OptionDecl) {
	if o.Value.Kind != ast.IdentValue && o.Value.Kind != ast.StringValue {
		c.reports = append(c.reports, diag.Errorf("E-OPT-VALUE", o.Value.Span(), "option 'yield_type' expects an identifier"))
		return
	}

	switch YieldType(o.Value.Str) {
	case YieldYield, YieldPromise, YieldFuture:
		c.cfg.Options.YieldType = YieldType(o.Value.Str)
	default:
		c.reports = append(c.reports, diag.Errorf("E-OPT-VALUE", o.Value.Span(),
			"yield_type must be one of yield, promise, future, found '%s'", o.Value.Str))
	}
}

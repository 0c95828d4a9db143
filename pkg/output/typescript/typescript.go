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

// Package typescript emits the static type-definition side-files (§4.6):
// one .d.ts per endpoint describing the emitted module's surface for
// roblox-ts consumers. Methods carry the schema's parameter names, and
// multi-value returns take a LuaTuple shape bounded by the
// typescript_max_tuple_length option.
package typescript

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/output/luau"
)

const header = `// This file was generated by zapc. Do not edit it by hand; recompile the
// schema instead.
`

// emitter binds one endpoint's surface description to the resolved Config;
// the Printer is shared with the Luau emitters since indentation tracking
// is target-agnostic.
type emitter struct {
	p     *luau.Printer
	cfg   *config.Config
	opts  config.Options
	local config.Direction
}

// Emit renders the .d.ts side-file describing the surface of the endpoint
// module for local.
func Emit(cfg *config.Config, local config.Direction) string {
	p := &luau.Printer{}
	p.Push(header)
	p.Blank()

	e := &emitter{p: p, cfg: cfg, opts: cfg.Options, local: local}

	for _, decl := range cfg.Types {
		p.Line("type %s = %s;", decl.Name, e.tsType(decl.Type))
	}

	if len(cfg.Types) > 0 {
		p.Blank()
	}

	p.Line("declare const remotes: {")
	p.Block(func() {
		if e.opts.ManualEventLoop {
			p.Line("SendEvents: () => void;")
		}

		for _, evt := range cfg.Events {
			e.emitEvent(evt)
		}

		for _, f := range cfg.Functs {
			e.emitFunct(f)
		}
	})
	p.Line("};")
	p.Blank()
	p.Line("export = remotes;")

	log.WithFields(log.Fields{"endpoint": local.String(), "bytes": p.Len()}).
		Debug("typescript: emitted side-file")

	return p.String()
}

func (e *emitter) emitEvent(evt config.EventDecl) {
	p := e.p
	outgoing := evt.From == e.local

	p.Line("%s: {", evt.Name)
	p.Block(func() {
		if outgoing {
			e.emitFireMembers(evt)
		} else {
			e.emitListenMember(evt)
		}
	})
	p.Line("};")
}

func (e *emitter) emitFireMembers(evt config.EventDecl) {
	p := e.p
	params := e.paramList(evt.Data)

	if e.local == config.Server {
		p.Line("%s: (%s) => void;", e.opts.Casing.Name(config.MethodFire), prepend("player: Player", params))

		if !e.opts.DisableFireAll {
			p.Line("%s: (%s) => void;", e.opts.Casing.Name(config.MethodFireAll), params)
		}

		p.Line("%s: (%s) => void;", e.opts.Casing.Name(config.MethodFireExcept), prepend("except: Player", params))
		p.Line("%s: (%s) => void;", e.opts.Casing.Name(config.MethodFireList), prepend("list: Player[]", params))
		p.Line("%s: (%s) => void;", e.opts.Casing.Name(config.MethodFireSet), prepend("set: Set<Player>", params))

		return
	}

	p.Line("%s: (%s) => void;", e.opts.Casing.Name(config.MethodFire), params)
}

func (e *emitter) emitListenMember(evt config.EventDecl) {
	p := e.p
	params := e.paramList(evt.Data)

	if e.local == config.Server {
		params = prepend("player: Player", params)
	}

	method := config.MethodOn
	if evt.Call.IsSingle() {
		method = config.MethodSetCallback
	}

	p.Line("%s: (callback: (%s) => void) => () => void;", e.opts.Casing.Name(method), params)
}

func (e *emitter) emitFunct(f config.FunctDecl) {
	p := e.p
	params := e.paramList(f.Args)
	ret := e.retType(f.Rets)

	p.Line("%s: {", f.Name)
	p.Block(func() {
		if e.local == config.Server {
			p.Line("%s: (callback: (%s) => %s) => () => void;",
				e.opts.Casing.Name(config.MethodSetCallback), prepend("player: Player", params), ret)

			return
		}

		// With side-files enabled only yield and promise survive option
		// resolution; promise wraps the same return shape.
		if e.opts.YieldType == config.YieldPromise {
			ret = "Promise<" + ret + ">"
		}

		p.Line("%s: (%s) => %s;", e.opts.Casing.Name(config.MethodCall), params, ret)
	})
	p.Line("};")
}

// retType maps a function's return list to one TypeScript type: void for
// none, the bare type for one, and a LuaTuple for several — falling back
// to a homogenised array shape past typescript_max_tuple_length, the same
// cap applied to exact-length array expansion.
func (e *emitter) retType(rets []config.Type) string {
	switch {
	case len(rets) == 0:
		return "void"
	case len(rets) == 1:
		return e.tsType(rets[0])
	case len(rets) <= e.opts.TypescriptMaxTupleLength:
		parts := make([]string, len(rets))
		for i, t := range rets {
			parts[i] = e.tsType(t)
		}

		return "LuaTuple<[" + strings.Join(parts, ", ") + "]>"
	default:
		return "LuaTuple<" + e.unionOf(rets) + "[]>"
	}
}

func (e *emitter) unionOf(types []config.Type) string {
	var parts []string

	seen := map[string]bool{}

	for _, t := range types {
		s := e.tsType(t)
		if !seen[s] {
			seen[s] = true

			parts = append(parts, s)
		}
	}

	if len(parts) == 1 {
		return parts[0]
	}

	return "(" + strings.Join(parts, " | ") + ")"
}

// paramList renders a named TypeScript parameter list from schema fields,
// synthesising argN for the unnamed case.
func (e *emitter) paramList(fields []config.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", luau.FieldName(f, i, "arg"), e.tsType(f.Type))
	}

	return strings.Join(parts, ", ")
}

func prepend(first, rest string) string {
	if rest == "" {
		return first
	}

	return first + ", " + rest
}

// tsType maps a resolved schema type onto its roblox-ts structural
// notation.
func (e *emitter) tsType(t config.Type) string {
	switch t.Kind {
	case config.KindNum:
		return "number"
	case config.KindString:
		return "string"
	case config.KindBuf:
		return "buffer"
	case config.KindArr:
		return e.arrType(t)
	case config.KindMap:
		return fmt.Sprintf("Map<%s, %s>", e.tsType(*t.Key), e.tsType(*t.Val))
	case config.KindSet:
		return fmt.Sprintf("Set<%s>", e.tsType(*t.Elem))
	case config.KindOpt:
		return e.tsType(*t.Elem) + " | undefined"
	case config.KindRef:
		return t.Ref
	case config.KindStruct:
		return e.structType(t.Fields)
	case config.KindEnum:
		return e.enumType(t)
	case config.KindPlatform:
		return platformType(t)
	default:
		return "unknown"
	}
}

// arrType expands an exact-length array into a tuple shape up to
// typescript_max_tuple_length entries, past which (or for variable
// lengths) it degrades to a plain array.
func (e *emitter) arrType(t config.Type) string {
	elem := e.tsType(*t.Elem)

	if t.Range.Exact() && int(*t.Range.Min) <= e.opts.TypescriptMaxTupleLength {
		n := int(*t.Range.Min)
		parts := make([]string, n)

		for i := range parts {
			parts[i] = elem
		}

		return "[" + strings.Join(parts, ", ") + "]"
	}

	if strings.Contains(elem, "|") {
		elem = "(" + elem + ")"
	}

	return elem + "[]"
}

func (e *emitter) structType(fields []config.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, e.tsType(f.Type))
	}

	return "{ " + strings.Join(parts, "; ") + " }"
}

func (e *emitter) enumType(t config.Type) string {
	parts := make([]string, len(t.Variants))

	if t.Tag == "" {
		for i, v := range t.Variants {
			parts[i] = fmt.Sprintf("%q", v.Name)
		}

		return strings.Join(parts, " | ")
	}

	for i, v := range t.Variants {
		members := make([]string, 0, len(v.Fields)+1)
		members = append(members, fmt.Sprintf("%s: %q", t.Tag, v.Name))

		for _, f := range v.Fields {
			members = append(members, fmt.Sprintf("%s: %s", f.Name, e.tsType(f.Type)))
		}

		parts[i] = "{ " + strings.Join(members, "; ") + " }"
	}

	return strings.Join(parts, " | ")
}

func platformType(t config.Type) string {
	switch t.Platform {
	case config.Vector3:
		return "Vector3"
	case config.Vector2:
		return "Vector2"
	case config.Color3:
		return "Color3"
	case config.CFrame, config.AlignedCFrame:
		return "CFrame"
	case config.DateTime, config.DateTimeMillis:
		return "DateTime"
	case config.Instance:
		if t.Class != "" {
			return t.Class
		}

		return "Instance"
	case config.Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

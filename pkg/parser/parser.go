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
package parser

import (
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/netschema/zapc/pkg/ast"
	"github.com/netschema/zapc/pkg/diag"
	"github.com/netschema/zapc/pkg/source"
	"github.com/netschema/zapc/pkg/source/lex"
)

// topLevelKeywords names the identifiers which begin a top-level
// declaration; used both for dispatch and for recovery (§4.1: "a malformed
// declaration emits a report and skips to the next top-level boundary").
var topLevelKeywords = map[string]bool{
	"opt": true, "type": true, "event": true, "funct": true,
}

// numericFamilies lists the numeric family keywords of §3.
var numericFamilies = map[string]bool{
	"f32": true, "f64": true,
	"u8": true, "u16": true, "u32": true,
	"i8": true, "i16": true, "i32": true,
}

// Parser is a recursive-descent parser over a token stream, recovering at
// top-level declaration boundaries rather than aborting on the first
// malformed declaration.
type Parser struct {
	srcfile *source.File
	tokens  []lex.Token
	index   int
	reports diag.Reports
}

// Parse lexes and parses a schema source file, returning the syntax tree
// together with every diagnostic produced (lexical or syntactic). Parse
// never panics on malformed-but-valid-UTF-8 input.
func Parse(srcfile *source.File) (*ast.File, diag.Reports) {
	tokens, errs := Lex(srcfile)
	if len(errs) > 0 {
		var reports diag.Reports
		for _, e := range errs {
			reports = append(reports, diag.Errorf("E-LEX", e.Span(), "%s", e.Message()))
		}

		return nil, reports
	}

	p := &Parser{srcfile: srcfile, tokens: tokens}
	file := p.parseFile()

	log.WithFields(log.Fields{
		"tokens": len(tokens), "options": len(file.Options), "types": len(file.Types),
		"events": len(file.Events), "functs": len(file.Functs), "reports": len(p.reports),
	}).Debug("parse: finished")

	return file, p.reports
}

func (p *Parser) parseFile() *ast.File {
	file := &ast.File{}

	for p.lookahead().Kind != END_OF {
		start := p.index
		name := p.identText(p.lookahead())

		if !topLevelKeywords[name] {
			p.error(p.lookahead(), "E-DECL", "expected 'opt', 'type', 'event' or 'funct'")
			p.recover()

			continue
		}

		switch name {
		case "opt":
			if d := p.parseOption(); d != nil {
				file.Options = append(file.Options, d)
			}
		case "type":
			if d := p.parseTypeDecl(); d != nil {
				file.Types = append(file.Types, d)
			}
		case "event":
			if d := p.parseEventDecl(); d != nil {
				file.Events = append(file.Events, d)
			}
		case "funct":
			if d := p.parseFunctDecl(); d != nil {
				file.Functs = append(file.Functs, d)
			}
		}
		// A failed declaration that didn't consume any tokens would loop
		// forever; guard against it defensively.
		if p.index == start {
			p.recover()
		}
	}

	return file
}

// recover skips tokens until the next top-level keyword or EOF, per the
// recovery contract of §4.1.
func (p *Parser) recover() {
	for p.lookahead().Kind != END_OF {
		if topLevelKeywords[p.identText(p.lookahead())] {
			return
		}

		p.index++
	}
}

// ---------------------------------------------------------------------
// opt name = value
// ---------------------------------------------------------------------

func (p *Parser) parseOption() *ast.OptionDecl {
	start := p.index

	if _, ok := p.expectIdent("opt"); !ok {
		return nil
	}

	nameTok, ok := p.expect(IDENT)
	if !ok {
		return nil
	}

	if _, ok := p.expect(EQUALS); !ok {
		return nil
	}

	value, ok := p.parseValue()
	if !ok {
		return nil
	}

	span := p.spanFrom(start)

	return ast.NewOptionDecl(p.text(nameTok.Span), nameTok.Span, value, span)
}

func (p *Parser) parseValue() (ast.Value, bool) {
	tok := p.lookahead()

	switch tok.Kind {
	case STRING:
		p.index++
		return ast.NewStringValue(p.unquote(tok.Span), tok.Span), true
	case NUMBER:
		p.index++

		n, err := strconv.ParseFloat(p.text(tok.Span), 64)
		if err != nil {
			p.error(tok, "E-OPT-VALUE", "malformed numeric option value")
			return ast.Value{}, false
		}

		return ast.NewNumberValue(n, tok.Span), true
	case IDENT:
		p.index++

		text := p.text(tok.Span)
		if text == "true" || text == "false" {
			return ast.NewBoolValue(text == "true", tok.Span), true
		}

		return ast.NewIdentValue(text, tok.Span), true
	default:
		p.error(tok, "E-OPT-VALUE", "expected a boolean, number, string or identifier")
		return ast.Value{}, false
	}
}

// ---------------------------------------------------------------------
// type Name = TypeExpr
// ---------------------------------------------------------------------

func (p *Parser) parseTypeDecl() *ast.TypeDecl {
	start := p.index

	if _, ok := p.expectIdent("type"); !ok {
		return nil
	}

	nameTok, ok := p.expect(IDENT)
	if !ok {
		return nil
	}

	if _, ok := p.expect(EQUALS); !ok {
		return nil
	}

	ty, ok := p.parseTypeExpr()
	if !ok {
		return nil
	}

	return ast.NewTypeDecl(p.text(nameTok.Span), nameTok.Span, ty, p.spanFrom(start))
}

// ---------------------------------------------------------------------
// event Name = { from: .., type: .., call: .., data: (p: T, ...) }
// ---------------------------------------------------------------------

func (p *Parser) parseEventDecl() *ast.EventDecl {
	start := p.index

	if _, ok := p.expectIdent("event"); !ok {
		return nil
	}

	nameTok, ok := p.expect(IDENT)
	if !ok {
		return nil
	}

	if _, ok := p.expect(EQUALS); !ok {
		return nil
	}

	if _, ok := p.expect(LBRACE); !ok {
		return nil
	}

	decl := &ast.EventDecl{Name: p.text(nameTok.Span), NameSpan: nameTok.Span}

	for !p.follows(RBRACE) {
		keyTok, ok := p.expect(IDENT)
		if !ok {
			return nil
		}

		key := p.text(keyTok.Span)

		if _, ok := p.expect(COLON); !ok {
			return nil
		}

		switch key {
		case "from":
			valTok, ok := p.expect(IDENT)
			if !ok {
				return nil
			}

			decl.From = p.text(valTok.Span)
			decl.FromSpan = valTok.Span
		case "type":
			valTok, ok := p.expect(IDENT)
			if !ok {
				return nil
			}

			decl.Reliable = p.text(valTok.Span)
			decl.TypeSpan = valTok.Span
		case "call":
			valTok, ok := p.expect(IDENT)
			if !ok {
				return nil
			}

			decl.Call = p.text(valTok.Span)
			decl.CallSpan = valTok.Span
		case "data":
			params, ok := p.parseParamList()
			if !ok {
				return nil
			}

			decl.Data = params
		default:
			p.error(keyTok, "E-EVENT-FIELD", "unknown event field '%s'", key)
			return nil
		}

		if !p.match(COMMA) {
			break
		}
	}

	if _, ok := p.expect(RBRACE); !ok {
		return nil
	}

	return decl.WithSpan(p.spanFrom(start))
}

// ---------------------------------------------------------------------
// funct Name = { call: .., args: (..), rets: (T, ..) }
// ---------------------------------------------------------------------

func (p *Parser) parseFunctDecl() *ast.FunctDecl {
	start := p.index

	if _, ok := p.expectIdent("funct"); !ok {
		return nil
	}

	nameTok, ok := p.expect(IDENT)
	if !ok {
		return nil
	}

	if _, ok := p.expect(EQUALS); !ok {
		return nil
	}

	if _, ok := p.expect(LBRACE); !ok {
		return nil
	}

	decl := &ast.FunctDecl{Name: p.text(nameTok.Span), NameSpan: nameTok.Span}

	for !p.follows(RBRACE) {
		keyTok, ok := p.expect(IDENT)
		if !ok {
			return nil
		}

		key := p.text(keyTok.Span)

		if _, ok := p.expect(COLON); !ok {
			return nil
		}

		switch key {
		case "call":
			valTok, ok := p.expect(IDENT)
			if !ok {
				return nil
			}

			decl.Call = p.text(valTok.Span)
			decl.CallSpan = valTok.Span
		case "args":
			params, ok := p.parseParamList()
			if !ok {
				return nil
			}

			decl.Args = params
		case "rets":
			rets, ok := p.parseTypeList()
			if !ok {
				return nil
			}

			decl.Rets = rets
		default:
			p.error(keyTok, "E-FUNCT-FIELD", "unknown function field '%s'", key)
			return nil
		}

		if !p.match(COMMA) {
			break
		}
	}

	if _, ok := p.expect(RBRACE); !ok {
		return nil
	}

	return decl.WithSpan(p.spanFrom(start))
}

// parseParamList parses `(name: Type, name: Type, ...)`.
func (p *Parser) parseParamList() ([]ast.Param, bool) {
	if _, ok := p.expect(LPAREN); !ok {
		return nil, false
	}

	var params []ast.Param

	for !p.follows(RPAREN) {
		nameTok, ok := p.expect(IDENT)
		if !ok {
			return nil, false
		}

		if _, ok := p.expect(COLON); !ok {
			return nil, false
		}

		ty, ok := p.parseTypeExpr()
		if !ok {
			return nil, false
		}

		params = append(params, ast.Param{Name: p.text(nameTok.Span), NameSpan: nameTok.Span, Type: ty})

		if !p.match(COMMA) {
			break
		}
	}

	if _, ok := p.expect(RPAREN); !ok {
		return nil, false
	}

	return params, true
}

// parseTypeList parses `(T, T, ...)` — used for `rets`, where no names are
// permitted (a named return is reported here as E-RET-NAME).
func (p *Parser) parseTypeList() ([]ast.TypeExpr, bool) {
	if _, ok := p.expect(LPAREN); !ok {
		return nil, false
	}

	var types []ast.TypeExpr

	for !p.follows(RPAREN) {
		if p.follows(IDENT) && p.following2(IDENT, COLON) {
			nameTok := p.lookahead()
			p.error(nameTok, "E-RET-NAME", "return parameters must not be named")
			p.index++
			p.index++ // consume the name and the colon, then fall through to parse the type
		}

		ty, ok := p.parseTypeExpr()
		if !ok {
			return nil, false
		}

		types = append(types, ty)

		if !p.match(COMMA) {
			break
		}
	}

	if _, ok := p.expect(RPAREN); !ok {
		return nil, false
	}

	return types, true
}

// ---------------------------------------------------------------------
// Type expressions
// ---------------------------------------------------------------------

func (p *Parser) parseTypeExpr() (ast.TypeExpr, bool) {
	base, ok := p.parsePrimaryType()
	if !ok {
		return nil, false
	}

	base = p.parseRangeSuffix(base)

	for p.follows(QUESTION) {
		qTok := p.lookahead()
		p.index++

		baseSpan := base.Span()
		base = ast.NewOptExpr(base, baseSpan.Merge(qTok.Span))
	}

	return base, true
}

func (p *Parser) parsePrimaryType() (ast.TypeExpr, bool) {
	tok := p.lookahead()

	switch tok.Kind {
	case IDENT:
		name := p.text(tok.Span)

		switch {
		case numericFamilies[name] || name == "num":
			p.index++
			return ast.NewNumExpr(name, nil, tok.Span), true
		case name == "string":
			p.index++
			return ast.NewStringExpr(nil, tok.Span), true
		case name == "buff":
			p.index++
			return ast.NewBufExpr(nil, tok.Span), true
		case name == "map":
			return p.parseMapType(tok)
		case name == "set":
			return p.parseSetType(tok)
		case name == "struct":
			return p.parseStructType(tok)
		case name == "enum":
			return p.parseEnumType(tok)
		default:
			return p.parseRefType(tok)
		}
	default:
		p.error(tok, "E-TYPE", "expected a type")
		return nil, false
	}
}

func (p *Parser) parseRefType(tok lex.Token) (ast.TypeExpr, bool) {
	p.index++

	name := p.text(tok.Span)

	var class *string

	if p.follows(LPAREN) {
		p.index++

		classTok, ok := p.expect(IDENT)
		if !ok {
			return nil, false
		}

		c := p.text(classTok.Span)
		class = &c

		if _, ok := p.expect(RPAREN); !ok {
			return nil, false
		}
	}

	span := tok.Span
	if class != nil {
		span = span.Merge(p.tokens[p.index-1].Span)
	}

	return ast.NewRefExpr(name, class, span), true
}

func (p *Parser) parseMapType(start lex.Token) (ast.TypeExpr, bool) {
	p.index++ // "map"

	if _, ok := p.expect(LBRACKET); !ok {
		return nil, false
	}

	key, ok := p.parseTypeExpr()
	if !ok {
		return nil, false
	}

	if _, ok := p.expect(RBRACKET); !ok {
		return nil, false
	}

	val, ok := p.parseTypeExpr()
	if !ok {
		return nil, false
	}

	return ast.NewMapExpr(key, val, start.Span.Merge(val.Span())), true
}

func (p *Parser) parseSetType(start lex.Token) (ast.TypeExpr, bool) {
	p.index++ // "set"

	if _, ok := p.expect(LBRACKET); !ok {
		return nil, false
	}

	elem, ok := p.parseTypeExpr()
	if !ok {
		return nil, false
	}

	closeTok, ok := p.expect(RBRACKET)
	if !ok {
		return nil, false
	}

	return ast.NewSetExpr(elem, start.Span.Merge(closeTok.Span)), true
}

func (p *Parser) parseStructType(start lex.Token) (ast.TypeExpr, bool) {
	p.index++ // "struct"

	fields, ok := p.parseBracedFields()
	if !ok {
		return nil, false
	}

	return ast.NewStructExpr(fields, start.Span.Merge(p.tokens[p.index-1].Span)), true
}

// parseBracedFields parses `{ name: Type, ... }`.
func (p *Parser) parseBracedFields() ([]ast.Param, bool) {
	if _, ok := p.expect(LBRACE); !ok {
		return nil, false
	}

	var fields []ast.Param

	for !p.follows(RBRACE) {
		nameTok, ok := p.expect(IDENT)
		if !ok {
			return nil, false
		}

		if _, ok := p.expect(COLON); !ok {
			return nil, false
		}

		ty, ok := p.parseTypeExpr()
		if !ok {
			return nil, false
		}

		fields = append(fields, ast.Param{Name: p.text(nameTok.Span), NameSpan: nameTok.Span, Type: ty})

		if !p.match(COMMA) {
			break
		}
	}

	if _, ok := p.expect(RBRACE); !ok {
		return nil, false
	}

	return fields, true
}

func (p *Parser) parseEnumType(start lex.Token) (ast.TypeExpr, bool) {
	p.index++ // "enum"

	var (
		tag     *string
		tagSpan = start.Span
	)

	if p.follows(STRING) {
		tagTok := p.lookahead()
		p.index++

		t := p.unquote(tagTok.Span)
		tag = &t
		tagSpan = tagTok.Span
	}

	if _, ok := p.expect(LBRACE); !ok {
		return nil, false
	}

	var variants []ast.EnumVariant

	for !p.follows(RBRACE) {
		nameTok, ok := p.expect(IDENT)
		if !ok {
			return nil, false
		}

		var fields []ast.Param

		if p.follows(LBRACE) {
			fields, ok = p.parseBracedFields()
			if !ok {
				return nil, false
			}
		}

		variants = append(variants, ast.EnumVariant{Name: p.text(nameTok.Span), NameSpan: nameTok.Span, Fields: fields})

		if !p.match(COMMA) {
			break
		}
	}

	closeTok, ok := p.expect(RBRACE)
	if !ok {
		return nil, false
	}

	return ast.NewEnumExpr(tag, tagSpan, variants, start.Span.Merge(closeTok.Span)), true
}

// parseRangeSuffix parses an optional `[min..max]` suffix and wraps base
// appropriately: a numeric range on NumExpr, a length range on
// StringExpr/BufExpr, or an array wrapping anything else (§4.1).
func (p *Parser) parseRangeSuffix(base ast.TypeExpr) ast.TypeExpr {
	if !p.follows(LBRACKET) {
		return base
	}

	startTok := p.lookahead()
	p.index++

	var min, max *float64

	if !p.follows(DOTDOT) {
		n, ok := p.parseSignedNumber()
		if !ok {
			return base
		}

		min = &n
	}

	if _, ok := p.expect(DOTDOT); !ok {
		return base
	}

	if !p.follows(RBRACKET) {
		n, ok := p.parseSignedNumber()
		if !ok {
			return base
		}

		max = &n
	}

	closeTok, ok := p.expect(RBRACKET)
	if !ok {
		return base
	}

	span := startTok.Span.Merge(closeTok.Span)
	rng := ast.NewRangeExpr(min, max, span)
	baseSpan := base.Span()
	fullSpan := baseSpan.Merge(span)

	switch t := base.(type) {
	case *ast.NumExpr:
		return ast.NewNumExpr(t.Family, rng, fullSpan)
	case *ast.StringExpr:
		return ast.NewStringExpr(rng, fullSpan)
	case *ast.BufExpr:
		return ast.NewBufExpr(rng, fullSpan)
	default:
		return ast.NewArrExpr(base, rng, fullSpan)
	}
}

func (p *Parser) parseSignedNumber() (float64, bool) {
	tok, ok := p.expect(NUMBER)
	if !ok {
		return 0, false
	}

	n, err := strconv.ParseFloat(p.text(tok.Span), 64)
	if err != nil {
		p.error(tok, "E-RANGE", "malformed numeric literal")
		return 0, false
	}

	return n, true
}

// ---------------------------------------------------------------------
// Token-stream helpers
// ---------------------------------------------------------------------

func (p *Parser) lookahead() lex.Token {
	return p.tokens[p.index]
}

func (p *Parser) follows(kind uint) bool {
	return p.lookahead().Kind == kind
}

func (p *Parser) following2(k1, k2 uint) bool {
	if p.index+1 >= len(p.tokens) {
		return false
	}

	return p.tokens[p.index].Kind == k1 && p.tokens[p.index+1].Kind == k2
}

func (p *Parser) match(kind uint) bool {
	if p.follows(kind) {
		p.index++
		return true
	}

	return false
}

func (p *Parser) expect(kind uint) (lex.Token, bool) {
	tok := p.lookahead()
	if tok.Kind != kind {
		p.error(tok, "E-SYNTAX", "unexpected token")
		return tok, false
	}

	p.index++

	return tok, true
}

func (p *Parser) expectIdent(text string) (lex.Token, bool) {
	tok := p.lookahead()
	if tok.Kind != IDENT || p.identText(tok) != text {
		p.error(tok, "E-SYNTAX", "expected '%s'", text)
		return tok, false
	}

	p.index++

	return tok, true
}

func (p *Parser) identText(tok lex.Token) string {
	if tok.Kind != IDENT {
		return ""
	}

	return p.text(tok.Span)
}

func (p *Parser) text(span source.Span) string {
	runes := p.srcfile.Contents()[span.Start():span.End()]
	return string(runes)
}

func (p *Parser) unquote(span source.Span) string {
	text := p.text(span)
	return strings.Trim(text, "\"")
}

func (p *Parser) spanFrom(firstToken int) source.Span {
	start := p.tokens[firstToken].Span.Start()
	end := p.tokens[p.index-1].Span.End()

	return source.NewSpan(start, end)
}

func (p *Parser) error(tok lex.Token, code, format string, args ...any) {
	p.reports = append(p.reports, diag.Errorf(code, tok.Span, format, args...))
}

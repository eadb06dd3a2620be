/*
 * Clarwasm - The Clarity-to-WebAssembly compiler
 *
 * Copyright Stacks Open Internet Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/stacks-network/clarwasm/ast"
)

// SyntaxError is a source-level parse failure, with a position
// in the input reported as 1-based line and column.
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

var _ error = SyntaxError{}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parse reads Clarity source into a sequence of symbolic expressions.
//
// The reader recognizes the literal forms the code generator consumes:
// atoms, signed and unsigned integers, booleans, hex buffers,
// ASCII and UTF-8 strings, and parenthesized lists.
// Line comments start with `;` and run to the end of the line.
func Parse(source string) ([]ast.SymbolicExpression, error) {
	p := &parser{source: source, line: 1, column: 1}

	var program []ast.SymbolicExpression
	for {
		p.skipSpaceAndComments()
		if p.atEnd() {
			return program, nil
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		program = append(program, expr)
	}
}

type parser struct {
	source string
	offset int
	line   int
	column int
}

func (p *parser) atEnd() bool {
	return p.offset >= len(p.source)
}

func (p *parser) current() byte {
	return p.source[p.offset]
}

func (p *parser) next() {
	if p.atEnd() {
		return
	}
	if p.source[p.offset] == '\n' {
		p.line++
		p.column = 1
	} else {
		p.column++
	}
	p.offset++
}

func (p *parser) syntaxError(message string, args ...any) error {
	return SyntaxError{
		Message: fmt.Sprintf(message, args...),
		Line:    p.line,
		Column:  p.column,
	}
}

func (p *parser) skipSpaceAndComments() {
	for !p.atEnd() {
		switch p.current() {
		case ' ', '\t', '\r', '\n':
			p.next()
		case ';':
			for !p.atEnd() && p.current() != '\n' {
				p.next()
			}
		default:
			return
		}
	}
}

func (p *parser) parseExpression() (ast.SymbolicExpression, error) {
	switch c := p.current(); {
	case c == '(':
		return p.parseList()

	case c == ')':
		return nil, p.syntaxError("unexpected `)`")

	case c == '"':
		return p.parseString(false)

	case c == 'u' && p.peekIs('"'):
		p.next()
		return p.parseString(true)

	case c == 'u' && p.peekIsDigit():
		p.next()
		return p.parseInteger(false)

	case c == '0' && p.peekIs('x'):
		return p.parseBuffer()

	case c >= '0' && c <= '9':
		return p.parseInteger(true)

	case c == '-' && p.peekIsDigit():
		return p.parseInteger(true)

	default:
		return p.parseAtom()
	}
}

func (p *parser) peekIs(c byte) bool {
	return p.offset+1 < len(p.source) && p.source[p.offset+1] == c
}

func (p *parser) peekIsDigit() bool {
	return p.offset+1 < len(p.source) &&
		p.source[p.offset+1] >= '0' && p.source[p.offset+1] <= '9'
}

func (p *parser) parseList() (ast.SymbolicExpression, error) {
	// skip `(`
	p.next()

	var elements []ast.SymbolicExpression
	for {
		p.skipSpaceAndComments()
		if p.atEnd() {
			return nil, p.syntaxError("missing `)` at end of input")
		}
		if p.current() == ')' {
			p.next()
			return &ast.List{Elements: elements}, nil
		}
		element, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
	}
}

func (p *parser) parseInteger(signed bool) (ast.SymbolicExpression, error) {
	start := p.offset
	if signed && p.current() == '-' {
		p.next()
	}
	for !p.atEnd() && p.current() >= '0' && p.current() <= '9' {
		p.next()
	}

	value, ok := new(big.Int).SetString(p.source[start:p.offset], 10)
	if !ok {
		return nil, p.syntaxError("invalid integer literal")
	}

	if signed {
		return &ast.IntLiteral{Value: value}, nil
	}
	return &ast.UIntLiteral{Value: value}, nil
}

func (p *parser) parseBuffer() (ast.SymbolicExpression, error) {
	// skip `0x`
	p.next()
	p.next()

	start := p.offset
	for !p.atEnd() && isHexDigit(p.current()) {
		p.next()
	}

	value, err := hex.DecodeString(p.source[start:p.offset])
	if err != nil || (p.offset-start)%2 != 0 {
		return nil, p.syntaxError("invalid buffer literal")
	}

	return ast.NewBufferLiteral(value), nil
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' ||
		c >= 'a' && c <= 'f' ||
		c >= 'A' && c <= 'F'
}

func (p *parser) parseString(isUTF8 bool) (ast.SymbolicExpression, error) {
	// skip the opening quote
	p.next()

	var sb strings.Builder
	for {
		if p.atEnd() {
			return nil, p.syntaxError("missing `\"` at end of string literal")
		}

		c := p.current()
		switch c {
		case '"':
			p.next()
			value := sb.String()
			if !isUTF8 && !isASCII(value) {
				return nil, p.syntaxError("non-ASCII character in string literal")
			}
			if isUTF8 {
				return ast.NewUTF8StringLiteral(value), nil
			}
			return ast.NewStringLiteral(value), nil

		case '\\':
			p.next()
			if p.atEnd() {
				return nil, p.syntaxError("incomplete escape sequence")
			}
			switch p.current() {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return nil, p.syntaxError("invalid escape sequence `\\%c`", p.current())
			}
			p.next()

		default:
			r, size := utf8.DecodeRuneInString(p.source[p.offset:])
			if r == utf8.RuneError && size == 1 {
				return nil, p.syntaxError("invalid UTF-8 in string literal")
			}
			sb.WriteRune(r)
			for i := 0; i < size; i++ {
				p.next()
			}
		}
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func (p *parser) parseAtom() (ast.SymbolicExpression, error) {
	start := p.offset
	for !p.atEnd() && isAtomByte(p.current()) {
		p.next()
	}
	if p.offset == start {
		return nil, p.syntaxError("unexpected character `%c`", p.current())
	}

	identifier := p.source[start:p.offset]
	switch identifier {
	case "true":
		return ast.NewBoolLiteral(true), nil
	case "false":
		return ast.NewBoolLiteral(false), nil
	}
	return ast.NewAtom(identifier), nil
}

func isAtomByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z',
		c >= 'A' && c <= 'Z',
		c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '?', '!', '+', '*', '/', '<', '>', '=':
		return true
	}
	return false
}

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

package ast

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// SymbolicExpression is a node of a Clarity expression tree.
//
// Nodes are immutable once produced by the parser / type checker.
// The code generator never mutates them; static types are attached
// externally, keyed by node identity.
type SymbolicExpression interface {
	fmt.Stringer
	isSymbolicExpression()
}

// Atom is a bare name: a construct keyword, a property name,
// or a variable reference.
type Atom struct {
	Identifier string
}

var _ SymbolicExpression = &Atom{}

func NewAtom(identifier string) *Atom {
	return &Atom{Identifier: identifier}
}

func (*Atom) isSymbolicExpression() {}

func (e *Atom) String() string {
	return e.Identifier
}

// List is a parenthesized application: the first element is usually
// the construct keyword, the rest are its arguments.
type List struct {
	Elements []SymbolicExpression
}

var _ SymbolicExpression = &List{}

func NewList(elements ...SymbolicExpression) *List {
	return &List{Elements: elements}
}

func (*List) isSymbolicExpression() {}

func (e *List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, element := range e.Elements {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(element.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// IntLiteral is a signed 128-bit integer literal, e.g. `-1`.
type IntLiteral struct {
	Value *big.Int
}

var _ SymbolicExpression = &IntLiteral{}

func NewIntLiteral(value int64) *IntLiteral {
	return &IntLiteral{Value: big.NewInt(value)}
}

func (*IntLiteral) isSymbolicExpression() {}

func (e *IntLiteral) String() string {
	return e.Value.String()
}

// UIntLiteral is an unsigned 128-bit integer literal, e.g. `u1`.
type UIntLiteral struct {
	Value *big.Int
}

var _ SymbolicExpression = &UIntLiteral{}

func NewUIntLiteral(value uint64) *UIntLiteral {
	return &UIntLiteral{Value: new(big.Int).SetUint64(value)}
}

func (*UIntLiteral) isSymbolicExpression() {}

func (e *UIntLiteral) String() string {
	return fmt.Sprintf("u%s", e.Value)
}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Value bool
}

var _ SymbolicExpression = &BoolLiteral{}

func NewBoolLiteral(value bool) *BoolLiteral {
	return &BoolLiteral{Value: value}
}

func (*BoolLiteral) isSymbolicExpression() {}

func (e *BoolLiteral) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}

// BufferLiteral is a byte buffer literal, e.g. `0x0102`.
type BufferLiteral struct {
	Value []byte
}

var _ SymbolicExpression = &BufferLiteral{}

func NewBufferLiteral(value []byte) *BufferLiteral {
	return &BufferLiteral{Value: value}
}

func (*BufferLiteral) isSymbolicExpression() {}

func (e *BufferLiteral) String() string {
	return fmt.Sprintf("0x%s", hex.EncodeToString(e.Value))
}

// StringLiteral is an ASCII or UTF-8 string literal,
// e.g. `"hello"` or `u"hello"`.
type StringLiteral struct {
	Value string
	UTF8  bool
}

var _ SymbolicExpression = &StringLiteral{}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{Value: value}
}

func NewUTF8StringLiteral(value string) *StringLiteral {
	return &StringLiteral{Value: value, UTF8: true}
}

func (*StringLiteral) isSymbolicExpression() {}

func (e *StringLiteral) String() string {
	if e.UTF8 {
		return fmt.Sprintf("u%q", e.Value)
	}
	return fmt.Sprintf("%q", e.Value)
}

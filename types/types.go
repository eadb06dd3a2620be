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

package types

import (
	"fmt"
	"strings"

	"github.com/stacks-network/clarwasm/ast"
)

// TypeSignature is the static type of a Clarity expression.
//
// The set of variants is closed: the type checker only ever produces
// the types defined in this package.
type TypeSignature interface {
	fmt.Stringer
	isTypeSignature()
}

// TypeMap attaches a resolved static type to every expression node
// of a compilation unit. It is produced by the external type checker
// and read-only during code generation.
type TypeMap map[ast.SymbolicExpression]TypeSignature

// IntType is a signed 128-bit integer.
type IntType struct{}

// UIntType is an unsigned 128-bit integer.
type UIntType struct{}

// BoolType is `true` or `false`.
type BoolType struct{}

// PrincipalType is a standard or contract principal.
type PrincipalType struct{}

// NoType is the type of expressions which produce no value,
// e.g. the inner type of `(ok u1)`'s absent error branch.
type NoType struct{}

var (
	Int       TypeSignature = IntType{}
	UInt      TypeSignature = UIntType{}
	Bool      TypeSignature = BoolType{}
	Principal TypeSignature = PrincipalType{}
	None      TypeSignature = NoType{}
)

func (IntType) isTypeSignature()       {}
func (UIntType) isTypeSignature()      {}
func (BoolType) isTypeSignature()      {}
func (PrincipalType) isTypeSignature() {}
func (NoType) isTypeSignature()        {}

func (IntType) String() string       { return "int" }
func (UIntType) String() string      { return "uint" }
func (BoolType) String() string      { return "bool" }
func (PrincipalType) String() string { return "principal" }
func (NoType) String() string        { return "none" }

// BufferType is `(buff N)`: a byte buffer with a declared maximum length.
type BufferType struct {
	MaxLength uint32
}

var _ TypeSignature = BufferType{}

func (BufferType) isTypeSignature() {}

func (t BufferType) String() string {
	return fmt.Sprintf("(buff %d)", t.MaxLength)
}

// StringASCIIType is `(string-ascii N)`.
type StringASCIIType struct {
	MaxLength uint32
}

var _ TypeSignature = StringASCIIType{}

func (StringASCIIType) isTypeSignature() {}

func (t StringASCIIType) String() string {
	return fmt.Sprintf("(string-ascii %d)", t.MaxLength)
}

// StringUTF8Type is `(string-utf8 N)`, where N counts codepoints.
// Values are represented as sequences of fixed-width 32-bit scalars.
type StringUTF8Type struct {
	MaxLength uint32
}

var _ TypeSignature = StringUTF8Type{}

func (StringUTF8Type) isTypeSignature() {}

func (t StringUTF8Type) String() string {
	return fmt.Sprintf("(string-utf8 %d)", t.MaxLength)
}

// OptionalType is `(optional T)`.
type OptionalType struct {
	Inner TypeSignature
}

var _ TypeSignature = OptionalType{}

func NewOptionalType(inner TypeSignature) OptionalType {
	return OptionalType{Inner: inner}
}

func (OptionalType) isTypeSignature() {}

func (t OptionalType) String() string {
	return fmt.Sprintf("(optional %s)", t.Inner)
}

// ResponseType is `(response O E)`.
type ResponseType struct {
	Ok  TypeSignature
	Err TypeSignature
}

var _ TypeSignature = ResponseType{}

func (ResponseType) isTypeSignature() {}

func (t ResponseType) String() string {
	return fmt.Sprintf("(response %s %s)", t.Ok, t.Err)
}

// ListType is `(list N T)`: a list with a declared maximum length.
type ListType struct {
	MaxLength uint32
	Element   TypeSignature
}

var _ TypeSignature = ListType{}

func (ListType) isTypeSignature() {}

func (t ListType) String() string {
	return fmt.Sprintf("(list %d %s)", t.MaxLength, t.Element)
}

// TupleField is one named field of a tuple type.
// Field order is significant: it determines the memory layout.
type TupleField struct {
	Name string
	Type TypeSignature
}

// TupleType is `(tuple (name T) ...)`.
type TupleType struct {
	Fields []TupleField
}

var _ TypeSignature = TupleType{}

func NewTupleType(fields ...TupleField) TupleType {
	return TupleType{Fields: fields}
}

func (TupleType) isTypeSignature() {}

func (t TupleType) String() string {
	var sb strings.Builder
	sb.WriteString("(tuple")
	for _, field := range t.Fields {
		_, _ = fmt.Fprintf(&sb, " (%s %s)", field.Name, field.Type)
	}
	sb.WriteByte(')')
	return sb.String()
}

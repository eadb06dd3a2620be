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
	"github.com/stacks-network/clarwasm/errors"
)

// Linear-memory layout of Clarity values, as exchanged with host routines.
//
// The generated code and the host runtime must agree on these sizes
// byte-for-byte: the generator reserves scratch space of exactly the sizes
// computed here, and the host writes values back in exactly this shape.
// Any mismatch is memory corruption, not a recoverable error.

const (
	// IntSize is the size of a 128-bit integer: two 64-bit halves.
	IntSize = 16

	// BoolSize is the size of a boolean indicator.
	BoolSize = 4

	// IndicatorSize is the size of the discriminant tag prefixing
	// optional and response values.
	IndicatorSize = 4

	// LengthPrefixSize is the size of the length prefix of sequences
	// (buffers, strings, lists) and principals.
	LengthPrefixSize = 4

	// PrincipalVersionSize is the size of a principal's version byte.
	PrincipalVersionSize = 1

	// PrincipalHashSize is the size of a principal's hash160 bytes.
	PrincipalHashSize = 20

	// PrincipalNameLengthSize is the size of a contract principal's
	// name-length byte.
	PrincipalNameLengthSize = 1

	// PrincipalNameMaxSize is the maximum length of a contract
	// principal's contract name.
	PrincipalNameMaxSize = 128

	// PrincipalMaxSize is the maximum in-memory size of a principal,
	// length prefix included.
	PrincipalMaxSize = LengthPrefixSize +
		PrincipalVersionSize +
		PrincipalHashSize +
		PrincipalNameLengthSize +
		PrincipalNameMaxSize

	// UTF8ScalarSize is the fixed width of one string-utf8 codepoint unit.
	UTF8ScalarSize = 4
)

// Size returns the exact number of bytes a value of the given type
// occupies in linear memory. For size-bounded types (sequences, strings,
// principals) it is the maximum size allowed by the declared bound.
//
// The calculation is deterministic: equal types always produce equal sizes.
func Size(ty TypeSignature) uint32 {
	switch ty := ty.(type) {
	case IntType, UIntType:
		return IntSize

	case BoolType:
		return BoolSize

	case PrincipalType:
		return PrincipalMaxSize

	case BufferType:
		return LengthPrefixSize + ty.MaxLength

	case StringASCIIType:
		return LengthPrefixSize + ty.MaxLength

	case StringUTF8Type:
		return LengthPrefixSize + ty.MaxLength*UTF8ScalarSize

	case OptionalType:
		return IndicatorSize + Size(ty.Inner)

	case ResponseType:
		return IndicatorSize + Size(ty.Ok) + Size(ty.Err)

	case ListType:
		return LengthPrefixSize + ty.MaxLength*Size(ty.Element)

	case TupleType:
		var size uint32
		for _, field := range ty.Fields {
			size += Size(field.Type)
		}
		return size

	case NoType:
		return 0
	}

	panic(errors.NewUnexpectedError("cannot compute size of type %s", ty))
}

// FieldLayout is the placement of one tuple field within its tuple's
// memory representation.
type FieldLayout struct {
	Name   string
	Type   TypeSignature
	Offset uint32
}

// FieldLayouts returns the offset of every field of the tuple,
// in declared field order. Offsets are relative to the start of the tuple.
func (t TupleType) FieldLayouts() []FieldLayout {
	layouts := make([]FieldLayout, len(t.Fields))
	var offset uint32
	for i, field := range t.Fields {
		layouts[i] = FieldLayout{
			Name:   field.Name,
			Type:   field.Type,
			Offset: offset,
		}
		offset += Size(field.Type)
	}
	return layouts
}

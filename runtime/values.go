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

package runtime

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/stacks-network/clarwasm/errors"
	"github.com/stacks-network/clarwasm/types"
)

// A Value is the host-side form of a Clarity value,
// decoded from or encoded into its linear-memory layout
type Value interface {
	fmt.Stringer
	isValue()
}

type IntValue struct {
	Value *big.Int
}

type UIntValue struct {
	Value *big.Int
}

type BoolValue bool

type BufferValue []byte

type StringValue string

type PrincipalValue struct {
	Version byte
	Hash    [20]byte
	// Name is empty for a standard principal
	Name string
}

type NoneValue struct{}

type SomeValue struct {
	Inner Value
}

type TupleFieldValue struct {
	Name  string
	Value Value
}

type TupleValue struct {
	Fields []TupleFieldValue
}

type ListValue []Value

func (IntValue) isValue()       {}
func (UIntValue) isValue()      {}
func (BoolValue) isValue()      {}
func (BufferValue) isValue()    {}
func (StringValue) isValue()    {}
func (PrincipalValue) isValue() {}
func (NoneValue) isValue()      {}
func (SomeValue) isValue()      {}
func (TupleValue) isValue()     {}
func (ListValue) isValue()      {}

func NewIntValue(v int64) IntValue {
	return IntValue{Value: big.NewInt(v)}
}

func NewUIntValue(v uint64) UIntValue {
	return UIntValue{Value: new(big.Int).SetUint64(v)}
}

var bigOne = big.NewInt(1)
var twoPow128 = new(big.Int).Lsh(bigOne, 128)
var maxUint128 = new(big.Int).Sub(twoPow128, bigOne)
var maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 127), bigOne)

// DecodeValue reads a value of the given type from its linear-memory
// layout. data must hold at least types.Size(ty) bytes.
func DecodeValue(ty types.TypeSignature, data []byte) (Value, error) {
	if uint32(len(data)) < types.Size(ty) {
		return nil, errors.NewUnexpectedError(
			"value of type %s does not fit in %d bytes",
			ty,
			len(data),
		)
	}

	switch ty := ty.(type) {
	case types.IntType:
		return IntValue{Value: decodeInt128(data, true)}, nil

	case types.UIntType:
		return UIntValue{Value: decodeInt128(data, false)}, nil

	case types.BoolType:
		return BoolValue(binary.LittleEndian.Uint32(data) != 0), nil

	case types.BufferType:
		bytes, err := decodeSequenceBytes(ty, data)
		if err != nil {
			return nil, err
		}
		return BufferValue(bytes), nil

	case types.StringASCIIType:
		bytes, err := decodeSequenceBytes(ty, data)
		if err != nil {
			return nil, err
		}
		return StringValue(bytes), nil

	case types.StringUTF8Type:
		bytes, err := decodeSequenceBytes(ty, data)
		if err != nil {
			return nil, err
		}
		runes := make([]rune, 0, len(bytes)/types.UTF8ScalarSize)
		for i := 0; i+types.UTF8ScalarSize <= len(bytes); i += types.UTF8ScalarSize {
			runes = append(runes, rune(binary.BigEndian.Uint32(bytes[i:])))
		}
		return StringValue(runes), nil

	case types.PrincipalType:
		return decodePrincipal(data)

	case types.OptionalType:
		if binary.LittleEndian.Uint32(data) == 0 {
			return NoneValue{}, nil
		}
		inner, err := DecodeValue(ty.Inner, data[types.IndicatorSize:])
		if err != nil {
			return nil, err
		}
		return SomeValue{Inner: inner}, nil

	case types.ListType:
		return decodeList(ty, data)

	case types.TupleType:
		fields := make([]TupleFieldValue, 0, len(ty.Fields))
		for _, layout := range ty.FieldLayouts() {
			value, err := DecodeValue(layout.Type, data[layout.Offset:])
			if err != nil {
				return nil, err
			}
			fields = append(fields, TupleFieldValue{
				Name:  layout.Name,
				Value: value,
			})
		}
		return TupleValue{Fields: fields}, nil

	case types.NoType:
		return NoneValue{}, nil
	}

	return nil, errors.NewUnexpectedError("cannot decode value of type %s", ty)
}

func decodeInt128(data []byte, signed bool) *big.Int {
	low := binary.LittleEndian.Uint64(data)
	high := binary.LittleEndian.Uint64(data[8:])

	value := new(big.Int).SetUint64(high)
	value.Lsh(value, 64)
	value.Or(value, new(big.Int).SetUint64(low))

	if signed && value.Cmp(maxInt128) > 0 {
		value.Sub(value, twoPow128)
	}
	return value
}

func decodeSequenceBytes(ty types.TypeSignature, data []byte) ([]byte, error) {
	length := binary.LittleEndian.Uint32(data)
	if types.LengthPrefixSize+length > types.Size(ty) {
		return nil, errors.NewUnexpectedError(
			"sequence length %d exceeds the bound of type %s",
			length,
			ty,
		)
	}
	bytes := make([]byte, length)
	copy(bytes, data[types.LengthPrefixSize:])
	return bytes, nil
}

func decodePrincipal(data []byte) (Value, error) {
	length := binary.LittleEndian.Uint32(data)
	minLength := uint32(types.PrincipalVersionSize +
		types.PrincipalHashSize +
		types.PrincipalNameLengthSize)
	if length < minLength || types.LengthPrefixSize+length > types.PrincipalMaxSize {
		return nil, errors.NewUnexpectedError("invalid principal length %d", length)
	}

	body := data[types.LengthPrefixSize:]
	principal := PrincipalValue{
		Version: body[0],
	}
	copy(principal.Hash[:], body[1:21])

	nameLength := uint32(body[21])
	if minLength+nameLength > length {
		return nil, errors.NewUnexpectedError("invalid principal name length %d", nameLength)
	}
	principal.Name = string(body[22 : 22+nameLength])
	return principal, nil
}

func decodeList(ty types.ListType, data []byte) (Value, error) {
	byteLength := binary.LittleEndian.Uint32(data)
	elementSize := types.Size(ty.Element)
	if elementSize == 0 || byteLength%elementSize != 0 {
		return nil, errors.NewUnexpectedError(
			"list byte length %d is not a multiple of the element size %d",
			byteLength,
			elementSize,
		)
	}

	list := make(ListValue, 0, byteLength/elementSize)
	for offset := uint32(0); offset < byteLength; offset += elementSize {
		element, err := DecodeValue(
			ty.Element,
			data[types.LengthPrefixSize+offset:],
		)
		if err != nil {
			return nil, err
		}
		list = append(list, element)
	}
	return list, nil
}

// EncodeValue writes a value of the given type into its linear-memory
// layout, returning exactly types.Size(ty) bytes.
// Sequences shorter than their bound are padded with zeroes.
func EncodeValue(value Value, ty types.TypeSignature) ([]byte, error) {
	data := make([]byte, types.Size(ty))
	err := encodeValueInto(value, ty, data)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func encodeValueInto(value Value, ty types.TypeSignature, data []byte) error {
	switch ty := ty.(type) {
	case types.IntType:
		intValue, ok := value.(IntValue)
		if !ok {
			return encodingMismatch(value, ty)
		}
		encodeInt128(intValue.Value, data)
		return nil

	case types.UIntType:
		uintValue, ok := value.(UIntValue)
		if !ok {
			return encodingMismatch(value, ty)
		}
		encodeInt128(uintValue.Value, data)
		return nil

	case types.BoolType:
		boolValue, ok := value.(BoolValue)
		if !ok {
			return encodingMismatch(value, ty)
		}
		if boolValue {
			binary.LittleEndian.PutUint32(data, 1)
		}
		return nil

	case types.BufferType:
		bufferValue, ok := value.(BufferValue)
		if !ok {
			return encodingMismatch(value, ty)
		}
		return encodeSequenceBytes(bufferValue, ty, data)

	case types.StringASCIIType:
		stringValue, ok := value.(StringValue)
		if !ok {
			return encodingMismatch(value, ty)
		}
		return encodeSequenceBytes([]byte(stringValue), ty, data)

	case types.StringUTF8Type:
		stringValue, ok := value.(StringValue)
		if !ok {
			return encodingMismatch(value, ty)
		}
		var bytes []byte
		for _, r := range string(stringValue) {
			bytes = binary.BigEndian.AppendUint32(bytes, uint32(r))
		}
		return encodeSequenceBytes(bytes, ty, data)

	case types.PrincipalType:
		principal, ok := value.(PrincipalValue)
		if !ok {
			return encodingMismatch(value, ty)
		}
		body := make([]byte, 0, types.PrincipalMaxSize-types.LengthPrefixSize)
		body = append(body, principal.Version)
		body = append(body, principal.Hash[:]...)
		body = append(body, byte(len(principal.Name)))
		body = append(body, principal.Name...)
		binary.LittleEndian.PutUint32(data, uint32(len(body)))
		copy(data[types.LengthPrefixSize:], body)
		return nil

	case types.OptionalType:
		switch value := value.(type) {
		case NoneValue:
			return nil
		case SomeValue:
			binary.LittleEndian.PutUint32(data, 1)
			return encodeValueInto(value.Inner, ty.Inner, data[types.IndicatorSize:])
		}
		return encodingMismatch(value, ty)

	case types.ListType:
		list, ok := value.(ListValue)
		if !ok {
			return encodingMismatch(value, ty)
		}
		if uint32(len(list)) > ty.MaxLength {
			return errors.NewUnexpectedError(
				"list of %d elements exceeds the bound of type %s",
				len(list),
				ty,
			)
		}
		elementSize := types.Size(ty.Element)
		binary.LittleEndian.PutUint32(data, uint32(len(list))*elementSize)
		offset := uint32(types.LengthPrefixSize)
		for _, element := range list {
			err := encodeValueInto(element, ty.Element, data[offset:])
			if err != nil {
				return err
			}
			offset += elementSize
		}
		return nil

	case types.TupleType:
		tuple, ok := value.(TupleValue)
		if !ok {
			return encodingMismatch(value, ty)
		}
		layouts := ty.FieldLayouts()
		if len(tuple.Fields) != len(layouts) {
			return errors.NewUnexpectedError(
				"tuple of %d fields does not match type %s",
				len(tuple.Fields),
				ty,
			)
		}
		for i, layout := range layouts {
			err := encodeValueInto(tuple.Fields[i].Value, layout.Type, data[layout.Offset:])
			if err != nil {
				return err
			}
		}
		return nil

	case types.NoType:
		return nil
	}

	return errors.NewUnexpectedError("cannot encode value of type %s", ty)
}

func encodeInt128(value *big.Int, data []byte) {
	bits := new(big.Int).And(value, maxUint128)
	low := new(big.Int).And(bits, new(big.Int).SetUint64(^uint64(0))).Uint64()
	high := new(big.Int).Rsh(bits, 64).Uint64()
	binary.LittleEndian.PutUint64(data, low)
	binary.LittleEndian.PutUint64(data[8:], high)
}

func encodeSequenceBytes(bytes []byte, ty types.TypeSignature, data []byte) error {
	if types.LengthPrefixSize+uint32(len(bytes)) > types.Size(ty) {
		return errors.NewUnexpectedError(
			"sequence of %d bytes exceeds the bound of type %s",
			len(bytes),
			ty,
		)
	}
	binary.LittleEndian.PutUint32(data, uint32(len(bytes)))
	copy(data[types.LengthPrefixSize:], bytes)
	return nil
}

func encodingMismatch(value Value, ty types.TypeSignature) error {
	return errors.NewUnexpectedError("cannot encode %T as %s", value, ty)
}

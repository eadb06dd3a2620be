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
	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/types"
)

// ParseTypeSignature reads a type signature from its source form,
// e.g. the atom `uint` or the list `(buff 32)`.
func ParseTypeSignature(expr ast.SymbolicExpression) (types.TypeSignature, error) {
	switch expr := expr.(type) {
	case *ast.Atom:
		switch expr.Identifier {
		case "int":
			return types.Int, nil
		case "uint":
			return types.UInt, nil
		case "bool":
			return types.Bool, nil
		case "principal":
			return types.Principal, nil
		}
		return nil, annotationErrorf("unknown type `%s`", expr.Identifier)

	case *ast.List:
		return parseCompositeTypeSignature(expr)
	}

	return nil, annotationErrorf("expected a type, got `%s`", expr)
}

func parseCompositeTypeSignature(list *ast.List) (types.TypeSignature, error) {
	if len(list.Elements) == 0 {
		return nil, annotationErrorf("expected a type, got an empty list")
	}
	atom, ok := list.Elements[0].(*ast.Atom)
	if !ok {
		return nil, annotationErrorf("expected a type keyword, got `%s`", list.Elements[0])
	}
	keyword := atom.Identifier
	operands := list.Elements[1:]

	switch keyword {
	case "buff", "string-ascii", "string-utf8":
		if len(operands) != 1 {
			return nil, annotationErrorf("%s: expected a maximum length", keyword)
		}
		length, err := typeLength(keyword, operands[0])
		if err != nil {
			return nil, err
		}
		switch keyword {
		case "buff":
			return types.BufferType{MaxLength: length}, nil
		case "string-ascii":
			return types.StringASCIIType{MaxLength: length}, nil
		default:
			return types.StringUTF8Type{MaxLength: length}, nil
		}

	case "optional":
		if len(operands) != 1 {
			return nil, annotationErrorf("optional: expected an inner type")
		}
		inner, err := ParseTypeSignature(operands[0])
		if err != nil {
			return nil, err
		}
		return types.NewOptionalType(inner), nil

	case "response":
		if len(operands) != 2 {
			return nil, annotationErrorf("response: expected an ok type and an err type")
		}
		okType, err := ParseTypeSignature(operands[0])
		if err != nil {
			return nil, err
		}
		errType, err := ParseTypeSignature(operands[1])
		if err != nil {
			return nil, err
		}
		return types.ResponseType{Ok: okType, Err: errType}, nil

	case "list":
		if len(operands) != 2 {
			return nil, annotationErrorf("list: expected a maximum length and an element type")
		}
		length, err := typeLength(keyword, operands[0])
		if err != nil {
			return nil, err
		}
		element, err := ParseTypeSignature(operands[1])
		if err != nil {
			return nil, err
		}
		return types.ListType{MaxLength: length, Element: element}, nil

	case "tuple":
		fields := make([]types.TupleField, 0, len(operands))
		for _, operand := range operands {
			fieldList, ok := operand.(*ast.List)
			if !ok || len(fieldList.Elements) != 2 {
				return nil, annotationErrorf("tuple: expected `(name type)` fields")
			}
			nameAtom, ok := fieldList.Elements[0].(*ast.Atom)
			if !ok {
				return nil, annotationErrorf("tuple: expected a field name, got `%s`", fieldList.Elements[0])
			}
			fieldType, err := ParseTypeSignature(fieldList.Elements[1])
			if err != nil {
				return nil, err
			}
			fields = append(fields, types.TupleField{
				Name: nameAtom.Identifier,
				Type: fieldType,
			})
		}
		return types.NewTupleType(fields...), nil
	}

	return nil, annotationErrorf("unknown type `%s`", keyword)
}

func typeLength(keyword string, expr ast.SymbolicExpression) (uint32, error) {
	literal, ok := expr.(*ast.IntLiteral)
	if !ok || !literal.Value.IsUint64() {
		return 0, annotationErrorf("%s: expected a non-negative length, got `%s`", keyword, expr)
	}
	return uint32(literal.Value.Uint64()), nil
}

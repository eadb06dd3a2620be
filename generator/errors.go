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

package generator

import (
	"fmt"
	"sort"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/errors"
	"github.com/stacks-network/clarwasm/types"
)

// GenerationError is an error produced while generating code for a contract
type GenerationError interface {
	error
	isGenerationError()
}

// findClosestString searches the given candidates and finds the one with
// the smallest edit distance from the given name. In cases of typos,
// this should provide a helpful hint.
func findClosestString(name string, candidates []string) (closest string) {
	nameRunes := []rune(name)

	closestDistance := len(name)

	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.Strings(sorted)

	for _, candidate := range sorted {
		distance := levenshtein.DistanceForStrings(
			nameRunes,
			[]rune(candidate),
			levenshtein.DefaultOptions,
		)

		// Don't update the closest candidate if the distance is greater than
		// one already found, or if the edits required would involve
		// a complete replacement of the candidate's text
		if distance < closestDistance && distance < len(candidate) {
			closest = candidate
			closestDistance = distance
		}
	}

	return
}

// TypeError

type TypeError struct {
	Message string
}

var _ GenerationError = TypeError{}
var _ errors.UserError = TypeError{}

func (TypeError) isGenerationError() {}

func (TypeError) IsUserError() {}

func (e TypeError) Error() string {
	return e.Message
}

// UnknownWordError

type UnknownWordError struct {
	Keyword string
}

var _ GenerationError = UnknownWordError{}
var _ errors.UserError = UnknownWordError{}
var _ errors.SecondaryError = UnknownWordError{}

func (UnknownWordError) isGenerationError() {}

func (UnknownWordError) IsUserError() {}

func (e UnknownWordError) Error() string {
	return fmt.Sprintf("unknown word: %s", e.Keyword)
}

func (e UnknownWordError) SecondaryError() string {
	closest := findClosestString(e.Keyword, registeredKeywords())
	if closest == "" {
		return ""
	}
	return fmt.Sprintf("did you mean `%s`?", closest)
}

// UnknownPropertyError is reported for a block property name
// outside of the fixed property table.
// The type checker rejects such properties before code generation,
// so reaching this error indicates a defect

type UnknownPropertyError struct {
	Property   string
	Candidates []string
}

var _ GenerationError = UnknownPropertyError{}
var _ errors.InternalError = UnknownPropertyError{}
var _ errors.SecondaryError = UnknownPropertyError{}

func (UnknownPropertyError) isGenerationError() {}

func (UnknownPropertyError) IsInternalError() {}

func (e UnknownPropertyError) Error() string {
	return fmt.Sprintf(
		"%s unknown block property: %s",
		errors.InternalErrorMessagePrefix,
		e.Property,
	)
}

func (e UnknownPropertyError) SecondaryError() string {
	closest := findClosestString(e.Property, e.Candidates)
	if closest == "" {
		return ""
	}
	return fmt.Sprintf("did you mean `%s`?", closest)
}

// UndefinedDataVarError

type UndefinedDataVarError struct {
	Name     string
	Declared []string
}

var _ GenerationError = UndefinedDataVarError{}
var _ errors.UserError = UndefinedDataVarError{}
var _ errors.SecondaryError = UndefinedDataVarError{}

func (UndefinedDataVarError) isGenerationError() {}

func (UndefinedDataVarError) IsUserError() {}

func (e UndefinedDataVarError) Error() string {
	return fmt.Sprintf("use of undeclared data variable: %s", e.Name)
}

func (e UndefinedDataVarError) SecondaryError() string {
	closest := findClosestString(e.Name, e.Declared)
	if closest == "" {
		return ""
	}
	return fmt.Sprintf("did you mean `%s`?", closest)
}

// UnknownIdentifierError

type UnknownIdentifierError struct {
	Identifier string
}

var _ GenerationError = UnknownIdentifierError{}
var _ errors.UserError = UnknownIdentifierError{}

func (UnknownIdentifierError) isGenerationError() {}

func (UnknownIdentifierError) IsUserError() {}

func (e UnknownIdentifierError) Error() string {
	return fmt.Sprintf("unknown identifier: %s", e.Identifier)
}

// InvalidFormError is reported for a built-in form with the wrong shape,
// e.g. a missing operand or a non-atom where a name is required

type InvalidFormError struct {
	Keyword string
	Message string
}

var _ GenerationError = InvalidFormError{}
var _ errors.UserError = InvalidFormError{}

func (InvalidFormError) isGenerationError() {}

func (InvalidFormError) IsUserError() {}

func (e InvalidFormError) Error() string {
	return fmt.Sprintf("invalid `%s` form: %s", e.Keyword, e.Message)
}

// MissingTypeError is reported when the type map has no entry
// for an expression that is being generated.
// The type checker annotates every expression, so reaching this error
// indicates a defect

type MissingTypeError struct {
	Expression ast.SymbolicExpression
}

var _ GenerationError = MissingTypeError{}
var _ errors.InternalError = MissingTypeError{}

func (MissingTypeError) isGenerationError() {}

func (MissingTypeError) IsInternalError() {}

func (e MissingTypeError) Error() string {
	return fmt.Sprintf(
		"%s missing type for expression: %s",
		errors.InternalErrorMessagePrefix,
		e.Expression,
	)
}

// UnsupportedTypeError is reported when a value of the given type
// cannot be represented by the generator

type UnsupportedTypeError struct {
	Type types.TypeSignature
}

var _ GenerationError = UnsupportedTypeError{}
var _ errors.InternalError = UnsupportedTypeError{}

func (UnsupportedTypeError) isGenerationError() {}

func (UnsupportedTypeError) IsInternalError() {}

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf(
		"%s unsupported type: %s",
		errors.InternalErrorMessagePrefix,
		e.Type,
	)
}

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

	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/types"
)

// A Word is the handler for one Clarity built-in construct,
// identified by its leading keyword.
type Word interface {
	Keyword() string
}

// A SimpleWord only operates on the WebAssembly representations of its
// operands: the generator evaluates all operands onto the operand stack
// before the word is visited
type SimpleWord interface {
	Word
	// Visit emits the code for the word. The operands have already been
	// evaluated, in order, and their representations are on the stack.
	Visit(
		gen *WasmGenerator,
		expr *ast.List,
		argTypes []types.TypeSignature,
		returnType types.TypeSignature,
	) error
}

// A ComplexWord controls the traversal of its own operands,
// e.g. because it must only evaluate some of them,
// or must emit code between operand evaluations
type ComplexWord interface {
	Word
	// Traverse emits the code for the word.
	// expr is the full form, keyword included.
	Traverse(
		gen *WasmGenerator,
		expr *ast.List,
		returnType types.TypeSignature,
	) error
}

var simpleWords = map[string]SimpleWord{}
var complexWords = map[string]ComplexWord{}

func registerWord(word Word) {
	keyword := word.Keyword()
	_, simpleExists := simpleWords[keyword]
	_, complexExists := complexWords[keyword]
	if simpleExists || complexExists {
		panic(fmt.Errorf("word already registered: %s", keyword))
	}

	switch word := word.(type) {
	case SimpleWord:
		simpleWords[keyword] = word
	case ComplexWord:
		complexWords[keyword] = word
	default:
		panic(fmt.Errorf("invalid word: %s", keyword))
	}
}

func lookupSimpleWord(keyword string) (SimpleWord, bool) {
	word, ok := simpleWords[keyword]
	return word, ok
}

func lookupComplexWord(keyword string) (ComplexWord, bool) {
	word, ok := complexWords[keyword]
	return word, ok
}

// simpleWord and complexWord resolve a keyword for this generator,
// consulting the configured overrides before the process-wide registry.
// An overridden keyword never falls back to the built-in word.

func (gen *WasmGenerator) simpleWord(keyword string) (SimpleWord, bool) {
	if word, ok := gen.wordOverride[keyword]; ok {
		simple, ok := word.(SimpleWord)
		return simple, ok
	}
	return lookupSimpleWord(keyword)
}

func (gen *WasmGenerator) complexWord(keyword string) (ComplexWord, bool) {
	if word, ok := gen.wordOverride[keyword]; ok {
		complexWord, ok := word.(ComplexWord)
		return complexWord, ok
	}
	return lookupComplexWord(keyword)
}

func registeredKeywords() []string {
	keywords := make([]string, 0, len(simpleWords)+len(complexWords))
	for keyword := range simpleWords {
		keywords = append(keywords, keyword)
	}
	for keyword := range complexWords {
		keywords = append(keywords, keyword)
	}
	return keywords
}

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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stacks-network/clarwasm/generator"
	"github.com/stacks-network/clarwasm/runtime"
	"github.com/stacks-network/clarwasm/tools"
	"github.com/stacks-network/clarwasm/wasm"
)

const usage = `usage:
  clarwasm compile <file.clar>   compile to WebAssembly, written to stdout
  clarwasm run <file.clar>       compile and run against a simulated chain
`

func main() {
	args := os.Args[1:]

	if len(args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := args[0]
	path := args[1]

	switch command {
	case "compile":
		compile(path)
	case "run":
		run(path)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, colorizeError(err.Error()))
	os.Exit(1)
}

func compileContract(path string) *generator.Contract {
	source, err := os.ReadFile(path)
	if err != nil {
		exitWithError(err)
	}

	program, err := tools.Parse(string(source))
	if err != nil {
		exitWithError(err)
	}

	typeMap, err := tools.Annotate(program)
	if err != nil {
		exitWithError(err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	contract, err := generator.GenerateContract(name, program, typeMap)
	if err != nil {
		exitWithError(err)
	}

	return contract
}

func compile(path string) {
	contract := compileContract(path)

	var buf wasm.Buffer
	w := wasm.NewWASMWriter(&buf)
	err := w.WriteModule(contract.Module)
	if err != nil {
		exitWithError(err)
	}

	_, err = os.Stdout.Write(buf.Bytes())
	if err != nil {
		exitWithError(err)
	}
}

func run(path string) {
	contract := compileContract(path)

	env := runtime.NewEnvironment(demoChain())

	result, err := env.Execute(contract)
	if err != nil {
		exitWithError(err)
	}

	if result != nil {
		fmt.Println(colorizeResult(result))
	}
}

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
	"math/big"

	"github.com/bytecodealliance/wasmtime-go/v22"

	"github.com/stacks-network/clarwasm/errors"
	"github.com/stacks-network/clarwasm/generator"
	"github.com/stacks-network/clarwasm/types"
	"github.com/stacks-network/clarwasm/wasm"
)

// An Environment executes generated contracts against a simulated chain.
//
// The WebAssembly engine is configured deterministically:
// the same contract against the same chain always produces
// the same result.
type Environment struct {
	engine    *wasmtime.Engine
	chain     *Chain
	variables map[string][]byte

	// views is the stack of historical state views:
	// the top is the block height queries currently see
	views []uint64
}

func NewEnvironment(chain *Chain) *Environment {
	config := wasmtime.NewConfig()

	config.SetConsumeFuel(true)

	const maxStackSize = 512 * 1024
	config.SetMaxWasmStack(maxStackSize)

	// Enable bulk memory operations,
	// programs can use them to operate on memory more efficiently.
	config.SetWasmBulkMemory(true)

	// Deterministic configuration inspired by
	// https://github.com/dfinity/ic/blob/a0ab22537bdf65bd1f473654d49283e4f95f5a61/rs/embedders/README.adoc#nondeterminism

	config.SetWasmThreads(false)
	config.SetWasmSIMD(false)
	config.SetWasmRelaxedSIMD(false)
	config.SetWasmRelaxedSIMDDeterministic(false)

	config.SetStrategy(wasmtime.StrategyCranelift)
	config.SetCraneliftFlag("enable_nan_canonicalization", "true")

	// Disable optimizations to keep compilation simple and fast.
	config.SetCraneliftOptLevel(wasmtime.OptLevelNone)

	config.SetWasmReferenceTypes(false)
	config.SetWasmMemory64(false)
	config.SetWasmMultiMemory(false)

	// 128-bit values travel as pairs of i64s,
	// so the host routines return multiple values
	config.SetWasmMultiValue(true)

	return &Environment{
		engine:    wasmtime.NewEngineWithConfig(config),
		chain:     chain,
		variables: map[string][]byte{},
	}
}

// view returns the block height queries currently see:
// the innermost historical view, or the chain tip
func (env *Environment) view() uint64 {
	if len(env.views) > 0 {
		return env.views[len(env.views)-1]
	}
	return env.chain.Tip()
}

const executionFuel = 1_000_000

// Execute instantiates the contract, runs its top-level function,
// and decodes the result from the instance's memory
func (env *Environment) Execute(contract *generator.Contract) (Value, error) {
	var buf wasm.Buffer
	writer := wasm.NewWASMWriter(&buf)
	err := writer.WriteModule(contract.Module)
	if err != nil {
		return nil, err
	}

	module, err := wasmtime.NewModule(env.engine, buf.Bytes())
	if err != nil {
		return nil, errors.NewUnexpectedErrorFromCause(err)
	}

	store := wasmtime.NewStore(env.engine)

	const memoryLimit = 2 * 1024 * 1024
	store.Limiter(memoryLimit, 0, -1, 1, 1)

	err = store.SetFuel(executionFuel)
	if err != nil {
		return nil, errors.NewUnexpectedErrorFromCause(err)
	}

	linker := wasmtime.NewLinker(env.engine)
	err = env.defineHostRoutines(linker, store)
	if err != nil {
		return nil, errors.NewUnexpectedErrorFromCause(err)
	}

	instance, err := linker.Instantiate(store, module)
	if err != nil {
		return nil, err
	}

	topLevel := instance.GetFunc(store, generator.TopLevelExportName)
	if topLevel == nil {
		return nil, errors.NewUnexpectedError(
			"contract has no %s export",
			generator.TopLevelExportName,
		)
	}

	_, err = topLevel.Call(store)
	if err != nil {
		return nil, err
	}

	memory := instance.GetExport(store, generator.MemoryExportName)
	if memory == nil || memory.Memory() == nil {
		return nil, errors.NewUnexpectedError(
			"contract has no %s export",
			generator.MemoryExportName,
		)
	}

	data := memory.Memory().UnsafeData(store)
	if uint64(contract.ResultOffset)+uint64(contract.ResultSize) > uint64(len(data)) {
		return nil, errors.NewUnexpectedError("result region out of bounds")
	}

	return DecodeValue(
		contract.ResultType,
		data[contract.ResultOffset:contract.ResultOffset+contract.ResultSize],
	)
}

func callerMemory(caller *wasmtime.Caller) ([]byte, *wasmtime.Trap) {
	export := caller.GetExport(generator.MemoryExportName)
	if export == nil || export.Memory() == nil {
		return nil, wasmtime.NewTrap("contract has no memory export")
	}
	return export.Memory().UnsafeData(caller), nil
}

func memoryRange(data []byte, offset, length int32) ([]byte, *wasmtime.Trap) {
	if offset < 0 || length < 0 || int64(offset)+int64(length) > int64(len(data)) {
		return nil, wasmtime.NewTrap("memory access out of bounds")
	}
	return data[offset : offset+length], nil
}

func (env *Environment) defineHostRoutines(
	linker *wasmtime.Linker,
	store *wasmtime.Store,
) error {
	routines := map[string]any{
		"add-int":  arithmeticRoutine(addInt128, true),
		"add-uint": arithmeticRoutine(addInt128, false),
		"sub-int":  arithmeticRoutine(subInt128, true),
		"sub-uint": arithmeticRoutine(subInt128, false),
		"mul-int":  arithmeticRoutine(mulInt128, true),
		"mul-uint": arithmeticRoutine(mulInt128, false),
		"div-int":  arithmeticRoutine(divInt128, true),
		"div-uint": arithmeticRoutine(divInt128, false),
		"mod-int":  arithmeticRoutine(modInt128, true),
		"mod-uint": arithmeticRoutine(modInt128, false),

		"lt-int":  integerComparisonRoutine(isLess, true),
		"lt-uint": integerComparisonRoutine(isLess, false),
		"gt-int":  integerComparisonRoutine(isGreater, true),
		"gt-uint": integerComparisonRoutine(isGreater, false),
		"le-int":  integerComparisonRoutine(isLessOrEqual, true),
		"le-uint": integerComparisonRoutine(isLessOrEqual, false),
		"ge-int":  integerComparisonRoutine(isGreaterOrEqual, true),
		"ge-uint": integerComparisonRoutine(isGreaterOrEqual, false),

		"lt-buff": sequenceComparisonRoutine(isLess),
		"gt-buff": sequenceComparisonRoutine(isGreater),
		"le-buff": sequenceComparisonRoutine(isLessOrEqual),
		"ge-buff": sequenceComparisonRoutine(isGreaterOrEqual),

		"buff-to-uint-be": buffToIntegerRoutine(false),
		"buff-to-uint-le": buffToIntegerRoutine(true),

		"get_block_info":      env.getBlockInfoRoutine(),
		"get_burn_block_info": env.getBurnBlockInfoRoutine(),
		"enter_at_block":      env.enterAtBlockRoutine(),
		"exit_at_block":       env.exitAtBlockRoutine(),
		"get_variable":        env.getVariableRoutine(),
		"set_variable":        env.setVariableRoutine(),
	}

	for name, routine := range routines {
		err := linker.DefineFunc(store, generator.StdlibModuleName, name, routine)
		if err != nil {
			return err
		}
	}
	return nil
}

// optionalBlockPropertyType returns the result type of a block query,
// which the host must encode byte-for-byte the way the generated code
// reads it back
func optionalBlockPropertyType(property string) (types.OptionalType, bool) {
	var inner types.TypeSignature
	switch property {
	case "time", "block-reward", "miner-spend-total", "miner-spend-winner":
		inner = types.UInt
	case "header-hash", "burnchain-header-hash", "id-header-hash":
		inner = types.BufferType{MaxLength: 32}
	case "miner-address":
		inner = types.Principal
	default:
		return types.OptionalType{}, false
	}
	return types.NewOptionalType(inner), true
}

func poxAddrsType() types.TupleType {
	return types.NewTupleType(
		types.TupleField{
			Name: "addrs",
			Type: types.ListType{
				MaxLength: 2,
				Element: types.NewTupleType(
					types.TupleField{Name: "hashbytes", Type: types.BufferType{MaxLength: 32}},
					types.TupleField{Name: "version", Type: types.BufferType{MaxLength: 1}},
				),
			},
		},
		types.TupleField{Name: "payout", Type: types.UInt},
	)
}

func optionalBurnBlockPropertyType(property string) (types.OptionalType, bool) {
	var inner types.TypeSignature
	switch property {
	case "header-hash":
		inner = types.BufferType{MaxLength: 32}
	case "pox-addrs":
		inner = poxAddrsType()
	default:
		return types.OptionalType{}, false
	}
	return types.NewOptionalType(inner), true
}

func writeOptionalResult(
	data []byte,
	resultOffset int32,
	resultSize int32,
	result Value,
	resultType types.OptionalType,
) *wasmtime.Trap {
	region, trap := memoryRange(data, resultOffset, resultSize)
	if trap != nil {
		return trap
	}

	encoded, err := EncodeValue(result, resultType)
	if err != nil {
		return wasmtime.NewTrap(err.Error())
	}
	if len(encoded) > len(region) {
		return wasmtime.NewTrap("result region too small")
	}
	copy(region, encoded)
	return nil
}

func (env *Environment) getBlockInfoRoutine() any {
	return func(
		caller *wasmtime.Caller,
		nameOffset, nameLength int32,
		heightLow, heightHigh int64,
		resultOffset, resultSize int32,
	) *wasmtime.Trap {
		data, trap := callerMemory(caller)
		if trap != nil {
			return trap
		}
		name, trap := memoryRange(data, nameOffset, nameLength)
		if trap != nil {
			return trap
		}

		resultType, ok := optionalBlockPropertyType(string(name))
		if !ok {
			return wasmtime.NewTrap("unknown block property: " + string(name))
		}

		var result Value = NoneValue{}
		if heightHigh == 0 && heightLow >= 0 {
			block, ok := env.chain.BlockAt(uint64(heightLow), env.view())
			if ok {
				result = SomeValue{
					Inner: blockPropertyValue(string(name), block),
				}
			}
		}

		return writeOptionalResult(data, resultOffset, resultSize, result, resultType)
	}
}

func blockPropertyValue(property string, block BlockRecord) Value {
	uintOrZero := func(v *big.Int) UIntValue {
		if v == nil {
			return NewUIntValue(0)
		}
		return UIntValue{Value: v}
	}

	switch property {
	case "time":
		return NewUIntValue(block.Time)
	case "header-hash":
		return BufferValue(block.HeaderHash[:])
	case "burnchain-header-hash":
		return BufferValue(block.BurnchainHeaderHash[:])
	case "id-header-hash":
		return BufferValue(block.IDHeaderHash[:])
	case "miner-address":
		return block.MinerAddress
	case "block-reward":
		return uintOrZero(block.BlockReward)
	case "miner-spend-total":
		return uintOrZero(block.MinerSpendTotal)
	case "miner-spend-winner":
		return uintOrZero(block.MinerSpendWinner)
	}
	panic(errors.NewUnreachableError())
}

func (env *Environment) getBurnBlockInfoRoutine() any {
	return func(
		caller *wasmtime.Caller,
		nameOffset, nameLength int32,
		heightLow, heightHigh int64,
		resultOffset, resultSize int32,
	) *wasmtime.Trap {
		data, trap := callerMemory(caller)
		if trap != nil {
			return trap
		}
		name, trap := memoryRange(data, nameOffset, nameLength)
		if trap != nil {
			return trap
		}

		resultType, ok := optionalBurnBlockPropertyType(string(name))
		if !ok {
			return wasmtime.NewTrap("unknown burn block property: " + string(name))
		}

		var result Value = NoneValue{}
		if heightHigh == 0 && heightLow >= 0 {
			block, ok := env.chain.BurnBlockAt(uint64(heightLow), env.view())
			if ok {
				result = SomeValue{
					Inner: burnBlockPropertyValue(string(name), block),
				}
			}
		}

		return writeOptionalResult(data, resultOffset, resultSize, result, resultType)
	}
}

func burnBlockPropertyValue(property string, block BurnBlockRecord) Value {
	switch property {
	case "header-hash":
		return BufferValue(block.HeaderHash[:])

	case "pox-addrs":
		poxAddrs := block.PoxAddrs
		if len(poxAddrs) == 0 {
			// a block without a payout still reports one all-zero entry
			poxAddrs = []PoxAddr{{HashBytes: make([]byte, 32)}}
		}
		addrs := make(ListValue, 0, len(poxAddrs))
		for _, addr := range poxAddrs {
			addrs = append(addrs, TupleValue{
				Fields: []TupleFieldValue{
					{Name: "hashbytes", Value: BufferValue(addr.HashBytes)},
					{Name: "version", Value: BufferValue{addr.Version}},
				},
			})
		}
		payout := block.Payout
		if payout == nil {
			payout = big.NewInt(0)
		}
		return TupleValue{
			Fields: []TupleFieldValue{
				{Name: "addrs", Value: addrs},
				{Name: "payout", Value: UIntValue{Value: payout}},
			},
		}
	}
	panic(errors.NewUnreachableError())
}

func (env *Environment) enterAtBlockRoutine() any {
	return func(
		caller *wasmtime.Caller,
		hashOffset, hashLength int32,
	) *wasmtime.Trap {
		data, trap := callerMemory(caller)
		if trap != nil {
			return trap
		}
		hash, trap := memoryRange(data, hashOffset, hashLength)
		if trap != nil {
			return trap
		}

		height, ok := env.chain.HeightOf(hash)
		if !ok {
			return wasmtime.NewTrap("unknown block hash")
		}
		env.views = append(env.views, height)
		return nil
	}
}

func (env *Environment) exitAtBlockRoutine() any {
	return func() *wasmtime.Trap {
		if len(env.views) == 0 {
			return wasmtime.NewTrap("no historical view to leave")
		}
		env.views = env.views[:len(env.views)-1]
		return nil
	}
}

func (env *Environment) getVariableRoutine() any {
	return func(
		caller *wasmtime.Caller,
		nameOffset, nameLength int32,
		valueOffset, valueSize int32,
	) *wasmtime.Trap {
		data, trap := callerMemory(caller)
		if trap != nil {
			return trap
		}
		name, trap := memoryRange(data, nameOffset, nameLength)
		if trap != nil {
			return trap
		}

		value, ok := env.variables[string(name)]
		if !ok {
			return wasmtime.NewTrap("undeclared data variable: " + string(name))
		}

		region, trap := memoryRange(data, valueOffset, valueSize)
		if trap != nil {
			return trap
		}
		if len(value) > len(region) {
			return wasmtime.NewTrap("variable value region too small")
		}
		copy(region, value)
		return nil
	}
}

func (env *Environment) setVariableRoutine() any {
	return func(
		caller *wasmtime.Caller,
		nameOffset, nameLength int32,
		valueOffset, valueSize int32,
	) *wasmtime.Trap {
		data, trap := callerMemory(caller)
		if trap != nil {
			return trap
		}
		name, trap := memoryRange(data, nameOffset, nameLength)
		if trap != nil {
			return trap
		}
		value, trap := memoryRange(data, valueOffset, valueSize)
		if trap != nil {
			return trap
		}

		stored := make([]byte, len(value))
		copy(stored, value)
		env.variables[string(name)] = stored
		return nil
	}
}

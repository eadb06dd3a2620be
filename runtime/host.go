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
	"bytes"
	"math/big"

	"github.com/bytecodealliance/wasmtime-go/v22"
)

// Host implementations of the pure computation routines.
// Each 128-bit operand arrives as two i64 halves, low first.

var minInt128 = new(big.Int).Neg(new(big.Int).Lsh(bigOne, 127))

func int128FromParts(low, high int64, signed bool) *big.Int {
	value := new(big.Int).SetUint64(uint64(high))
	value.Lsh(value, 64)
	value.Or(value, new(big.Int).SetUint64(uint64(low)))

	if signed && value.Cmp(maxInt128) > 0 {
		value.Sub(value, twoPow128)
	}
	return value
}

func int128Parts(value *big.Int) (low, high int64) {
	bits := new(big.Int).And(value, maxUint128)
	low = int64(new(big.Int).And(bits, new(big.Int).SetUint64(^uint64(0))).Uint64())
	high = int64(new(big.Int).Rsh(bits, 64).Uint64())
	return
}

func inInt128Range(value *big.Int, signed bool) bool {
	if signed {
		return value.Cmp(minInt128) >= 0 && value.Cmp(maxInt128) <= 0
	}
	return value.Sign() >= 0 && value.Cmp(maxUint128) <= 0
}

func addInt128(a, b *big.Int) (*big.Int, *wasmtime.Trap) {
	return new(big.Int).Add(a, b), nil
}

func subInt128(a, b *big.Int) (*big.Int, *wasmtime.Trap) {
	return new(big.Int).Sub(a, b), nil
}

func mulInt128(a, b *big.Int) (*big.Int, *wasmtime.Trap) {
	return new(big.Int).Mul(a, b), nil
}

func divInt128(a, b *big.Int) (*big.Int, *wasmtime.Trap) {
	if b.Sign() == 0 {
		return nil, wasmtime.NewTrap("division by zero")
	}
	return new(big.Int).Quo(a, b), nil
}

func modInt128(a, b *big.Int) (*big.Int, *wasmtime.Trap) {
	if b.Sign() == 0 {
		return nil, wasmtime.NewTrap("division by zero")
	}
	return new(big.Int).Rem(a, b), nil
}

// arithmeticRoutine wraps a 128-bit operation as a host function.
// A result outside the type's range is an overflow and traps,
// matching the language's checked arithmetic.
func arithmeticRoutine(
	op func(a, b *big.Int) (*big.Int, *wasmtime.Trap),
	signed bool,
) any {
	return func(aLow, aHigh, bLow, bHigh int64) (int64, int64, *wasmtime.Trap) {
		a := int128FromParts(aLow, aHigh, signed)
		b := int128FromParts(bLow, bHigh, signed)

		result, trap := op(a, b)
		if trap != nil {
			return 0, 0, trap
		}
		if !inInt128Range(result, signed) {
			return 0, 0, wasmtime.NewTrap("arithmetic overflow")
		}

		low, high := int128Parts(result)
		return low, high, nil
	}
}

func isLess(comparison int) bool           { return comparison < 0 }
func isGreater(comparison int) bool        { return comparison > 0 }
func isLessOrEqual(comparison int) bool    { return comparison <= 0 }
func isGreaterOrEqual(comparison int) bool { return comparison >= 0 }

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func integerComparisonRoutine(
	predicate func(comparison int) bool,
	signed bool,
) any {
	return func(aLow, aHigh, bLow, bHigh int64) int32 {
		a := int128FromParts(aLow, aHigh, signed)
		b := int128FromParts(bLow, bHigh, signed)
		return boolToI32(predicate(a.Cmp(b)))
	}
}

// sequenceComparisonRoutine compares two byte sequences
// lexicographically, byte by byte
func sequenceComparisonRoutine(
	predicate func(comparison int) bool,
) any {
	return func(
		caller *wasmtime.Caller,
		aOffset, aLength, bOffset, bLength int32,
	) (int32, *wasmtime.Trap) {
		data, trap := callerMemory(caller)
		if trap != nil {
			return 0, trap
		}
		a, trap := memoryRange(data, aOffset, aLength)
		if trap != nil {
			return 0, trap
		}
		b, trap := memoryRange(data, bOffset, bLength)
		if trap != nil {
			return 0, trap
		}
		return boolToI32(predicate(bytes.Compare(a, b))), nil
	}
}

// buffToIntegerRoutine turns up to 16 bytes into the raw 128 bits of an
// integer. The caller interprets the bits as signed or unsigned, so one
// routine per endianness serves both conversions.
func buffToIntegerRoutine(littleEndian bool) any {
	return func(
		caller *wasmtime.Caller,
		offset, length int32,
	) (int64, int64, *wasmtime.Trap) {
		data, trap := callerMemory(caller)
		if trap != nil {
			return 0, 0, trap
		}
		buffer, trap := memoryRange(data, offset, length)
		if trap != nil {
			return 0, 0, trap
		}
		if len(buffer) > 16 {
			return 0, 0, wasmtime.NewTrap("buffer larger than 16 bytes")
		}

		var low, high uint64
		if littleEndian {
			for i := len(buffer) - 1; i >= 0; i-- {
				high = high<<8 | low>>56
				low = low<<8 | uint64(buffer[i])
			}
		} else {
			for _, b := range buffer {
				high = high<<8 | low>>56
				low = low<<8 | uint64(b)
			}
		}
		return int64(low), int64(high), nil
	}
}

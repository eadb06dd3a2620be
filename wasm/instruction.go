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

package wasm

// Instruction is a WebAssembly instruction
type Instruction interface {
	write(w *WASMWriter) error
}

// opcodes, from https://webassembly.github.io/spec/core/binary/instructions.html

const (
	opcodeUnreachable  byte = 0x00
	opcodeNop          byte = 0x01
	opcodeBlock        byte = 0x02
	opcodeLoop         byte = 0x03
	opcodeIf           byte = 0x04
	opcodeElse         byte = 0x05
	opcodeEnd          byte = 0x0B
	opcodeBr           byte = 0x0C
	opcodeBrIf         byte = 0x0D
	opcodeBrTable      byte = 0x0E
	opcodeReturn       byte = 0x0F
	opcodeCall         byte = 0x10
	opcodeDrop         byte = 0x1A
	opcodeSelect       byte = 0x1B
	opcodeLocalGet     byte = 0x20
	opcodeLocalSet     byte = 0x21
	opcodeLocalTee     byte = 0x22
	opcodeI32Load      byte = 0x28
	opcodeI64Load      byte = 0x29
	opcodeI32Load8U    byte = 0x2D
	opcodeI32Store     byte = 0x36
	opcodeI64Store     byte = 0x37
	opcodeI32Store8    byte = 0x3A
	opcodeI32Const     byte = 0x41
	opcodeI64Const     byte = 0x42
	opcodeI32Eqz       byte = 0x45
	opcodeI32Eq        byte = 0x46
	opcodeI32Add       byte = 0x6A
	opcodeI32Sub       byte = 0x6B
	opcodeI32Mul       byte = 0x6C
	opcodeMiscPrefix   byte = 0xFC
	miscOpcodeMemCopy       = 10
	miscOpcodeMemFill       = 11
)

// Block contains the instructions in a block-kinded instruction
// (block, loop, and if). Instructions2 is only valid for if instructions
// and contains the else branch.
type Block struct {
	BlockType     BlockType
	Instructions1 []Instruction
	Instructions2 []Instruction
}

func (block Block) write(w *WASMWriter, allowInstructions2 bool) error {
	if block.BlockType != nil {
		err := block.BlockType.write(w)
		if err != nil {
			return err
		}
	} else {
		err := w.buf.WriteByte(emptyBlockType)
		if err != nil {
			return err
		}
	}

	err := w.writeInstructions(block.Instructions1)
	if err != nil {
		return err
	}

	if block.Instructions2 != nil {
		if !allowInstructions2 {
			return InvalidBlockSecondInstructionsError{
				Offset: int(w.buf.offset),
			}
		}

		err := w.buf.WriteByte(opcodeElse)
		if err != nil {
			return err
		}

		err = w.writeInstructions(block.Instructions2)
		if err != nil {
			return err
		}
	}

	return w.buf.WriteByte(opcodeEnd)
}

// InstructionUnreachable is the 'unreachable' instruction
type InstructionUnreachable struct{}

func (InstructionUnreachable) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeUnreachable)
}

// InstructionNop is the 'nop' instruction
type InstructionNop struct{}

func (InstructionNop) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeNop)
}

// InstructionBlock is the 'block' instruction
type InstructionBlock struct {
	Block Block
}

func (i InstructionBlock) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeBlock)
	if err != nil {
		return err
	}
	return i.Block.write(w, false)
}

// InstructionLoop is the 'loop' instruction
type InstructionLoop struct {
	Block Block
}

func (i InstructionLoop) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeLoop)
	if err != nil {
		return err
	}
	return i.Block.write(w, false)
}

// InstructionIf is the 'if' instruction
type InstructionIf struct {
	Block Block
}

func (i InstructionIf) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeIf)
	if err != nil {
		return err
	}
	return i.Block.write(w, true)
}

// InstructionEnd is the 'end' pseudo-instruction
type InstructionEnd struct{}

func (InstructionEnd) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeEnd)
}

// InstructionBr is the 'br' instruction
type InstructionBr struct {
	LabelIndex uint32
}

func (i InstructionBr) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeBr)
	if err != nil {
		return err
	}
	return w.buf.writeUint32LEB128(i.LabelIndex)
}

// InstructionBrIf is the 'br_if' instruction
type InstructionBrIf struct {
	LabelIndex uint32
}

func (i InstructionBrIf) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeBrIf)
	if err != nil {
		return err
	}
	return w.buf.writeUint32LEB128(i.LabelIndex)
}

// InstructionBrTable is the 'br_table' instruction
type InstructionBrTable struct {
	LabelIndices      []uint32
	DefaultLabelIndex uint32
}

func (i InstructionBrTable) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeBrTable)
	if err != nil {
		return err
	}
	err = w.buf.writeUint32LEB128(uint32(len(i.LabelIndices)))
	if err != nil {
		return err
	}
	for _, labelIndex := range i.LabelIndices {
		err = w.buf.writeUint32LEB128(labelIndex)
		if err != nil {
			return err
		}
	}
	return w.buf.writeUint32LEB128(i.DefaultLabelIndex)
}

// InstructionReturn is the 'return' instruction
type InstructionReturn struct{}

func (InstructionReturn) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeReturn)
}

// InstructionCall is the 'call' instruction
type InstructionCall struct {
	FuncIndex uint32
}

func (i InstructionCall) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeCall)
	if err != nil {
		return err
	}
	return w.buf.writeUint32LEB128(i.FuncIndex)
}

// InstructionDrop is the 'drop' instruction
type InstructionDrop struct{}

func (InstructionDrop) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeDrop)
}

// InstructionSelect is the 'select' instruction
type InstructionSelect struct{}

func (InstructionSelect) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeSelect)
}

// InstructionLocalGet is the 'local.get' instruction
type InstructionLocalGet struct {
	LocalIndex uint32
}

func (i InstructionLocalGet) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeLocalGet)
	if err != nil {
		return err
	}
	return w.buf.writeUint32LEB128(i.LocalIndex)
}

// InstructionLocalSet is the 'local.set' instruction
type InstructionLocalSet struct {
	LocalIndex uint32
}

func (i InstructionLocalSet) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeLocalSet)
	if err != nil {
		return err
	}
	return w.buf.writeUint32LEB128(i.LocalIndex)
}

// InstructionLocalTee is the 'local.tee' instruction
type InstructionLocalTee struct {
	LocalIndex uint32
}

func (i InstructionLocalTee) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeLocalTee)
	if err != nil {
		return err
	}
	return w.buf.writeUint32LEB128(i.LocalIndex)
}

// MemArg is the memory immediate of load and store instructions:
// an alignment hint and a static offset added to the dynamic address
type MemArg struct {
	Align  uint32
	Offset uint32
}

func (m MemArg) write(w *WASMWriter) error {
	err := w.buf.writeUint32LEB128(m.Align)
	if err != nil {
		return err
	}
	return w.buf.writeUint32LEB128(m.Offset)
}

// InstructionI32Load is the 'i32.load' instruction
type InstructionI32Load struct {
	MemArg MemArg
}

func (i InstructionI32Load) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeI32Load)
	if err != nil {
		return err
	}
	return i.MemArg.write(w)
}

// InstructionI64Load is the 'i64.load' instruction
type InstructionI64Load struct {
	MemArg MemArg
}

func (i InstructionI64Load) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeI64Load)
	if err != nil {
		return err
	}
	return i.MemArg.write(w)
}

// InstructionI32Load8U is the 'i32.load8_u' instruction
type InstructionI32Load8U struct {
	MemArg MemArg
}

func (i InstructionI32Load8U) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeI32Load8U)
	if err != nil {
		return err
	}
	return i.MemArg.write(w)
}

// InstructionI32Store is the 'i32.store' instruction
type InstructionI32Store struct {
	MemArg MemArg
}

func (i InstructionI32Store) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeI32Store)
	if err != nil {
		return err
	}
	return i.MemArg.write(w)
}

// InstructionI64Store is the 'i64.store' instruction
type InstructionI64Store struct {
	MemArg MemArg
}

func (i InstructionI64Store) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeI64Store)
	if err != nil {
		return err
	}
	return i.MemArg.write(w)
}

// InstructionI32Store8 is the 'i32.store8' instruction
type InstructionI32Store8 struct {
	MemArg MemArg
}

func (i InstructionI32Store8) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeI32Store8)
	if err != nil {
		return err
	}
	return i.MemArg.write(w)
}

// InstructionI32Const is the 'i32.const' instruction
type InstructionI32Const struct {
	Value int32
}

func (i InstructionI32Const) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeI32Const)
	if err != nil {
		return err
	}
	return w.buf.writeInt32LEB128(i.Value)
}

// InstructionI64Const is the 'i64.const' instruction
type InstructionI64Const struct {
	Value int64
}

func (i InstructionI64Const) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeI64Const)
	if err != nil {
		return err
	}
	return w.buf.writeInt64LEB128(i.Value)
}

// InstructionI32Eqz is the 'i32.eqz' instruction
type InstructionI32Eqz struct{}

func (InstructionI32Eqz) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeI32Eqz)
}

// InstructionI32Eq is the 'i32.eq' instruction
type InstructionI32Eq struct{}

func (InstructionI32Eq) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeI32Eq)
}

// InstructionI32Add is the 'i32.add' instruction
type InstructionI32Add struct{}

func (InstructionI32Add) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeI32Add)
}

// InstructionI32Sub is the 'i32.sub' instruction
type InstructionI32Sub struct{}

func (InstructionI32Sub) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeI32Sub)
}

// InstructionI32Mul is the 'i32.mul' instruction
type InstructionI32Mul struct{}

func (InstructionI32Mul) write(w *WASMWriter) error {
	return w.buf.WriteByte(opcodeI32Mul)
}

// InstructionMemoryCopy is the 'memory.copy' instruction.
// It requires the bulk-memory proposal, which the sandboxed runtime enables.
type InstructionMemoryCopy struct{}

func (InstructionMemoryCopy) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeMiscPrefix)
	if err != nil {
		return err
	}
	err = w.buf.writeUint32LEB128(miscOpcodeMemCopy)
	if err != nil {
		return err
	}
	// NOTE: currently only one memory is supported
	return w.buf.WriteBytes([]byte{0, 0})
}

// InstructionMemoryFill is the 'memory.fill' instruction.
// It requires the bulk-memory proposal, which the sandboxed runtime enables.
type InstructionMemoryFill struct{}

func (InstructionMemoryFill) write(w *WASMWriter) error {
	err := w.buf.WriteByte(opcodeMiscPrefix)
	if err != nil {
		return err
	}
	err = w.buf.writeUint32LEB128(miscOpcodeMemFill)
	if err != nil {
		return err
	}
	// NOTE: currently only one memory is supported
	return w.buf.WriteByte(0)
}

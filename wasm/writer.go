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

import (
	"unicode/utf8"
)

// WASMWriter writes a module in the binary WASM format
type WASMWriter struct {
	buf *Buffer
	// WriteNames indicates whether a name section
	// should be written at the end of the module
	WriteNames bool
}

func NewWASMWriter(buf *Buffer) *WASMWriter {
	return &WASMWriter{buf: buf}
}

// sectionID is the ID of a section in the WASM binary
type sectionID byte

const (
	sectionIDCustom   sectionID = 0
	sectionIDType     sectionID = 1
	sectionIDImport   sectionID = 2
	sectionIDFunction sectionID = 3
	sectionIDMemory   sectionID = 5
	sectionIDExport   sectionID = 7
	sectionIDCode     sectionID = 10
	sectionIDData     sectionID = 11
)

// functionTypeIndicator is the byte which indicates a function type in the WASM binary
const functionTypeIndicator byte = 0x60

// importIndicatorFunction is the byte which indicates a function import in the WASM binary
const importIndicatorFunction byte = 0x0

// nameSectionSubSectionID is the ID of a sub-section of the name section
type nameSectionSubSectionID byte

const (
	nameSubSectionIDModuleName    nameSectionSubSectionID = 0
	nameSubSectionIDFunctionNames nameSectionSubSectionID = 1
)

// WriteModule writes the module in the binary WASM format
func (w *WASMWriter) WriteModule(module *Module) error {
	err := w.writeMagicAndVersion()
	if err != nil {
		return err
	}
	if len(module.Types) > 0 {
		err = w.writeTypeSection(module.Types)
		if err != nil {
			return err
		}
	}
	if len(module.Imports) > 0 {
		err = w.writeImportSection(module.Imports)
		if err != nil {
			return err
		}
	}
	if len(module.Functions) > 0 {
		err = w.writeFunctionSection(module.Functions)
		if err != nil {
			return err
		}
	}
	if len(module.Memories) > 0 {
		err = w.writeMemorySection(module.Memories)
		if err != nil {
			return err
		}
	}
	if len(module.Exports) > 0 {
		err = w.writeExportSection(module.Exports)
		if err != nil {
			return err
		}
	}
	if len(module.Functions) > 0 {
		err = w.writeCodeSection(module.Functions)
		if err != nil {
			return err
		}
	}
	if len(module.Data) > 0 {
		err = w.writeDataSection(module.Data)
		if err != nil {
			return err
		}
	}
	if w.WriteNames {
		err = w.writeNameSection(
			module.Name,
			module.Imports,
			module.Functions,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// wasmMagic is the magic byte sequence at the beginning of every WASM binary
var wasmMagic = []byte{0x0, 0x61, 0x73, 0x6d}

// wasmVersion is the byte sequence encoding the supported WASM version
var wasmVersion = []byte{0x1, 0x0, 0x0, 0x0}

func (w *WASMWriter) writeMagicAndVersion() error {
	err := w.buf.WriteBytes(wasmMagic)
	if err != nil {
		return err
	}
	return w.buf.WriteBytes(wasmVersion)
}

// writeSection writes a section in the WASM binary, with the given section ID
// and the given content. The size of the content is written before the content
func (w *WASMWriter) writeSection(sectionID sectionID, content func() error) error {
	err := w.buf.WriteByte(byte(sectionID))
	if err != nil {
		return err
	}
	return w.writeContentWithSize(content)
}

// writeContentWithSize writes the given content, prefixed with its byte size
func (w *WASMWriter) writeContentWithSize(content func() error) error {
	// write the temporary placeholder for the size
	sizeOffset, err := w.buf.writeFixedUint32LEB128Space()
	if err != nil {
		return err
	}

	err = content()
	if err != nil {
		return err
	}

	// write the actual size into the placeholder
	return w.buf.writeUint32LEB128SizeAt(sizeOffset)
}

// writeTypeSection writes the section which declares all function types,
// so they can be referenced by index
func (w *WASMWriter) writeTypeSection(funcTypes []*FunctionType) error {
	return w.writeSection(sectionIDType, func() error {
		err := w.buf.writeUint32LEB128(uint32(len(funcTypes)))
		if err != nil {
			return err
		}

		for _, funcType := range funcTypes {
			err = w.writeFuncType(funcType)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// writeFuncType writes the function type
func (w *WASMWriter) writeFuncType(funcType *FunctionType) error {
	err := w.buf.WriteByte(functionTypeIndicator)
	if err != nil {
		return err
	}

	err = w.buf.writeUint32LEB128(uint32(len(funcType.Params)))
	if err != nil {
		return err
	}
	for _, paramType := range funcType.Params {
		err = paramType.write(w)
		if err != nil {
			return err
		}
	}

	err = w.buf.writeUint32LEB128(uint32(len(funcType.Results)))
	if err != nil {
		return err
	}
	for _, resultType := range funcType.Results {
		err = resultType.write(w)
		if err != nil {
			return err
		}
	}

	return nil
}

// writeImportSection writes the section which declares all imports
func (w *WASMWriter) writeImportSection(imports []*Import) error {
	return w.writeSection(sectionIDImport, func() error {
		err := w.buf.writeUint32LEB128(uint32(len(imports)))
		if err != nil {
			return err
		}

		for _, imp := range imports {
			err = w.writeImport(imp)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// writeImport writes the import
func (w *WASMWriter) writeImport(imp *Import) error {
	err := w.writeName(imp.Module)
	if err != nil {
		return err
	}

	err = w.writeName(imp.Name)
	if err != nil {
		return err
	}

	// TODO: add support for tables, memories, and globals
	err = w.buf.WriteByte(importIndicatorFunction)
	if err != nil {
		return err
	}

	return w.buf.writeUint32LEB128(imp.TypeIndex)
}

// writeFunctionSection writes the section which declares the type index
// of each function defined in the module
func (w *WASMWriter) writeFunctionSection(functions []*Function) error {
	return w.writeSection(sectionIDFunction, func() error {
		err := w.buf.writeUint32LEB128(uint32(len(functions)))
		if err != nil {
			return err
		}

		for _, function := range functions {
			err = w.buf.writeUint32LEB128(function.TypeIndex)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// writeMemorySection writes the section which declares all memories
func (w *WASMWriter) writeMemorySection(memories []*Memory) error {
	return w.writeSection(sectionIDMemory, func() error {
		err := w.buf.writeUint32LEB128(uint32(len(memories)))
		if err != nil {
			return err
		}

		for _, memory := range memories {
			err = w.writeMemory(memory)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// writeMemory writes the memory's limits
func (w *WASMWriter) writeMemory(memory *Memory) error {
	indicator := limitIndicatorNoMax
	if memory.Max != nil {
		indicator = limitIndicatorMax
	}

	err := w.buf.WriteByte(byte(indicator))
	if err != nil {
		return err
	}

	err = w.buf.writeUint32LEB128(memory.Min)
	if err != nil {
		return err
	}

	if memory.Max != nil {
		err = w.buf.writeUint32LEB128(*memory.Max)
		if err != nil {
			return err
		}
	}

	return nil
}

// writeExportSection writes the section which declares all exports
func (w *WASMWriter) writeExportSection(exports []*Export) error {
	return w.writeSection(sectionIDExport, func() error {
		err := w.buf.writeUint32LEB128(uint32(len(exports)))
		if err != nil {
			return err
		}

		for _, export := range exports {
			err = w.writeExport(export)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// writeExport writes the export
func (w *WASMWriter) writeExport(export *Export) error {
	err := w.writeName(export.Name)
	if err != nil {
		return err
	}

	var indicator exportIndicator
	var index uint32

	switch descriptor := export.Descriptor.(type) {
	case FunctionExport:
		indicator = exportIndicatorFunction
		index = descriptor.FunctionIndex
	case MemoryExport:
		indicator = exportIndicatorMemory
		index = descriptor.MemoryIndex
	default:
		return InvalidExportDescriptorError{
			Descriptor: export.Descriptor,
		}
	}

	err = w.buf.WriteByte(byte(indicator))
	if err != nil {
		return err
	}

	return w.buf.writeUint32LEB128(index)
}

// writeCodeSection writes the section which provides the body
// of each function declared in the module
func (w *WASMWriter) writeCodeSection(functions []*Function) error {
	return w.writeSection(sectionIDCode, func() error {
		err := w.buf.writeUint32LEB128(uint32(len(functions)))
		if err != nil {
			return err
		}

		for _, function := range functions {
			err := w.writeFunctionBody(function.Code)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// writeFunctionBody writes the body of the function
func (w *WASMWriter) writeFunctionBody(code *Code) error {
	return w.writeContentWithSize(func() error {

		// write the number of locals
		err := w.buf.writeUint32LEB128(uint32(len(code.Locals)))
		if err != nil {
			return err
		}

		// TODO: run-length encode equally-typed neighbouring locals
		for _, localValType := range code.Locals {
			err = w.buf.writeUint32LEB128(1)
			if err != nil {
				return err
			}

			err = localValType.write(w)
			if err != nil {
				return err
			}
		}

		err = w.writeInstructions(code.Instructions)
		if err != nil {
			return err
		}

		return w.buf.WriteByte(opcodeEnd)
	})
}

// writeInstructions writes an instruction sequence
func (w *WASMWriter) writeInstructions(instructions []Instruction) error {
	for _, instruction := range instructions {
		err := instruction.write(w)
		if err != nil {
			return err
		}
	}
	return nil
}

// writeDataSection writes the section which declares all data segments
func (w *WASMWriter) writeDataSection(segments []*Data) error {
	return w.writeSection(sectionIDData, func() error {
		err := w.buf.writeUint32LEB128(uint32(len(segments)))
		if err != nil {
			return err
		}

		for _, segment := range segments {
			err = w.writeDataSegment(segment)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// writeDataSegment writes the data segment
func (w *WASMWriter) writeDataSegment(segment *Data) error {
	err := w.buf.writeUint32LEB128(segment.MemoryIndex)
	if err != nil {
		return err
	}

	err = w.writeInstructions(segment.Offset)
	if err != nil {
		return err
	}

	err = w.buf.WriteByte(opcodeEnd)
	if err != nil {
		return err
	}

	err = w.buf.writeUint32LEB128(uint32(len(segment.Init)))
	if err != nil {
		return err
	}

	return w.buf.WriteBytes(segment.Init)
}

// writeName writes a name, a UTF-8 byte sequence prefixed with its byte size
func (w *WASMWriter) writeName(name string) error {
	if !utf8.ValidString(name) {
		return InvalidNonUTF8NameError{
			Name:   name,
			Offset: int(w.buf.offset),
		}
	}

	err := w.buf.writeUint32LEB128(uint32(len(name)))
	if err != nil {
		return err
	}

	return w.buf.WriteBytes([]byte(name))
}

// writeNameSection writes the custom section which provides the names
// of the module and its functions. The contents are not needed for
// execution, they are only a debugging aid
func (w *WASMWriter) writeNameSection(moduleName string, imports []*Import, functions []*Function) error {
	return w.writeSection(sectionIDCustom, func() error {
		err := w.writeName("name")
		if err != nil {
			return err
		}

		err = w.writeNameSubSectionModuleName(moduleName)
		if err != nil {
			return err
		}

		return w.writeNameSubSectionFunctionNames(imports, functions)
	})
}

// writeNameSubSectionModuleName writes the module-name sub-section
func (w *WASMWriter) writeNameSubSectionModuleName(moduleName string) error {
	err := w.buf.WriteByte(byte(nameSubSectionIDModuleName))
	if err != nil {
		return err
	}

	return w.writeContentWithSize(func() error {
		return w.writeName(moduleName)
	})
}

// writeNameSubSectionFunctionNames writes the function-names sub-section.
// Function indices include the imported functions, so the imports' names
// are written first, using their two-part name
func (w *WASMWriter) writeNameSubSectionFunctionNames(imports []*Import, functions []*Function) error {
	err := w.buf.WriteByte(byte(nameSubSectionIDFunctionNames))
	if err != nil {
		return err
	}

	return w.writeContentWithSize(func() error {
		err := w.buf.writeUint32LEB128(uint32(len(imports) + len(functions)))
		if err != nil {
			return err
		}

		var index uint32

		for _, imp := range imports {
			err = w.buf.writeUint32LEB128(index)
			if err != nil {
				return err
			}
			index++

			err = w.writeName(imp.FullName())
			if err != nil {
				return err
			}
		}

		for _, function := range functions {
			err = w.buf.writeUint32LEB128(index)
			if err != nil {
				return err
			}
			index++

			err = w.writeName(function.Name)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

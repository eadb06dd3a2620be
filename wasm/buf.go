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

type offset int

// Buffer is a byte buffer, which allows writing at arbitrary offsets:
// section sizes are patched in after the section contents are written.
type Buffer struct {
	data   []byte
	offset offset
}

func (buf *Buffer) WriteByte(b byte) error {
	if buf.offset < offset(len(buf.data)) {
		buf.data[buf.offset] = b
	} else {
		buf.data = append(buf.data, b)
	}
	buf.offset++
	return nil
}

func (buf *Buffer) WriteBytes(data []byte) error {
	for _, b := range data {
		err := buf.WriteByte(b)
		if err != nil {
			return err
		}
	}
	return nil
}

func (buf *Buffer) Bytes() []byte {
	return buf.data
}

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
	"encoding/hex"
	"fmt"
	"strings"
)

// Values render in Clarity source notation.

func (v IntValue) String() string {
	return v.Value.String()
}

func (v UIntValue) String() string {
	return fmt.Sprintf("u%s", v.Value)
}

func (v BoolValue) String() string {
	if v {
		return "true"
	}
	return "false"
}

func (v BufferValue) String() string {
	return fmt.Sprintf("0x%s", hex.EncodeToString(v))
}

func (v StringValue) String() string {
	return fmt.Sprintf("%q", string(v))
}

func (v PrincipalValue) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "(principal %d 0x%s", v.Version, hex.EncodeToString(v.Hash[:]))
	if v.Name != "" {
		_, _ = fmt.Fprintf(&sb, " %s", v.Name)
	}
	sb.WriteByte(')')
	return sb.String()
}

func (NoneValue) String() string {
	return "none"
}

func (v SomeValue) String() string {
	return fmt.Sprintf("(some %s)", v.Inner)
}

func (v TupleValue) String() string {
	var sb strings.Builder
	sb.WriteString("(tuple")
	for _, field := range v.Fields {
		_, _ = fmt.Fprintf(&sb, " (%s %s)", field.Name, field.Value)
	}
	sb.WriteByte(')')
	return sb.String()
}

func (v ListValue) String() string {
	var sb strings.Builder
	sb.WriteString("(list")
	for _, element := range v {
		_, _ = fmt.Fprintf(&sb, " %s", element)
	}
	sb.WriteByte(')')
	return sb.String()
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoChain(t *testing.T) {

	t.Parallel()

	chain := demoChain()

	require.NotEmpty(t, chain.Blocks)
	require.Len(t, chain.BurnBlocks, len(chain.Blocks))

	// the miner address is derived, not left zeroed
	var zeroHash [20]byte
	assert.NotEqual(t, zeroHash, chain.Blocks[0].MinerAddress.Hash)

	// block hashes are distinct per height
	seen := map[[32]byte]struct{}{}
	for _, block := range chain.Blocks {
		_, dup := seen[block.IDHeaderHash]
		assert.False(t, dup)
		seen[block.IDHeaderHash] = struct{}{}
	}

	// block times advance monotonically
	for i := 1; i < len(chain.Blocks); i++ {
		assert.Greater(t, chain.Blocks[i].Time, chain.Blocks[i-1].Time)
	}
}

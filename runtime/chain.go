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
)

// A BlockRecord holds the metadata of one simulated Stacks block.
// Zero values are valid: a default record answers every property,
// e.g. with an all-zero hash or a zero reward.
type BlockRecord struct {
	Time             uint64
	HeaderHash       [32]byte
	IDHeaderHash     [32]byte
	MinerAddress     PrincipalValue
	BlockReward      *big.Int
	MinerSpendTotal  *big.Int
	MinerSpendWinner *big.Int

	// BurnchainHeaderHash is the hash of the burnchain block
	// the Stacks block was mined in
	BurnchainHeaderHash [32]byte
}

// A PoxAddr is one reward address of a burnchain block
type PoxAddr struct {
	HashBytes []byte
	Version   byte
}

// A BurnBlockRecord holds the metadata of one simulated burnchain block
type BurnBlockRecord struct {
	HeaderHash [32]byte
	PoxAddrs   []PoxAddr
	Payout     *big.Int
}

// A Chain is a simulated chain: one record per block height,
// starting at height 0
type Chain struct {
	Blocks     []BlockRecord
	BurnBlocks []BurnBlockRecord
}

// BlockAt returns the block at the given height, as seen from the given
// view height. Blocks after the view, or heights the chain has not
// reached, do not exist.
func (c *Chain) BlockAt(height uint64, view uint64) (BlockRecord, bool) {
	if height > view || height >= uint64(len(c.Blocks)) {
		return BlockRecord{}, false
	}
	return c.Blocks[height], true
}

// BurnBlockAt is BlockAt for the burnchain
func (c *Chain) BurnBlockAt(height uint64, view uint64) (BurnBlockRecord, bool) {
	if height > view || height >= uint64(len(c.BurnBlocks)) {
		return BurnBlockRecord{}, false
	}
	return c.BurnBlocks[height], true
}

// HeightOf resolves an id-header-hash back to a block height,
// for entering a historical view
func (c *Chain) HeightOf(idHeaderHash []byte) (uint64, bool) {
	for height, block := range c.Blocks {
		if string(block.IDHeaderHash[:]) == string(idHeaderHash) {
			return uint64(height), true
		}
	}
	return 0, false
}

// Tip returns the height of the last block
func (c *Chain) Tip() uint64 {
	if len(c.Blocks) == 0 {
		return 0
	}
	return uint64(len(c.Blocks) - 1)
}

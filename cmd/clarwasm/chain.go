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
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/stacks-network/clarwasm/runtime"
)

// demoChain builds the deterministic simulated chain the `run` command
// executes against: a handful of blocks with derived hashes,
// ten-minute block times, and a fixed miner.
func demoChain() *runtime.Chain {
	const blockCount = 8
	const genesisTime = 1_600_000_000

	var miner runtime.PrincipalValue
	miner.Version = 26
	minerHash := deriveHash("miner")
	copy(miner.Hash[:], minerHash[:20])

	chain := &runtime.Chain{}

	for height := uint64(0); height < blockCount; height++ {
		var block runtime.BlockRecord
		block.Time = genesisTime + height*600
		block.HeaderHash = deriveHash("header", height)
		block.IDHeaderHash = deriveHash("id-header", height)
		block.BurnchainHeaderHash = deriveHash("burnchain-header", height)
		block.MinerAddress = miner
		block.BlockReward = big.NewInt(1_000_000_000)
		block.MinerSpendTotal = big.NewInt(2_000_000)
		block.MinerSpendWinner = big.NewInt(1_000_000)
		chain.Blocks = append(chain.Blocks, block)

		var burnBlock runtime.BurnBlockRecord
		burnBlock.HeaderHash = deriveHash("burn-header", height)
		burnBlock.Payout = big.NewInt(500_000)
		payoutHash := deriveHash("pox", height)
		burnBlock.PoxAddrs = []runtime.PoxAddr{
			{
				HashBytes: payoutHash[:20],
				Version:   0,
			},
		}
		chain.BurnBlocks = append(chain.BurnBlocks, burnBlock)
	}

	return chain
}

func deriveHash(label string, counters ...uint64) [32]byte {
	h := sha256.New()
	h.Write([]byte(label))
	for _, counter := range counters {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], counter)
		h.Write(buf[:])
	}
	var hash [32]byte
	copy(hash[:], h.Sum(nil))
	return hash
}

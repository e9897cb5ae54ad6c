package models

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// BlockRange is an inclusive span of block numbers.
type BlockRange struct {
	FromBlock int64
	ToBlock   int64
}

func (r BlockRange) Size() int64 {
	return r.ToBlock - r.FromBlock + 1
}

// Split cuts the range into consecutive sub-ranges of at most maxSize blocks, in ascending order.
func (r BlockRange) Split(maxSize int64) []BlockRange {
	if maxSize <= 0 {
		maxSize = 1
	}
	ranges := make([]BlockRange, 0, (r.Size()+maxSize-1)/maxSize)
	for cursor := r.FromBlock; cursor <= r.ToBlock; {
		end := min(r.ToBlock, cursor+maxSize-1)
		ranges = append(ranges, BlockRange{FromBlock: cursor, ToBlock: end})
		cursor = end + 1
	}
	return ranges
}

type RawLog struct {
	Address          common.Address `json:"address"`
	Topics           []common.Hash  `json:"topics"`
	Data             hexutil.Bytes  `json:"data"`
	BlockNumber      hexutil.Uint64 `json:"blockNumber"`
	BlockHash        common.Hash    `json:"blockHash"`
	TransactionHash  common.Hash    `json:"transactionHash"`
	TransactionIndex hexutil.Uint64 `json:"transactionIndex"`
	LogIndex         hexutil.Uint64 `json:"logIndex"`
	Removed          bool           `json:"removed"`
}

// RawBlock is the header subset of eth_getBlockByNumber(number, false) that the decoder needs.
type RawBlock struct {
	Number     hexutil.Uint64 `json:"number"`
	Hash       common.Hash    `json:"hash"`
	ParentHash common.Hash    `json:"parentHash"`
	Timestamp  hexutil.Uint64 `json:"timestamp"`
}

type RawTransaction struct {
	Hash             common.Hash     `json:"hash"`
	From             common.Address  `json:"from"`
	To               *common.Address `json:"to"`
	Input            hexutil.Bytes   `json:"input"`
	BlockNumber      hexutil.Uint64  `json:"blockNumber"`
	TransactionIndex hexutil.Uint64  `json:"transactionIndex"`
}

// ChunkResult is the raw fetch output for one block range.
type ChunkResult struct {
	Range        BlockRange
	Logs         []RawLog
	Blocks       map[int64]RawBlock
	Transactions map[common.Hash]RawTransaction
}

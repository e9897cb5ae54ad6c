package decoder

import (
	"cmp"
	"maps"
	"slices"

	"github.com/railgun-community/railgun-ingester/models"
)

// Block groups the logs and transactions of one block height, in chain order.
type Block struct {
	Number int64
	// Timestamp is in seconds, zero when the header was not fetched.
	Timestamp    int64
	Logs         []models.RawLog
	Transactions []models.RawTransaction
}

// ConvertChunk groups a fetched chunk by block. Blocks come out in ascending order, logs sorted
// by log index and transactions by transaction index. Only heights referenced by a log or a
// transaction appear.
func ConvertChunk(chunk models.ChunkResult) []Block {
	byNumber := make(map[int64]*Block)
	block := func(number int64) *Block {
		b, ok := byNumber[number]
		if !ok {
			b = &Block{Number: number}
			if raw, found := chunk.Blocks[number]; found {
				b.Timestamp = int64(raw.Timestamp)
			}
			byNumber[number] = b
		}
		return b
	}

	for _, log := range chunk.Logs {
		b := block(int64(log.BlockNumber))
		b.Logs = append(b.Logs, log)
	}
	for _, tx := range chunk.Transactions {
		b := block(int64(tx.BlockNumber))
		b.Transactions = append(b.Transactions, tx)
	}

	numbers := slices.Sorted(maps.Keys(byNumber))
	blocks := make([]Block, 0, len(numbers))
	for _, number := range numbers {
		b := byNumber[number]
		slices.SortStableFunc(b.Logs, func(x, y models.RawLog) int {
			return cmp.Compare(x.LogIndex, y.LogIndex)
		})
		slices.SortFunc(b.Transactions, func(x, y models.RawTransaction) int {
			return cmp.Compare(x.TransactionIndex, y.TransactionIndex)
		})
		blocks = append(blocks, *b)
	}
	return blocks
}

package decoder_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/railgun-community/railgun-ingester/decoder"
	"github.com/railgun-community/railgun-ingester/models"
	"github.com/stretchr/testify/require"
)

func TestEventTopics(t *testing.T) {
	require.Equal(t, []common.Hash{
		common.HexToHash("0x78b6af109cf8ed292e957cdc2975e50bfd37995f5c38d35dc10e2ed0007cbd09"), // Nullifiers
		common.HexToHash("0x781745c57906dc2f175fec80a9c691744c91c48a34a83672c41c2604774eb11f"), // Nullified
		common.HexToHash("0xc82d23263b236b692a8094d858e0831328f26cd9bcd5127d91c9299036cb9de9"), // CommitmentBatch
		common.HexToHash("0xf75eaa09da191ca634619d229eaa2a62f3f30b79ef6e9a0a2cb33ae1dc07d71c"), // GeneratedCommitmentBatch
		common.HexToHash("0x56a618cda1e34057b7f849a5792f6c8587a2dbe11c83d0254e72cb3daffda7d1"), // Transact
		common.HexToHash("0xd93cf895c7d5b2cd7dc7a098b678b3089f37d91f48d9b83a0800a91cbdf05284"), // Unshield
		common.HexToHash("0xc3821e11e71307afd1d94a490660178ff37aefdd3c0514e5dd08937bd7024f34"), // Shield
		common.HexToHash("0x3a5b9dc26075a3801a6ddccf95fec485bb7500a91b44cec1add984c21ee6db3b"), // Shield with fees
	}, decoder.EventTopics())

	current, legacy := decoder.TransactSelectors()
	require.Equal(t, "0xd8ae136a", hexutil.Encode(current))
	require.Equal(t, "0x4489999c", hexutil.Encode(legacy))
}

func TestConvertChunk(t *testing.T) {
	txA := common.HexToHash("0xa")
	txB := common.HexToHash("0xb")
	txC := common.HexToHash("0xc")

	chunk := models.ChunkResult{
		Range: models.BlockRange{FromBlock: 1, ToBlock: 10},
		Logs: []models.RawLog{
			{BlockNumber: 5, LogIndex: 3, TransactionHash: txB, Topics: []common.Hash{{1}}},
			{BlockNumber: 2, LogIndex: 0, TransactionHash: txA},
			{BlockNumber: 5, LogIndex: 1, TransactionHash: txB, Topics: []common.Hash{{2}}},
		},
		Blocks: map[int64]models.RawBlock{
			2: {Number: 2, Timestamp: 1000},
			5: {Number: 5, Timestamp: 1012},
		},
		Transactions: map[common.Hash]models.RawTransaction{
			txA: {Hash: txA, BlockNumber: 2, TransactionIndex: 0},
			txB: {Hash: txB, BlockNumber: 5, TransactionIndex: 7},
			txC: {Hash: txC, BlockNumber: 5, TransactionIndex: 2},
		},
	}

	blocks := decoder.ConvertChunk(chunk)
	require.Len(t, blocks, 2)

	require.Equal(t, int64(2), blocks[0].Number)
	require.Equal(t, int64(1000), blocks[0].Timestamp)
	require.Len(t, blocks[0].Logs, 1)
	require.Len(t, blocks[0].Transactions, 1)

	require.Equal(t, int64(5), blocks[1].Number)
	require.Equal(t, int64(1012), blocks[1].Timestamp)
	require.Equal(t, hexutil.Uint64(1), blocks[1].Logs[0].LogIndex)
	require.Equal(t, hexutil.Uint64(3), blocks[1].Logs[1].LogIndex)
	require.Equal(t, txC, blocks[1].Transactions[0].Hash)
	require.Equal(t, txB, blocks[1].Transactions[1].Hash)
}

func TestConvertChunkMissingHeader(t *testing.T) {
	chunk := models.ChunkResult{
		Logs:   []models.RawLog{{BlockNumber: 9}},
		Blocks: map[int64]models.RawBlock{},
	}
	blocks := decoder.ConvertChunk(chunk)
	require.Len(t, blocks, 1)
	require.Zero(t, blocks[0].Timestamp)
}

func TestConvertChunkEmpty(t *testing.T) {
	require.Empty(t, decoder.ConvertChunk(models.ChunkResult{Range: models.BlockRange{FromBlock: 1, ToBlock: 100}}))
}

package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-errors/errors"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/railgun-community/railgun-ingester/lib/hexutils"
	"github.com/railgun-community/railgun-ingester/models"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

//go:generate moq -out ../../mocks/jsonrpc/client.go -pkg jsonrpc_mock . BlockchainClient HTTPClient

type BlockchainClient interface {
	LatestBlockNumber(ctx context.Context) (int64, error)

	// GetLogs returns the logs matching the filter, in node order.
	GetLogs(ctx context.Context, filter LogFilter) ([]models.RawLog, error)

	// BlocksByNumber fetches block headers in one batch call. Blocks the node does not know are left out.
	BlocksByNumber(ctx context.Context, blockNumbers []int64) (map[int64]models.RawBlock, error)

	// TransactionsByHash fetches transactions in one batch call. Unknown hashes are left out.
	TransactionsByHash(ctx context.Context, hashes []common.Hash) (map[common.Hash]models.RawTransaction, error)

	// CallContract runs one eth_call per calldata entry against the latest block, in one batch call.
	CallContract(ctx context.Context, to common.Address, calldata [][]byte) ([][]byte, error)

	Label() string
	Close() error
}

const (
	MaxRetries            = 2
	DefaultRequestTimeout = 20 * time.Second
	maxErrorBodyLength    = 512
)

type Client struct {
	httpClient HTTPClient
	cfg        Config
	log        *slog.Logger
	bufPool    *sync.Pool
	decoder    *zstd.Decoder
	limiter    *rate.Limiter
	slots      *semaphore.Weighted
	counter    atomic.Uint64
}

var _ BlockchainClient = &Client{}

// NewClient returns a client for one endpoint. When httpClient is nil a retryable client is built
// from the config.
func NewClient(log *slog.Logger, httpClient HTTPClient, cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("jsonrpc: URL is required")
	}
	if cfg.Label == "" {
		cfg.Label = cfg.URL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultRequestTimeout
	}
	log = log.With("module", "jsonrpc", "provider", cfg.Label)
	if httpClient == nil {
		httpClient = NewHTTPClient(log, cfg.Timeout)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}
	c := &Client{
		httpClient: httpClient,
		cfg:        cfg,
		log:        log,
		decoder:    decoder,
		bufPool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
	if cfg.MaxRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRPS), max(1, int(cfg.MaxRPS)))
	}
	if cfg.MaxConcurrency > 0 {
		c.slots = semaphore.NewWeighted(cfg.MaxConcurrency)
	}
	return c, nil
}

func (c *Client) Label() string {
	return c.cfg.Label
}

// Call sends a single request and decodes its result into result, which may be nil.
func (c *Client) Call(ctx context.Context, method string, params []any, result any) error {
	if params == nil {
		params = []any{}
	}
	req := Request{JSONRPC: "2.0", ID: c.nextID(), Method: method, Params: params}
	var resp Response
	if err := c.send(ctx, method, req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return errors.Errorf("failed to decode result of %s: %w", method, err)
	}
	return nil
}

// Batch sends all requests as one wire batch and returns the responses in request order.
// Entries that carry a JSON-RPC error are returned as is; a missing entry fails the whole batch.
func (c *Client) Batch(ctx context.Context, requests []BatchRequest) ([]Response, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	payload := make([]Request, len(requests))
	for i, r := range requests {
		params := r.Params
		if params == nil {
			params = []any{}
		}
		payload[i] = Request{JSONRPC: "2.0", ID: c.nextID(), Method: r.Method, Params: params}
	}
	method := "batch:" + requests[0].Method

	var raw json.RawMessage
	if err := c.send(ctx, method, payload, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		// some providers reject a whole batch with a single error object
		var single Response
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, errors.Errorf("failed to decode %s response: %w", method, err)
		}
		if single.Error != nil {
			return nil, single.Error
		}
		return nil, errors.Errorf("unexpected single response to %s", method)
	}
	var responses []Response
	if err := json.Unmarshal(raw, &responses); err != nil {
		return nil, errors.Errorf("failed to decode %s response: %w", method, err)
	}
	byID := make(map[string]Response, len(responses))
	for _, r := range responses {
		byID[r.ID] = r
	}
	ordered := make([]Response, len(payload))
	for i, p := range payload {
		r, ok := byID[p.ID]
		if !ok {
			return nil, errors.Errorf("%w: request %s (%s)", ErrMissingBatchResponse, p.ID, p.Method)
		}
		ordered[i] = r
	}
	return ordered, nil
}

func (c *Client) LatestBlockNumber(ctx context.Context) (int64, error) {
	var blockNumberHex string
	if err := c.Call(ctx, "eth_blockNumber", nil, &blockNumberHex); err != nil {
		return 0, err
	}
	return hexutils.IntFromHex(blockNumberHex)
}

func (c *Client) GetLogs(ctx context.Context, filter LogFilter) ([]models.RawLog, error) {
	var logs []models.RawLog
	if err := c.Call(ctx, "eth_getLogs", filter.params(), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Client) BlocksByNumber(ctx context.Context, blockNumbers []int64) (map[int64]models.RawBlock, error) {
	requests := make([]BatchRequest, len(blockNumbers))
	for i, n := range blockNumbers {
		requests[i] = BatchRequest{Method: "eth_getBlockByNumber", Params: []any{hexutils.ToQuantity(n), false}}
	}
	responses, err := c.Batch(ctx, requests)
	if err != nil {
		return nil, err
	}
	blocks := make(map[int64]models.RawBlock, len(responses))
	for i, res := range responses {
		if res.Error != nil {
			return nil, res.Error
		}
		if isNull(res.Result) {
			continue
		}
		var block models.RawBlock
		if err := json.Unmarshal(res.Result, &block); err != nil {
			return nil, errors.Errorf("failed to decode block %d: %w", blockNumbers[i], err)
		}
		blocks[blockNumbers[i]] = block
	}
	return blocks, nil
}

func (c *Client) TransactionsByHash(
	ctx context.Context, hashes []common.Hash,
) (map[common.Hash]models.RawTransaction, error) {
	requests := make([]BatchRequest, len(hashes))
	for i, h := range hashes {
		requests[i] = BatchRequest{Method: "eth_getTransactionByHash", Params: []any{h.Hex()}}
	}
	responses, err := c.Batch(ctx, requests)
	if err != nil {
		return nil, err
	}
	txs := make(map[common.Hash]models.RawTransaction, len(responses))
	for i, res := range responses {
		if res.Error != nil {
			return nil, res.Error
		}
		if isNull(res.Result) {
			continue
		}
		var tx models.RawTransaction
		if err := json.Unmarshal(res.Result, &tx); err != nil {
			return nil, errors.Errorf("failed to decode transaction %s: %w", hashes[i].Hex(), err)
		}
		txs[hashes[i]] = tx
	}
	return txs, nil
}

func (c *Client) CallContract(ctx context.Context, to common.Address, calldata [][]byte) ([][]byte, error) {
	requests := make([]BatchRequest, len(calldata))
	for i, data := range calldata {
		call := map[string]any{"to": to.Hex(), "data": hexutil.Encode(data)}
		requests[i] = BatchRequest{Method: "eth_call", Params: []any{call, "latest"}}
	}
	responses, err := c.Batch(ctx, requests)
	if err != nil {
		return nil, err
	}
	results := make([][]byte, len(responses))
	for i, res := range responses {
		if res.Error != nil {
			return nil, res.Error
		}
		var out hexutil.Bytes
		if err := json.Unmarshal(res.Result, &out); err != nil {
			return nil, errors.Errorf("failed to decode eth_call result: %w", err)
		}
		results[i] = out
	}
	return results, nil
}

// send posts payload and decodes the (possibly compressed) body into output.
func (c *Client) send(ctx context.Context, method string, payload any, output any) error {
	buf := c.bufPool.Get().(*bytes.Buffer)
	defer c.bufPool.Put(buf)
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, buf.Bytes())
	if err != nil {
		return err
	}
	req.Header = c.cfg.header()

	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	t0 := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRPCRequestErr(err, c.cfg.Label, method, t0)
		return errors.Errorf("%w: failed to send request for method %s: %w", ErrTransport, method, err)
	}
	defer resp.Body.Close()
	observeRPCRequestCode(resp.StatusCode, c.cfg.Label, method, t0)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		return &HTTPError{StatusCode: resp.StatusCode, Method: method, Body: string(body)}
	}

	buf.Reset()
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return errors.Errorf("%w: failed to read response body for method %s: %w", ErrTransport, method, err)
	}
	body, err := c.decompress(resp.Header.Get("Content-Encoding"), buf.Bytes())
	if err != nil {
		return errors.Errorf("failed to decompress response for method %s: %w", method, err)
	}
	if err := json.Unmarshal(body, output); err != nil {
		return errors.Errorf("failed to decode response for method %s: %w", method, err)
	}
	c.log.Debug("jsonRPC request", "method", method, "duration", time.Since(t0), "bytes", len(body))
	return nil
}

func (c *Client) decompress(encoding string, body []byte) ([]byte, error) {
	switch encoding {
	case "", "identity":
		return body, nil
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case "zstd":
		return c.decoder.DecodeAll(body, nil)
	}
	return nil, fmt.Errorf("unsupported content encoding %q", encoding)
}

// acquire waits for the per-endpoint rate limit and concurrency slot.
func (c *Client) acquire(ctx context.Context) (func(), error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.slots == nil {
		return func() {}, nil
	}
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { c.slots.Release(1) }, nil
}

func (c *Client) nextID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + strconv.FormatUint(c.counter.Add(1), 10)
}

func (c *Client) Close() error {
	c.decoder.Close()
	return nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

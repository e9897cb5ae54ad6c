package jsonrpc

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/railgun-community/railgun-ingester/lib/hexutils"
)

type Config struct {
	URL         string
	Label       string
	Timeout     time.Duration
	HTTPHeaders map[string]string
	// MaxRPS limits requests per second sent to the endpoint, zero is unlimited.
	MaxRPS float64
	// MaxConcurrency limits in-flight HTTP requests, zero is unlimited.
	MaxConcurrency int64
}

type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// BatchRequest is one entry of a batch call; ids are assigned by the client.
type BatchRequest struct {
	Method string
	Params []any
}

// LogFilter selects the logs of one contract whose topic-0 is in Topics.
type LogFilter struct {
	FromBlock int64
	ToBlock   int64
	Address   string
	Topics    []string
}

func (f LogFilter) params() []any {
	return []any{map[string]any{
		"fromBlock": hexutils.ToQuantity(f.FromBlock),
		"toBlock":   hexutils.ToQuantity(f.ToBlock),
		"address":   f.Address,
		"topics":    []any{f.Topics},
	}}
}

func (c Config) header() http.Header {
	h := make(http.Header, len(c.HTTPHeaders)+2)
	h.Set("Content-Type", "application/json")
	h.Set("Accept-Encoding", "gzip, zstd")
	for k, v := range c.HTTPHeaders {
		h.Set(k, v)
	}
	return h
}

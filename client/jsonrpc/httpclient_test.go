package jsonrpc_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/railgun-community/railgun-ingester/client/jsonrpc"
	jsonrpc_mock "github.com/railgun-community/railgun-ingester/mocks/jsonrpc"
)

type jsonRPCRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type jsonRPCResponse struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      string            `json:"id"`
	Result  any               `json:"result,omitempty"`
	Error   *jsonrpc.RPCError `json:"error,omitempty"`
}

// RPCHandler answers one decoded request. Returning skip drops the entry from a batch response.
type RPCHandler func(method string, params []any) (result any, rpcErr *jsonrpc.RPCError, skip bool)

func jsonBody(v any) *http.Response {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func MockHTTPRequests(handler RPCHandler) *jsonrpc_mock.HTTPClientMock {
	// helper function to setup a mock http client that echoes request ids
	// and answers every entry of single or batch requests through handler
	return &jsonrpc_mock.HTTPClientMock{
		DoFunc: func(req *retryablehttp.Request) (*http.Response, error) {
			if req.Method != http.MethodPost {
				return nil, fmt.Errorf("expected POST method, got %s", req.Method)
			}
			body, err := req.BodyBytes()
			if err != nil {
				return nil, err
			}
			body = bytes.TrimSpace(body)
			answer := func(r jsonRPCRequest) (jsonRPCResponse, bool) {
				result, rpcErr, skip := handler(r.Method, r.Params)
				return jsonRPCResponse{JSONRPC: "2.0", ID: r.ID, Result: result, Error: rpcErr}, skip
			}
			if len(body) > 0 && body[0] == '[' {
				var batch []jsonRPCRequest
				if err := json.Unmarshal(body, &batch); err != nil {
					return nil, err
				}
				responses := make([]jsonRPCResponse, 0, len(batch))
				// reversed so that callers have to correlate by id
				for i := len(batch) - 1; i >= 0; i-- {
					resp, skip := answer(batch[i])
					if !skip {
						responses = append(responses, resp)
					}
				}
				return jsonBody(responses), nil
			}
			var single jsonRPCRequest
			if err := json.Unmarshal(body, &single); err != nil {
				return nil, err
			}
			resp, _ := answer(single)
			return jsonBody(resp), nil
		},
	}
}

func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func NewTestRPCClient(httpClient jsonrpc.HTTPClient) (*jsonrpc.Client, error) {
	return jsonrpc.NewClient(NewTestLogger(), httpClient, jsonrpc.Config{
		URL:   "http://localhost:8545",
		Label: "test",
	})
}

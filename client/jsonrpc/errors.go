package jsonrpc

import (
	"fmt"

	"github.com/go-errors/errors"
)

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("jsonrpc error %d: %s (%v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// HTTPError is returned when the endpoint answers with a non-200 status.
type HTTPError struct {
	StatusCode int
	Method     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("response for method %s has status code %d: %s", e.Method, e.StatusCode, e.Body)
}

var ErrMissingBatchResponse = errors.New("batch response missing entry")

// ErrTransport marks failures where no usable HTTP response was received.
var ErrTransport = errors.New("rpc transport failure")

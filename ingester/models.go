package ingester

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/railgun-community/railgun-ingester/models"
)

const maxRecentErrors = 100

type Info struct {
	ChainID             int64
	LatestBlockNumber   atomic.Int64
	IngestedBlockNumber atomic.Int64
	Errors              ErrorState
	since               atomic.Pointer[time.Time]
}

func NewInfo(chainID int64) *Info {
	info := &Info{
		ChainID: chainID,
		Errors: ErrorState{
			RPCErrors:     make([]ErrorInfo, 0, maxRecentErrors),
			PersistErrors: make([]ErrorInfo, 0, maxRecentErrors),
		},
	}
	now := time.Now()
	info.since.Store(&now)
	return info
}

func (info *Info) ToProgressReport() models.IngestProgress {
	info.Errors.mu.Lock()
	defer info.Errors.mu.Unlock()
	return models.IngestProgress{
		ChainID:                 info.ChainID,
		LastIngestedBlockNumber: info.IngestedBlockNumber.Load(),
		LatestBlockNumber:       info.LatestBlockNumber.Load(),
		Errors:                  info.Errors.progressReportErrors(),
		PersistErrorCounts:      info.Errors.PersistErrorCount,
		RPCErrorCounts:          info.Errors.RPCErrorCount,
		Since:                   *info.since.Load(),
	}
}

func (info *Info) ResetErrors() {
	now := time.Now()
	info.since.Store(&now)
	info.Errors.Reset()
}

// ErrorState keeps the most recent errors of each source. It is safe for concurrent use.
type ErrorState struct {
	mu                sync.Mutex
	RPCErrors         []ErrorInfo
	PersistErrors     []ErrorInfo
	RPCErrorCount     int
	PersistErrorCount int
}

type ErrorInfo struct {
	Timestamp    time.Time
	BlockNumbers string
	Provider     string
	Error        error
}

// progressReportErrors returns a combined list of RPC and persistence errors. Callers hold es.mu.
func (es *ErrorState) progressReportErrors() []models.IngestError {
	errors := make([]models.IngestError, 0, len(es.RPCErrors)+len(es.PersistErrors))
	for _, e := range es.RPCErrors {
		errors = append(errors, models.IngestError{
			Timestamp:    e.Timestamp,
			BlockNumbers: e.BlockNumbers,
			Error:        e.Error.Error(),
			Source:       "rpc",
		})
	}
	for _, e := range es.PersistErrors {
		errors = append(errors, models.IngestError{
			Timestamp:    e.Timestamp,
			BlockNumbers: e.BlockNumbers,
			Error:        e.Error.Error(),
			Source:       "persist",
		})
	}
	return errors
}

func (es *ErrorState) Reset() {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.RPCErrors = es.RPCErrors[:0]
	es.PersistErrors = es.PersistErrors[:0]
	es.RPCErrorCount = 0
	es.PersistErrorCount = 0
}

func (es *ErrorState) Counts() (rpcErrors int, persistErrors int) {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.RPCErrorCount, es.PersistErrorCount
}

func (es *ErrorState) ObserveRPCError(err ErrorInfo) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.RPCErrorCount++
	es.RPCErrors = appendBounded(es.RPCErrors, err)
}

func (es *ErrorState) ObservePersistError(err ErrorInfo) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.PersistErrorCount++
	es.PersistErrors = appendBounded(es.PersistErrors, err)
}

func appendBounded(errs []ErrorInfo, err ErrorInfo) []ErrorInfo {
	err.Timestamp = time.Now()

	// If we have filled the slice, remove the oldest error
	if len(errs) == cap(errs) {
		tmp := make([]ErrorInfo, len(errs)-1, cap(errs))
		copy(tmp, errs[1:])
		errs = tmp
	}
	return append(errs, err)
}

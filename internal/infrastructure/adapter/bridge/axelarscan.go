package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// AxelarscanConfig tunes the GMP status poller
type AxelarscanConfig struct {
	// BaseURL of the Axelarscan-style API, e.g. https://api.axelarscan.io
	BaseURL string
	// PollInterval paces the status lookups
	PollInterval core.Duration
	// RequestTimeout bounds each HTTP lookup
	RequestTimeout core.Duration
	// TransitEstimate is the expected end-to-end bridge time reported to
	// players
	TransitEstimate core.Duration
}

// DefaultAxelarscanConfig returns the production polling cadence
func DefaultAxelarscanConfig(baseURL string) AxelarscanConfig {
	return AxelarscanConfig{
		BaseURL:         baseURL,
		PollInterval:    5 * core.Second,
		RequestTimeout:  10 * core.Second,
		TransitEstimate: 20 * core.Minute,
	}
}

// AxelarscanTracker implements the BridgeTracker port by polling a GMP
// search endpoint. Lookup failures keep the poll alive; only a terminal
// bridge status or context cancellation ends a followed leg.
type AxelarscanTracker struct {
	cfg          AxelarscanConfig
	httpClient   *http.Client
	timeProvider core.TimeProvider
	logger       core.Logger
}

// NewAxelarscanTracker creates a GMP status poller
func NewAxelarscanTracker(cfg AxelarscanConfig, timeProvider core.TimeProvider, logger core.Logger) (*AxelarscanTracker, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: bridge api base url is required", errs.ErrValidation)
	}
	defaults := DefaultAxelarscanConfig(cfg.BaseURL)
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.TransitEstimate <= 0 {
		cfg.TransitEstimate = defaults.TransitEstimate
	}
	return &AxelarscanTracker{
		cfg:          cfg,
		httpClient:   &http.Client{},
		timeProvider: timeProvider,
		logger:       logger,
	}, nil
}

// Follow polls the GMP API until the transfer executes or fails
func (t *AxelarscanTracker) Follow(ctx context.Context, leg chainport.Leg) (<-chan chainport.Signal, error) {
	if leg.SourceTxHash == (common.Hash{}) {
		return nil, fmt.Errorf("%w: bridge leg has no source transaction", errs.ErrValidation)
	}
	ch := make(chan chainport.Signal, 2)
	go t.poll(ctx, leg, ch)
	return ch, nil
}

// EstimateTransit reports the expected bridge transit time
func (t *AxelarscanTracker) EstimateTransit(leg chainport.Leg) time.Duration {
	return t.cfg.TransitEstimate.Std()
}

func (t *AxelarscanTracker) poll(ctx context.Context, leg chainport.Leg, ch chan<- chainport.Signal) {
	defer close(ch)

	observed := false
	for {
		if ctx.Err() != nil {
			return
		}

		transfer, err := t.lookup(ctx, leg.SourceTxHash)
		switch {
		case err != nil:
			t.logger.Warn("bridge status lookup failed, polling again", map[string]any{
				"record_id": leg.RecordID,
				"tx_hash":   leg.SourceTxHash.Hex(),
				"error":     err.Error(),
			})
		case transfer == nil:
			// Not indexed yet.
		default:
			if !observed {
				observed = true
				ch <- chainport.Signal{Phase: chainport.PhaseSourceObserved}
				t.logger.Debug("bridge observed source transaction", map[string]any{
					"record_id": leg.RecordID,
					"tx_hash":   leg.SourceTxHash.Hex(),
					"status":    transfer.Status,
				})
			}

			switch transfer.Status {
			case "executed", "express_executed":
				if transfer.Executed == nil || transfer.Executed.TransactionHash == "" {
					// Executed but the indexer has not attached the
					// destination hash yet; poll once more.
					break
				}
				ch <- chainport.Signal{
					Phase:        chainport.PhaseDelivered,
					DeliveryHash: common.HexToHash(transfer.Executed.TransactionHash),
				}
				return
			case "error":
				ch <- chainport.Signal{
					Err: fmt.Errorf("%w: bridge reported destination execution failure", errs.ErrTransactionReverted),
				}
				return
			}
		}

		t.timeProvider.Sleep(t.cfg.PollInterval)
	}
}

type gmpSearchRequest struct {
	TxHash string `json:"txHash"`
	Size   int    `json:"size"`
}

type gmpSearchResponse struct {
	Data []gmpTransfer `json:"data"`
}

type gmpTransfer struct {
	Status   string       `json:"status"`
	Executed *gmpExecuted `json:"executed,omitempty"`
}

type gmpExecuted struct {
	TransactionHash string `json:"transactionHash"`
}

func (t *AxelarscanTracker) lookup(ctx context.Context, txHash common.Hash) (*gmpTransfer, error) {
	body, err := json.Marshal(gmpSearchRequest{TxHash: txHash.Hex(), Size: 1})
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := t.timeProvider.WithTimeout(ctx, t.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, t.cfg.BaseURL+"/gmp/searchGMP", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: bridge api returned status %d", errs.ErrNetwork, resp.StatusCode)
	}

	var out gmpSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode bridge response: %v", errs.ErrNetwork, err)
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	return &out.Data[0], nil
}

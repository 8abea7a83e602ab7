package orchestrator

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
)

// defaultGasLimit is charged against the source call when neither the
// request nor the chain client produced an estimate
const defaultGasLimit = 400_000

// runSubmission drives the synchronous leg of a fresh attempt: wallet
// confirmation, chain switch, call encoding, submission with bounded
// resubmission of transient failures, and the hand-off to the background
// follower. rec is the ledger's copy of the record being driven.
func (s *Service) runSubmission(ctx context.Context, rec *entity.TransactionRecord) (*uport.ActionResult, error) {
	route, err := entity.RouteFor(rec.Kind)
	if err != nil {
		return s.failNow(rec, err)
	}
	attempt := rec.RetryCount
	startedAt := s.timeProvider.Now()

	s.setStatus(rec.ID, attempt, entity.StatusWalletConfirm)

	if err := s.wallet.SwitchChain(ctx, route.SourceChain); err != nil {
		return s.failNow(rec, err)
	}

	call, err := s.buildCall(ctx, rec, route)
	if err != nil {
		return s.failNow(rec, err)
	}

	txHash, err := s.submitWithRetry(ctx, rec, call)
	if err != nil {
		return s.failNow(rec, errs.NewSubmissionError(
			rec.ID, string(rec.Kind), string(route.SourceChain), attempt, err))
	}

	s.ledger.AppendChainRef(rec.ID, attempt, route.SourceChain, txHash)
	if next, ok := route.NextPhase(entity.StatusWalletConfirm); ok {
		s.setStatus(rec.ID, attempt, next)
	}

	s.notifier.Push(entity.NotificationInfo,
		submittedTitle(rec.Kind), submittedMessage(rec.Kind, rec.Payload), false)
	s.logger.Info("call submitted", map[string]any{
		"record_id": rec.ID,
		"kind":      string(rec.Kind),
		"chain":     string(route.SourceChain),
		"tx_hash":   txHash.Hex(),
		"attempt":   attempt,
	})

	s.followWG.Add(1)
	go s.follow(followJob{
		recordID:  rec.ID,
		attempt:   attempt,
		kind:      rec.Kind,
		payload:   rec.Payload,
		route:     route,
		sourceTx:  txHash,
		startedAt: startedAt,
	})

	return &uport.ActionResult{Success: true, RecordID: rec.ID}, nil
}

// buildCall packs the contract call for the record's kind and settles its
// gas limit
func (s *Service) buildCall(ctx context.Context, rec *entity.TransactionRecord, route entity.Route) (chainport.ContractCall, error) {
	to, err := s.contracts.addressFor(route.SourceChain)
	if err != nil {
		return chainport.ContractCall{}, err
	}

	var data []byte
	switch rec.Kind {
	case entity.KindPlantSeed:
		data, err = s.encoder.PlantSeed(rec.Payload.SeedTypeID, rec.Payload.Amount)
	case entity.KindHarvestSeed:
		data, err = s.encoder.HarvestSeed(rec.Payload.SeedID)
	case entity.KindClaimYield:
		data, err = s.encoder.ClaimYield(rec.Initiator)
	default:
		err = fmt.Errorf("%w: unknown transaction kind %q", errs.ErrValidation, rec.Kind)
	}
	if err != nil {
		return chainport.ContractCall{}, err
	}

	call := chainport.ContractCall{
		Chain:    route.SourceChain,
		To:       to,
		Data:     data,
		GasLimit: rec.Payload.GasEstimate,
	}
	if call.GasLimit == 0 {
		call.GasLimit = s.estimateGas(ctx, rec, call)
	}
	return call, nil
}

// estimateGas asks the source chain for a limit, falling back to a fixed
// default when the estimate itself fails
func (s *Service) estimateGas(ctx context.Context, rec *entity.TransactionRecord, call chainport.ContractCall) uint64 {
	client, err := s.clients.For(call.Chain)
	if err == nil {
		limit, estErr := client.EstimateGas(ctx, rec.Initiator, call)
		if estErr == nil && limit > 0 {
			return limit
		}
		err = estErr
	}
	s.logger.Warn("gas estimate unavailable, using default", map[string]any{
		"record_id": rec.ID,
		"chain":     string(call.Chain),
		"default":   defaultGasLimit,
		"error":     fmt.Sprint(err),
	})
	return defaultGasLimit
}

// submitWithRetry pushes the call through the wallet, resubmitting only
// transient transport failures. User rejections and reverts surface
// immediately; the player decides whether to try again.
func (s *Service) submitWithRetry(ctx context.Context, rec *entity.TransactionRecord, call chainport.ContractCall) (common.Hash, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.Submit.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return common.Hash{}, err
		}

		txHash, err := s.wallet.SubmitCall(ctx, call)
		if err == nil {
			return txHash, nil
		}
		lastErr = err

		if !errs.IsRetryable(err) {
			return common.Hash{}, err
		}

		backoff := s.submitBackoff(attempt)
		s.logger.Warn("transient submission failure, retrying", map[string]any{
			"record_id":    rec.ID,
			"attempt":      attempt + 1,
			"max_attempts": s.cfg.Submit.MaxAttempts,
			"error":        err.Error(),
			"retry_after":  backoff.Std().String(),
		})
		s.timeProvider.Sleep(backoff)
	}

	s.logger.Error("all submission attempts failed", map[string]any{
		"record_id":    rec.ID,
		"max_attempts": s.cfg.Submit.MaxAttempts,
		"error":        lastErr.Error(),
	})
	return common.Hash{}, lastErr
}

// submitBackoff computes the delay before the next submission attempt,
// doubling per attempt up to the cap and spread by jitter
func (s *Service) submitBackoff(attempt int) core.Duration {
	backoff := s.cfg.Submit.Interval * (1 << uint(attempt))
	if backoff > s.cfg.Submit.MaxInterval {
		backoff = s.cfg.Submit.MaxInterval
	}
	if s.cfg.Submit.JitterFactor > 0 {
		spread := float64(s.timeProvider.Now().UnixNano()%100) / 100.0
		backoff += core.Duration(float64(backoff) * s.cfg.Submit.JitterFactor * spread)
	}
	return backoff
}

// failNow fails the record during the synchronous leg and shapes the
// caller-facing result
func (s *Service) failNow(rec *entity.TransactionRecord, err error) (*uport.ActionResult, error) {
	s.failRecord(rec.ID, rec.RetryCount, rec.Kind, err)
	return resultFromError(rec.ID, err), err
}

// setStatus advances a record one phase under the attempt guard
func (s *Service) setStatus(id string, attempt int, status entity.TransactionStatus) bool {
	return s.ledger.Update(id, uport.RecordPatch{Attempt: attempt, Status: &status})
}

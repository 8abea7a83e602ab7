package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
)

// followJob carries everything a follower goroutine needs. It deliberately
// holds no pointer into the ledger; all progress flows through guarded
// ledger calls keyed by record id and attempt.
type followJob struct {
	recordID  string
	attempt   int
	kind      entity.TransactionKind
	payload   entity.Payload
	route     entity.Route
	sourceTx  common.Hash
	startedAt time.Time
}

// follow tracks one submitted attempt to its end: source confirmation,
// the bridge leg when the route crosses chains, destination confirmation,
// then completion. Every ledger mutation is attempt-guarded, so a follower
// that lost a race with a retry or a failure quietly does nothing.
func (s *Service) follow(job followJob) {
	defer s.followWG.Done()
	ctx := s.baseCtx

	sourceClient, err := s.clients.For(job.route.SourceChain)
	if err != nil {
		s.failRecord(job.recordID, job.attempt, job.kind, err)
		return
	}

	receipt, err := s.awaitReceipt(ctx, sourceClient, job.sourceTx)
	if err != nil {
		if errs.IsConfirmationTimeoutError(err) {
			s.noteConfirmationPending(job, job.route.SourceChain)
			return
		}
		if ctx.Err() != nil {
			return
		}
		s.failRecord(job.recordID, job.attempt, job.kind, err)
		return
	}
	if !receipt.Success {
		s.failRecord(job.recordID, job.attempt, job.kind,
			fmt.Errorf("%w on %s", errs.ErrTransactionReverted, job.route.SourceChain))
		return
	}

	if job.route.Bridged {
		deliveryHash, err := s.followBridgeLeg(ctx, job)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.failRecord(job.recordID, job.attempt, job.kind, err)
			return
		}

		destClient, err := s.clients.For(job.route.DestChain)
		if err != nil {
			s.failRecord(job.recordID, job.attempt, job.kind, err)
			return
		}
		destReceipt, err := s.awaitReceipt(ctx, destClient, deliveryHash)
		if err != nil {
			if errs.IsConfirmationTimeoutError(err) {
				s.noteConfirmationPending(job, job.route.DestChain)
				return
			}
			if ctx.Err() != nil {
				return
			}
			s.failRecord(job.recordID, job.attempt, job.kind, err)
			return
		}
		if !destReceipt.Success {
			s.failRecord(job.recordID, job.attempt, job.kind,
				fmt.Errorf("%w on %s", errs.ErrTransactionReverted, job.route.DestChain))
			return
		}
	}

	s.completeRecord(job)
}

// followBridgeLeg consumes bridge signals until delivery and returns the
// destination transaction hash
func (s *Service) followBridgeLeg(ctx context.Context, job followJob) (common.Hash, error) {
	leg := chainport.Leg{
		RecordID:     job.recordID,
		SourceChain:  job.route.SourceChain,
		DestChain:    job.route.DestChain,
		SourceTxHash: job.sourceTx,
	}

	signals, err := s.bridge.Follow(ctx, leg)
	if err != nil {
		return common.Hash{}, errs.NewBridgeError(
			job.recordID, string(leg.SourceChain), string(leg.DestChain), err)
	}

	var delivery common.Hash
	delivered := false
	for sig := range signals {
		if sig.Err != nil {
			return common.Hash{}, errs.NewBridgeError(
				job.recordID, string(leg.SourceChain), string(leg.DestChain), sig.Err)
		}
		switch sig.Phase {
		case chainport.PhaseSourceObserved:
			eta := s.timeProvider.Now().Add(s.bridge.EstimateTransit(leg))
			status := entity.StatusAxelarProcessing
			s.ledger.Update(job.recordID, uport.RecordPatch{
				Attempt:               job.attempt,
				Status:                &status,
				EstimatedCompletionAt: &eta,
			})
			s.logger.Debug("bridge observed source transaction", map[string]any{
				"record_id": job.recordID,
				"tx_hash":   job.sourceTx.Hex(),
				"eta":       eta.Format(time.RFC3339),
			})
		case chainport.PhaseDelivered:
			delivered = true
			delivery = sig.DeliveryHash
			s.ledger.AppendChainRef(job.recordID, job.attempt, job.route.DestChain, delivery)
			s.setStatus(job.recordID, job.attempt, entity.StatusArbitrumPending)
			s.logger.Debug("bridge delivered transfer", map[string]any{
				"record_id":     job.recordID,
				"delivery_hash": delivery.Hex(),
			})
		}
	}

	if !delivered {
		if err := ctx.Err(); err != nil {
			return common.Hash{}, err
		}
		return common.Hash{}, errs.NewBridgeError(
			job.recordID, string(leg.SourceChain), string(leg.DestChain),
			fmt.Errorf("%w: bridge stream ended before delivery", errs.ErrNetwork))
	}
	return delivery, nil
}

// awaitReceipt waits for a transaction to settle within the configured
// confirmation window
func (s *Service) awaitReceipt(ctx context.Context, client chainport.Client, txHash common.Hash) (*chainport.Receipt, error) {
	waitCtx, cancel := s.timeProvider.WithTimeout(ctx, s.cfg.ConfirmTimeout)
	defer cancel()
	return client.WaitForReceipt(waitCtx, txHash)
}

// noteConfirmationPending annotates a record whose confirmation outlived
// the wait window. The record is not failed; the transaction may still
// land, and the note tells the player where it stands.
func (s *Service) noteConfirmationPending(job followJob, chain entity.ChainName) {
	note := fmt.Sprintf("Confirmation still pending on %s", chain)
	s.ledger.Update(job.recordID, uport.RecordPatch{Attempt: job.attempt, Note: &note})
	s.notifier.Push(entity.NotificationWarning, "Taking longer than usual", note, false)
	s.logger.Warn("confirmation wait expired", map[string]any{
		"record_id": job.recordID,
		"chain":     string(chain),
		"timeout":   s.cfg.ConfirmTimeout.Std().String(),
	})
}

// completeRecord finishes the lifecycle: history move, field confirmation,
// telemetry and the success toast
func (s *Service) completeRecord(job followJob) {
	rec, ok := s.ledger.Complete(job.recordID, job.attempt)
	if !ok {
		s.logger.Debug("completion dropped, record moved on", map[string]any{
			"record_id": job.recordID,
			"attempt":   job.attempt,
		})
		return
	}

	if job.kind == entity.KindPlantSeed {
		s.field.Confirm(job.recordID)
	}
	elapsed := s.timeProvider.Since(job.startedAt).Std()
	s.telemetry.RecordCompleted(string(job.kind), elapsed)
	s.gaugeActive()
	s.notifier.Push(entity.NotificationSuccess,
		completedTitle(job.kind), completedMessage(job.kind, job.payload), false)

	s.logger.Info("record completed", map[string]any{
		"record_id": rec.ID,
		"kind":      string(rec.Kind),
		"elapsed":   elapsed.String(),
	})
}

// failRecord marks the record failed under the attempt guard and emits the
// persistent failure toast. Chain references accumulated before the
// failure stay on the record.
func (s *Service) failRecord(id string, attempt int, kind entity.TransactionKind, cause error) {
	reason := errs.FailureReason(cause)
	rec, ok := s.ledger.Fail(id, attempt, reason)
	if !ok {
		s.logger.Debug("failure dropped, record moved on", map[string]any{
			"record_id": id,
			"attempt":   attempt,
		})
		return
	}

	if kind == entity.KindPlantSeed {
		s.field.MarkStale(id)
	}
	s.telemetry.RecordFailed(string(kind), reason)

	fields := map[string]any{
		"record_id": rec.ID,
		"kind":      string(kind),
		"attempt":   attempt,
		"reason":    reason,
	}
	if logged, ok := cause.(interface{ LogFields() map[string]any }); ok {
		for k, v := range logged.LogFields() {
			fields[k] = v
		}
	} else {
		fields["error"] = cause.Error()
	}
	s.logger.Error("record failed", fields)

	// The failure toast stays up until dismissed so the retry is not missed.
	s.notifier.Push(entity.NotificationError, rejectTitle(kind), playerMessage(cause), true)
}

package orchestrator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
)

// validatePlant checks a plant request against the seed catalog before any
// record exists. The amount must be a positive integer in minor units and
// at least the seed type's minimum deposit.
func (s *Service) validatePlant(req uport.PlantRequest) (entity.Payload, entity.SeedType, error) {
	seedType, ok := s.catalog.Lookup(req.SeedTypeID)
	if !ok {
		return entity.Payload{}, entity.SeedType{}, fmt.Errorf("%w: %q", errs.ErrInvalidSeedType, req.SeedTypeID)
	}

	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		return entity.Payload{}, entity.SeedType{}, errs.NewSeedValidationError(
			seedType.ID, req.Amount, seedType.MinDeposit.String(), err)
	}
	if amount.LessThan(seedType.MinDeposit) {
		return entity.Payload{}, entity.SeedType{}, errs.NewSeedValidationError(
			seedType.ID, amount.String(), seedType.MinDeposit.String(), errs.ErrAmountBelowMinimum)
	}

	return entity.PlantPayload(seedType.ID, amount, req.GasEstimate), seedType, nil
}

// rejectTitle names the declined action for the notification feed
func rejectTitle(kind entity.TransactionKind) string {
	switch kind {
	case entity.KindPlantSeed:
		return "Planting failed"
	case entity.KindHarvestSeed:
		return "Harvest failed"
	case entity.KindClaimYield:
		return "Claim failed"
	default:
		return "Action failed"
	}
}

func submittedTitle(kind entity.TransactionKind) string {
	switch kind {
	case entity.KindPlantSeed:
		return "Planting seed"
	case entity.KindHarvestSeed:
		return "Harvesting seed"
	default:
		return "Claiming yield"
	}
}

func completedTitle(kind entity.TransactionKind) string {
	switch kind {
	case entity.KindPlantSeed:
		return "Seed planted"
	case entity.KindHarvestSeed:
		return "Harvest complete"
	default:
		return "Yield claimed"
	}
}

func retryMessage(kind entity.TransactionKind) string {
	switch kind {
	case entity.KindPlantSeed:
		return "Replanting your seed"
	case entity.KindHarvestSeed:
		return "Retrying the harvest"
	default:
		return "Retrying the yield claim"
	}
}

// submittedMessage describes the in-flight action in player terms
func submittedMessage(kind entity.TransactionKind, payload entity.Payload) string {
	switch kind {
	case entity.KindPlantSeed:
		return fmt.Sprintf("Depositing %s into %s", entity.FormatUSDC(payload.Amount), payload.SeedTypeID)
	case entity.KindHarvestSeed:
		return fmt.Sprintf("Withdrawing seed %s", payload.SeedID)
	default:
		return "Collecting your accrued yield"
	}
}

func completedMessage(kind entity.TransactionKind, payload entity.Payload) string {
	switch kind {
	case entity.KindPlantSeed:
		return fmt.Sprintf("%s is growing in your field", entity.FormatUSDC(payload.Amount))
	case entity.KindHarvestSeed:
		return fmt.Sprintf("Seed %s returned to your wallet", payload.SeedID)
	default:
		return "Yield sent to your wallet"
	}
}

// playerMessage condenses an error into the line shown on a toast
func playerMessage(err error) string {
	switch errs.FailureReason(err) {
	case "user_rejected":
		return "You declined the transaction in your wallet"
	case "reverted":
		return "The contract rejected the transaction"
	case "confirmation_timeout":
		return "The network did not confirm in time"
	case "network_error":
		return "A network error interrupted the transaction"
	case "no_wallet":
		return "Connect a wallet first"
	case "validation_failed":
		return validationMessage(err)
	default:
		return "Something went wrong, please try again"
	}
}

func validationMessage(err error) string {
	var sve *errs.SeedValidationError
	if errors.As(err, &sve) {
		if errors.Is(sve.Err, errs.ErrAmountBelowMinimum) {
			if minimum, parseErr := decimal.NewFromString(sve.Minimum); parseErr == nil {
				return fmt.Sprintf("Minimum for %s is %s", sve.SeedType, entity.FormatUSDC(minimum))
			}
			return fmt.Sprintf("Deposit is below the %s minimum", sve.SeedType)
		}
		return "Enter a whole USDC amount"
	}
	if errors.Is(err, errs.ErrInvalidSeedType) {
		return "That seed is not in the catalog"
	}
	if errors.Is(err, errs.ErrEmptyBatch) {
		return "Select at least one seed to harvest"
	}
	return "Check the request and try again"
}

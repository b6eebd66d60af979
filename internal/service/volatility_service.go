package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptodesk/internal/domain"
	"cryptodesk/internal/logger"
)

// SharpMoveDetector reports assets whose absolute 24h variation meets the
// threshold. The market package provides the live implementation.
type SharpMoveDetector interface {
	DetectSharpMoves(thresholdPercent decimal.Decimal) map[uuid.UUID]decimal.Decimal
}

// VolatilityService watches the market for sharp 24h moves and raises a
// VOLATILITY alert for every user currently holding the moved asset.
type VolatilityService struct {
	market     SharpMoveDetector
	assetRepo  domain.AssetRepository
	walletRepo domain.WalletRepository
	alertRepo  domain.AlertRepository
	notifier   Notifier
	threshold  decimal.Decimal
}

// NewVolatilityService creates a new VolatilityService. thresholdPercent is
// the absolute 24h variation that counts as a sharp move.
func NewVolatilityService(
	marketState SharpMoveDetector,
	assetRepo domain.AssetRepository,
	walletRepo domain.WalletRepository,
	alertRepo domain.AlertRepository,
	notifier Notifier,
	thresholdPercent decimal.Decimal,
) *VolatilityService {
	return &VolatilityService{
		market:     marketState,
		assetRepo:  assetRepo,
		walletRepo: walletRepo,
		alertRepo:  alertRepo,
		notifier:   notifier,
		threshold:  thresholdPercent,
	}
}

// RunSweep detects sharp moves and fans out alerts to holders. Per-asset
// failures are logged and skipped so one bad asset cannot stall the sweep.
func (s *VolatilityService) RunSweep(ctx context.Context) error {
	moves := s.market.DetectSharpMoves(s.threshold)
	if len(moves) == 0 {
		return nil
	}

	wallets, err := s.walletRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load wallets: %w", err)
	}

	for assetID, variation := range moves {
		asset, err := s.assetRepo.GetByID(ctx, assetID)
		if err != nil {
			logger.Warn("volatility sweep: unknown asset", "asset_id", assetID, "error", err)
			continue
		}

		// one alert per holder per moved asset
		notified := make(map[string]bool)
		for _, wallet := range wallets {
			if wallet.Position(assetID).IsZero() || notified[wallet.UserID.String()] {
				continue
			}
			notified[wallet.UserID.String()] = true

			alert := domain.NewVolatilityAlert(wallet.UserID, asset, variation)
			if err := s.alertRepo.Save(ctx, alert); err != nil {
				logger.Error("volatility sweep: failed to save alert", "asset", asset.Symbol, "error", err)
				continue
			}
			if s.notifier != nil {
				if err := s.notifier.Send(alert); err != nil {
					logger.Warn("volatility sweep: notification failed", "asset", asset.Symbol, "error", err)
				}
			}
		}
		logger.Info("sharp move detected", "asset", asset.Symbol, "variation", variation.StringFixed(2))
	}
	return nil
}

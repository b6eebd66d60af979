package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cryptodesk/internal/domain"
	"cryptodesk/internal/logger"
	"cryptodesk/internal/service"
)

// StrategyEngine is the driving loop for automated strategy rules: each pass
// loads the active rules, evaluates them against the market, and executes the
// ones that trigger against their bound wallets. Rules are independent and
// carry no ordering guarantee, but every rule in a pass observes the ledger
// state left by the rules executed before it.
type StrategyEngine struct {
	strategyRepo domain.StrategyRepository
	walletRepo   domain.WalletRepository
	assetRepo    domain.AssetRepository
	txRepo       domain.TransactionRepository
	alertRepo    domain.AlertRepository
	market       domain.PriceSource
	notifier     service.Notifier
}

// NewStrategyEngine creates a new StrategyEngine.
func NewStrategyEngine(
	strategyRepo domain.StrategyRepository,
	walletRepo domain.WalletRepository,
	assetRepo domain.AssetRepository,
	txRepo domain.TransactionRepository,
	alertRepo domain.AlertRepository,
	market domain.PriceSource,
	notifier service.Notifier,
) *StrategyEngine {
	return &StrategyEngine{
		strategyRepo: strategyRepo,
		walletRepo:   walletRepo,
		assetRepo:    assetRepo,
		txRepo:       txRepo,
		alertRepo:    alertRepo,
		market:       market,
		notifier:     notifier,
	}
}

// RunPass evaluates and executes every active rule once. Per-rule failures
// are logged and skipped; the pass always visits every rule.
func (e *StrategyEngine) RunPass(ctx context.Context) error {
	startTime := time.Now()

	rules, err := e.strategyRepo.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active rules: %w", err)
	}
	if len(rules) == 0 {
		return nil
	}

	// Wallets are loaded once per pass so a rule bound to a wallet mutated by
	// an earlier rule in the same pass sees the updated balance and positions.
	wallets := make(map[uuid.UUID]*domain.Wallet)
	assets := make(map[uuid.UUID]*domain.Asset)
	dirty := make(map[uuid.UUID]bool)

	executed := 0
	for _, rule := range rules {
		if !rule.Evaluate(e.market) {
			continue
		}

		wallet, err := e.walletFor(ctx, rule.WalletID, wallets)
		if err != nil {
			logger.Warn("strategy pass: wallet unavailable", "rule_id", rule.ID, "wallet_id", rule.WalletID, "error", err)
			continue
		}
		asset, err := e.assetFor(ctx, rule.AssetID, assets)
		if err != nil {
			logger.Warn("strategy pass: asset unavailable", "rule_id", rule.ID, "asset_id", rule.AssetID, "error", err)
			continue
		}

		tx, ok := rule.Execute(wallet, asset, e.market)
		if !ok {
			// not executed this cycle; retried on the next tick
			continue
		}
		dirty[wallet.ID] = true

		if err := e.txRepo.Save(ctx, tx); err != nil {
			logger.Error("strategy pass: failed to save transaction", "rule_id", rule.ID, "error", err)
		}
		if err := e.strategyRepo.UpdateLastExecuted(ctx, rule.ID, *rule.LastExecutedAt); err != nil {
			logger.Error("strategy pass: failed to update rule", "rule_id", rule.ID, "error", err)
		}

		alert := domain.NewStrategyAlert(rule.UserID, asset, rule.Action, rule.Quantity)
		if err := e.alertRepo.Save(ctx, alert); err != nil {
			logger.Error("strategy pass: failed to save alert", "rule_id", rule.ID, "error", err)
		}
		if e.notifier != nil {
			if err := e.notifier.Send(alert); err != nil {
				logger.Warn("strategy pass: notification failed", "rule_id", rule.ID, "error", err)
			}
		}

		executed++
		logger.Info("strategy executed",
			"rule_id", rule.ID,
			"asset", asset.Symbol,
			"action", rule.Action,
			"quantity", rule.Quantity.String(),
		)
	}

	for walletID := range dirty {
		if err := e.walletRepo.Save(ctx, wallets[walletID]); err != nil {
			logger.Error("strategy pass: failed to save wallet", "wallet_id", walletID, "error", err)
		}
	}

	logger.Debug("strategy pass complete",
		"rules", len(rules),
		"executed", executed,
		"elapsed", time.Since(startTime).String(),
	)
	return nil
}

func (e *StrategyEngine) walletFor(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]*domain.Wallet) (*domain.Wallet, error) {
	if w, ok := cache[id]; ok {
		return w, nil
	}
	w, err := e.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = w
	return w, nil
}

func (e *StrategyEngine) assetFor(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]*domain.Asset) (*domain.Asset, error) {
	if a, ok := cache[id]; ok {
		return a, nil
	}
	a, err := e.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = a
	return a, nil
}

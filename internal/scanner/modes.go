package scanner

import (
	"context"

	"ultron-engine/config"
	"ultron-engine/internal/database"
	"ultron-engine/internal/strategy"
)

// ModeResolver merges the configured default strategy modes with the
// runtime overrides persisted in the database. Without a database the
// configured defaults stand.
type ModeResolver struct {
	defaults strategy.Config
	repo     *database.Repository
}

func NewModeResolver(cfg config.StrategyConfig, repo *database.Repository) *ModeResolver {
	return &ModeResolver{
		defaults: defaultModes(cfg),
		repo:     repo,
	}
}

func defaultModes(cfg config.StrategyConfig) strategy.Config {
	return strategy.Config{
		strategy.NameStructureBreak:    strategy.ParseMode(cfg.StructureBreak),
		strategy.NameCycleReversal:     strategy.ParseMode(cfg.CycleReversal),
		strategy.NameDarvasBox:         strategy.ParseMode(cfg.DarvasBox),
		strategy.NameTrendContinuation: strategy.ParseMode(cfg.TrendContinuation),
		strategy.NameDoubleSupertrend:  strategy.ParseMode(cfg.DoubleSupertrend),
		strategy.NameEMATriple:         strategy.ParseMode(cfg.EMATriple),
	}
}

// Resolve returns the effective strategy configuration.
func (mr *ModeResolver) Resolve(ctx context.Context) (strategy.Config, error) {
	modes := make(strategy.Config, len(mr.defaults))
	for name, mode := range mr.defaults {
		modes[name] = mode
	}

	if mr.repo == nil {
		return modes, nil
	}

	overrides, err := mr.repo.GetStrategyModes(ctx)
	if err != nil {
		return modes, err
	}
	for name, raw := range overrides {
		if _, known := modes[name]; known {
			modes[name] = strategy.ParseMode(raw)
		}
	}
	return modes, nil
}

// Set persists a mode override and validates the strategy name.
func (mr *ModeResolver) Set(ctx context.Context, name string, mode strategy.Mode) error {
	if _, ok := mr.defaults[name]; !ok {
		return strategy.ErrUnknownStrategy
	}
	if mr.repo == nil {
		mr.defaults[name] = mode
		return nil
	}
	return mr.repo.SetStrategyMode(ctx, name, string(mode))
}

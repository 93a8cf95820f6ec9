// Package synth produces placeholder images of a requested size.
//
// Two strategies are available: Remote fetches the image from a
// dummyimage-style HTTP service and Local renders it in-process. Both return
// encoded image bytes and are interchangeable behind Strategy.
package synth

import (
	"context"
	"fmt"

	"github.com/abaddouh/fakeimg/internal/config"
)

type Strategy interface {
	Synthesize(ctx context.Context, width, height int) ([]byte, error)
}

// New builds the strategy selected by cfg.Strategy.
func New(cfg *config.Config) (Strategy, error) {
	switch cfg.Strategy {
	case config.StrategyRemote:
		return NewRemote(cfg.Remote.BaseURL, cfg.Remote.Timeout, cfg.Remote.Background, cfg.Remote.Foreground), nil
	case config.StrategyLocal:
		local, err := NewLocal(cfg.Local)
		if err != nil {
			return nil, err
		}
		return local, nil
	default:
		return nil, fmt.Errorf("unknown synthesis strategy %q", cfg.Strategy)
	}
}

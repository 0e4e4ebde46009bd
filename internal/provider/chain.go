package provider

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Outcome is the tagged result of running the chain: either a response with
// the identifier of the provider that produced it, or exhaustion carrying the
// last attempt's cause.
type Outcome struct {
	OK         bool
	Text       string
	ProviderID string
	LastCause  error
}

// Chain tries an ordered list of providers and stops at the first success.
// Strictly sequential: no retries within a provider, no backoff, no parallel
// racing. A provider failure of any kind just moves iteration along.
type Chain struct {
	providers []Provider
	log       zerolog.Logger
}

// NewChain creates a chain over providers, attempted in the given order.
func NewChain(log zerolog.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, log: log}
}

// Providers returns the chain's providers in attempt order.
func (c *Chain) Providers() []Provider {
	return c.providers
}

// Generate runs the failover loop.
func (c *Chain) Generate(ctx context.Context, history []Turn, newText string) Outcome {
	lastCause := errors.New("no providers configured")

	for _, p := range c.providers {
		id := p.Identify()

		if checker, ok := p.(AvailabilityChecker); ok {
			if err := checker.Available(ctx); err != nil {
				lastCause = errors.Wrapf(err, "provider %s is unavailable", id)
				c.log.Warn().Err(err).Str("provider", id).Msg("provider unavailable, trying next")
				continue
			}
		}

		text, err := p.Generate(ctx, history, newText)
		if err != nil {
			lastCause = err
			c.log.Warn().Err(err).Str("provider", id).Msg("provider failed, trying next")
			continue
		}
		if strings.TrimSpace(text) == "" {
			lastCause = errors.Errorf("provider %s returned an empty response", id)
			c.log.Warn().Str("provider", id).Msg("empty response, trying next")
			continue
		}

		c.log.Debug().Str("provider", id).Msg("provider succeeded")
		return Outcome{OK: true, Text: text, ProviderID: id}
	}

	return Outcome{LastCause: lastCause}
}

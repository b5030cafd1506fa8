// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider holds the external data provider contract and the HTTP
// clients behind it: market snapshots, news, analyst commentary, and
// internal content. Providers degrade to empty contributions on failure;
// they never fail a pipeline run.
package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

// ErrSkipped marks a provider left out of a fan-out because its
// healthcheck reported not-ok. Distinguishes "never called" from "call
// failed" in the results.
var ErrSkipped = errors.New("healthcheck not ok")

// Provider is one external data source. Implementations are plain HTTP
// clients; the pipeline skips any provider whose healthcheck reports
// not-ok.
type Provider interface {
	Name() string
	Healthcheck() types.ProviderStatus
	Fetch(ctx context.Context, req types.ProviderRequest) (types.ProviderResponse, error)
}

// Registry maps provider names to implementations, preserving
// registration order for deterministic fan-out merges.
type Registry struct {
	order     []string
	providers map[string]Provider
}

// NewRegistry builds the standard registry from configuration.
func NewRegistry(cfg types.ProviderConfig) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	r.Register(NewMarketData(cfg))
	r.Register(NewNews(cfg))
	r.Register(NewAnalyst(cfg))
	r.Register(NewInternalContent(cfg))
	return r
}

// Register adds a provider. Later registrations with the same name replace
// the earlier one but keep its position.
func (r *Registry) Register(p Provider) {
	if _, ok := r.providers[p.Name()]; !ok {
		r.order = append(r.order, p.Name())
	}
	r.providers[p.Name()] = p
}

// Resolve returns the providers for the requested names, in request order.
// Unknown names are ignored.
func (r *Registry) Resolve(names []string) []Provider {
	var out []Provider
	for _, name := range names {
		if p, ok := r.providers[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Names returns all registered provider names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// FetchResult is one provider's outcome from a fan-out: response or error,
// never silently swallowed.
type FetchResult struct {
	Provider string
	Response types.ProviderResponse
	Err      error
}

// OK reports whether the fetch produced a usable response.
func (f FetchResult) OK() bool { return f.Err == nil }

// FetchAll fans out to the given providers concurrently and returns one
// FetchResult per provider in argument order, never completion order.
// Unhealthy providers are skipped with a logged status; fetch errors are
// captured in the result, wrapped as ProviderError. Each fetch is bounded
// by timeout when one is set.
func FetchAll(ctx context.Context, providers []Provider, req types.ProviderRequest, timeout time.Duration, logger *zap.Logger) []FetchResult {
	results := make([]FetchResult, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		status := p.Healthcheck()
		if !status.OK {
			logger.Info("provider skipped",
				zap.String("provider", p.Name()),
				zap.Bool("configured", status.Configured),
				zap.String("message", status.Message))
			results[i] = FetchResult{
				Provider: p.Name(),
				Err:      &types.ProviderError{Provider: p.Name(), Err: ErrSkipped},
			}
			continue
		}

		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			fetchCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			resp, err := p.Fetch(fetchCtx, req)
			if err != nil {
				logger.Warn("provider fetch failed",
					zap.String("provider", p.Name()),
					zap.Error(err))
				results[i] = FetchResult{
					Provider: p.Name(),
					Err:      &types.ProviderError{Provider: p.Name(), Err: err},
				}
				return
			}
			results[i] = FetchResult{Provider: p.Name(), Response: resp}
		}(i, p)
	}
	wg.Wait()

	return results
}

// Responses filters a fan-out down to the usable payloads, preserving
// order.
func Responses(results []FetchResult) []types.ProviderResponse {
	var out []types.ProviderResponse
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Response)
		}
	}
	return out
}

package compat

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/ledger"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/resolver"
	"github.com/arthur-debert/silkmod/pkg/types"
	"golang.org/x/sync/errgroup"
)

// Checker evaluates installed mods against each other
type Checker struct {
	ledger      ledger.Ledger
	resolver    *resolver.Resolver
	cache       *Cache
	installID   string
	concurrency int
	now         func() time.Time
}

// NewChecker creates a Checker. installID scopes cache entries to one game
// install; concurrency bounds CheckBatch.
func NewChecker(l ledger.Ledger, r *resolver.Resolver, c *Cache, installID string, concurrency int) *Checker {
	if r == nil {
		r = resolver.New()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Checker{
		ledger:      l,
		resolver:    r,
		cache:       c,
		installID:   installID,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Check returns the compatibility of one installed mod
func (c *Checker) Check(ctx context.Context, modID string) (types.CompatibilityResult, error) {
	if err := ctx.Err(); err != nil {
		return types.CompatibilityResult{}, err
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(modID, c.installID); ok {
			return cached, nil
		}
	}

	mods, err := c.ledger.Load()
	if err != nil {
		return types.CompatibilityResult{}, err
	}

	target, found := types.FindMod(mods, modID)
	if !found {
		return types.CompatibilityResult{}, errors.Newf(errors.ErrModNotFound, "mod %q is not installed", modID).
			WithDetail("id", modID)
	}

	var others []types.ModDescriptor
	for _, m := range mods {
		if m.MatchesID(target.ID) || !m.Enabled {
			continue
		}
		others = append(others, m)
	}

	outcome := c.resolver.Resolve(target, others)
	result := FromOutcome(outcome, c.now().UTC())
	if !target.Enabled {
		result.Reasons = append(result.Reasons, "mod is disabled")
	}

	if c.cache != nil {
		c.cache.Put(c.installID, result)
	}

	logger := logging.GetLogger("compat")
	logger.Debug().
		Str("mod", target.ID).
		Str("status", string(result.Status)).
		Int("reasons", len(result.Reasons)).
		Msg("Compatibility checked")
	return result, nil
}

// CheckBatch checks ids concurrently. A failing item is reported as
// unknown with the error as its reason; results follow the input order.
func (c *Checker) CheckBatch(ctx context.Context, ids []string) []types.CompatibilityResult {
	results := make([]types.CompatibilityResult, len(ids))

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			result, err := c.Check(ctx, id)
			if err != nil {
				result = types.CompatibilityResult{
					ModID:     id,
					Status:    types.CompatibilityUnknown,
					Reasons:   []string{err.Error()},
					CheckedAt: c.now().UTC(),
				}
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// FromOutcome converts a resolution outcome into a compatibility verdict
func FromOutcome(outcome types.ResolutionOutcome, at time.Time) types.CompatibilityResult {
	result := types.CompatibilityResult{
		ModID:     outcome.ModID,
		Status:    types.CompatibilityCompatible,
		CheckedAt: at,
	}
	if !outcome.IsValid {
		result.Status = types.CompatibilityIncompatible
	}

	for _, m := range outcome.Missing {
		if cs := m.ConstraintString(); cs != "" {
			result.Reasons = append(result.Reasons, fmt.Sprintf("missing dependency %s %s", m.ModID, cs))
		} else {
			result.Reasons = append(result.Reasons, fmt.Sprintf("missing dependency %s", m.ModID))
		}
	}
	for _, conflict := range outcome.Conflicts {
		result.Reasons = append(result.Reasons, conflict.Message)
	}
	return result
}

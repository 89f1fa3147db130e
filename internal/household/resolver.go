package household

import (
	"context"
	"fmt"

	"agencyhub_backend/platform/logger"

	"github.com/google/uuid"
)

// Resolver resolves a batch of candidates to households, creating any that
// cannot be matched. All lookups and creates are batched; there are no
// per-record queries.
type Resolver struct {
	strategy MatchStrategy
	store    Store
	log      *logger.Logger
}

// NewResolver creates a resolver with the given match strategy.
func NewResolver(strategy MatchStrategy, store Store, log *logger.Logger) *Resolver {
	return &Resolver{strategy: strategy, store: store, log: log}
}

// Resolve maps every candidate key to a household. Candidates whose key
// matches nothing are created in a single batch insert. The returned map has
// an entry for every distinct input key.
func (r *Resolver) Resolve(ctx context.Context, agencyID uuid.UUID, candidates []Candidate) (map[string]Household, error) {
	deduped := dedupeByKey(candidates)
	if len(deduped) == 0 {
		return map[string]Household{}, nil
	}

	resolved, err := r.strategy.Match(ctx, agencyID, deduped)
	if err != nil {
		return nil, fmt.Errorf("match households: %w", err)
	}

	var missing []CreateParams
	var missingKeys []string
	for _, c := range deduped {
		if _, ok := resolved[c.Key]; ok {
			continue
		}
		missing = append(missing, CreateParams{
			AgencyID:  agencyID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			ZipCode:   c.ZipCode,
			MatchKey:  c.Key,
		})
		missingKeys = append(missingKeys, c.Key)
	}

	if len(missing) > 0 {
		created, err := r.store.CreateBatch(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("create households: %w", err)
		}
		for _, h := range created {
			resolved[h.MatchKey] = h
		}
		r.log.Debug("created households for unmatched keys",
			"agency_id", agencyID,
			"count", len(created),
			"keys", missingKeys,
		)
	}

	return resolved, nil
}

// dedupeByKey keeps the first candidate seen for each key, preserving order.
func dedupeByKey(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Key == "" {
			continue
		}
		if _, ok := seen[c.Key]; ok {
			continue
		}
		seen[c.Key] = struct{}{}
		out = append(out, c)
	}
	return out
}

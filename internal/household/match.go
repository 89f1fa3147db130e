package household

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence surface the matcher and resolver need.
type Store interface {
	// FindByMatchKeys performs one batched exact-key lookup for all keys.
	FindByMatchKeys(ctx context.Context, agencyID uuid.UUID, keys []string) (map[string]Household, error)

	// FindByNameZipPrefix looks up a household by case-insensitive name and
	// zip prefix. Returns false when no household matches.
	FindByNameZipPrefix(ctx context.Context, agencyID uuid.UUID, firstName, lastName, zipPrefix string) (Household, bool, error)

	// CreateBatch inserts all given households in a single statement.
	CreateBatch(ctx context.Context, params []CreateParams) ([]Household, error)
}

// MatchStrategy finds existing households for a batch of candidates.
// It never creates households; unmatched candidates are simply absent from
// the result. Isolated as an interface so a stricter algorithm (scored
// matching, exact zip+4) can be substituted without touching the upload
// coordinators.
type MatchStrategy interface {
	Match(ctx context.Context, agencyID uuid.UUID, candidates []Candidate) (map[string]Household, error)
}

// NameZipStrategy is the default matcher: exact match-key lookup for the
// whole batch, then a per-miss fallback on case-insensitive name plus
// five-digit zip prefix. The fallback tolerates zip+4 variations between the
// stored household and the incoming record. First match wins; there is no
// score-based disambiguation.
type NameZipStrategy struct {
	store Store
}

// NewNameZipStrategy creates the default match strategy.
func NewNameZipStrategy(store Store) *NameZipStrategy {
	return &NameZipStrategy{store: store}
}

// Match implements MatchStrategy.
func (s *NameZipStrategy) Match(ctx context.Context, agencyID uuid.UUID, candidates []Candidate) (map[string]Household, error) {
	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		keys = append(keys, c.Key)
	}

	matched, err := s.store.FindByMatchKeys(ctx, agencyID, keys)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		if _, ok := matched[c.Key]; ok {
			continue
		}

		h, ok, err := s.store.FindByNameZipPrefix(ctx, agencyID, c.FirstName, c.LastName, ZipPrefix(c.ZipCode))
		if err != nil {
			return nil, err
		}
		if ok {
			matched[c.Key] = h
		}
	}

	return matched, nil
}

// Compile-time check that NameZipStrategy implements MatchStrategy.
var _ MatchStrategy = (*NameZipStrategy)(nil)

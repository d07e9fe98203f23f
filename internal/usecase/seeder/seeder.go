package seeder

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hktikhin/personal-budget/internal/domain"
)

// SeedEnvelope defines an envelope to create on an empty store
type SeedEnvelope struct {
	Title  string
	Budget decimal.Decimal
}

// ParseSeedEnvelopes parses a list like "Food:1500,Game:500".
// An empty string yields no envelopes.
func ParseSeedEnvelopes(raw string) ([]SeedEnvelope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var seeds []SeedEnvelope
	for _, item := range strings.Split(raw, ",") {
		title, budget, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("seed envelope %q: expected title:budget", item)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(budget))
		if err != nil {
			return nil, fmt.Errorf("seed envelope %q: %w", item, err)
		}
		if err := domain.CheckAmount("budget", amount); err != nil {
			return nil, fmt.Errorf("seed envelope %q: %w", item, err)
		}

		seeds = append(seeds, SeedEnvelope{Title: strings.TrimSpace(title), Budget: amount})
	}

	return seeds, nil
}

// Seeder creates the initial envelopes
type Seeder struct {
	repo      domain.EnvelopeRepository
	envelopes []SeedEnvelope
}

// NewSeeder creates a new Seeder instance
func NewSeeder(repo domain.EnvelopeRepository, envelopes []SeedEnvelope) *Seeder {
	return &Seeder{
		repo:      repo,
		envelopes: envelopes,
	}
}

// Seed creates the configured envelopes when the store has none yet.
// It returns how many envelopes were created.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	if len(s.envelopes) == 0 {
		return 0, nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		// Existing data always wins over the seed list
		return 0, nil
	}

	created := 0
	for _, seed := range s.envelopes {
		envelope := &domain.Envelope{
			Title:  seed.Title,
			Budget: seed.Budget,
		}

		// Validate before creating
		if err := envelope.Validate(); err != nil {
			return created, err
		}

		if err := s.repo.Create(ctx, envelope); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

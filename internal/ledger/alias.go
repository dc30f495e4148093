package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// Aliases are short public identifiers of the form W-###### handed to users
// on first contact and rotated on nullify.
const (
	aliasPrefix      = "W-"
	aliasDigits      = 6
	aliasSpace       = 1000000
	maxAliasAttempts = 1000
)

// ErrAliasSpaceExhausted is returned when no free alias could be drawn within
// the attempt budget. With a six-digit space this only happens when the user
// base approaches a million records.
var ErrAliasSpaceExhausted = errors.New("alias space exhausted")

// FormatAlias renders a numeric suffix as a canonical alias.
func FormatAlias(n int) string {
	return fmt.Sprintf("%s%0*d", aliasPrefix, aliasDigits, n)
}

// AliasGenerator draws random alias candidates. Safe for concurrent use.
type AliasGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewAliasGenerator constructs a generator from the given seed.
func NewAliasGenerator(seed int64) *AliasGenerator {
	return &AliasGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Candidate returns a random alias, not yet checked for uniqueness.
func (g *AliasGenerator) Candidate() string {
	g.mu.Lock()
	n := g.rng.Intn(aliasSpace)
	g.mu.Unlock()

	return FormatAlias(n)
}

// GenerateAlias draws candidates until the exists predicate reports a free
// one. The caller's unique index remains the final arbiter; a concurrent
// insert of the same alias surfaces as a duplicate-key error there.
func GenerateAlias(ctx context.Context, gen *AliasGenerator, exists func(context.Context, string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxAliasAttempts; attempt++ {
		candidate := gen.Candidate()

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check alias %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", ErrAliasSpaceExhausted
}

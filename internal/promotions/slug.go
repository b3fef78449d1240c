package promotions

import (
	"context"
	"fmt"

	"github.com/phonemart/phonemart/pkg/common"
	"github.com/pkg/errors"
)

// SlugChecker reports whether a slug is already taken in persisted state.
type SlugChecker func(ctx context.Context, slug string) (bool, error)

// maxSlugAttempts bounds the suffix probe loop; the storage unique
// constraint stays the final authority either way.
const maxSlugAttempts = 1000

// UniqueSlug derives a URL-safe slug from name and probes exists until an
// unused value is found: base, base-1, base-2, ... Deterministic for a
// given name and set of existing slugs. One query per attempt is fine
// because collisions are rare.
func UniqueSlug(ctx context.Context, name string, exists SlugChecker) (string, error) {
	base := common.Slugify(name)
	if base == "" {
		base = "deal"
	}
	candidate := base
	for n := 1; n <= maxSlugAttempts; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", errors.Wrap(err, "slug lookup")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", errors.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
}

// NextSlug returns the candidate that follows slug in the base, base-1,
// base-2, ... sequence. Used to retry after the storage layer rejects a
// concurrent duplicate insert.
func NextSlug(base, current string) string {
	if current == base {
		return base + "-1"
	}
	var n int
	if _, err := fmt.Sscanf(current, base+"-%d", &n); err == nil && n > 0 {
		return fmt.Sprintf("%s-%d", base, n+1)
	}
	return base + "-1"
}

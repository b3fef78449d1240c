package promotions

import (
	"context"
	"testing"
)

func mapChecker(taken ...string) SlugChecker {
	set := make(map[string]bool, len(taken))
	for _, s := range taken {
		set[s] = true
	}
	return func(_ context.Context, slug string) (bool, error) {
		return set[slug], nil
	}
}

func TestUniqueSlugFree(t *testing.T) {
	slug, err := UniqueSlug(context.Background(), "Summer Sale", mapChecker())
	if err != nil {
		t.Fatal(err)
	}
	if slug != "summer-sale" {
		t.Fatalf("got %q, want summer-sale", slug)
	}
}

func TestUniqueSlugSuffixes(t *testing.T) {
	checker := mapChecker("summer-sale", "summer-sale-1", "summer-sale-2")
	slug, err := UniqueSlug(context.Background(), "Summer Sale", checker)
	if err != nil {
		t.Fatal(err)
	}
	if slug != "summer-sale-3" {
		t.Fatalf("got %q, want summer-sale-3", slug)
	}
}

func TestUniqueSlugEmptyName(t *testing.T) {
	slug, err := UniqueSlug(context.Background(), "!!!", mapChecker())
	if err != nil {
		t.Fatal(err)
	}
	if slug != "deal" {
		t.Fatalf("got %q, want deal", slug)
	}
}

func TestUniqueSlugDeterministic(t *testing.T) {
	checker := mapChecker("flash-deal")
	first, _ := UniqueSlug(context.Background(), "Flash Deal", checker)
	second, _ := UniqueSlug(context.Background(), "Flash Deal", checker)
	if first != second {
		t.Fatalf("not deterministic: %q vs %q", first, second)
	}
}

func TestNextSlug(t *testing.T) {
	cases := []struct {
		base    string
		current string
		want    string
	}{
		{"summer-sale", "summer-sale", "summer-sale-1"},
		{"summer-sale", "summer-sale-1", "summer-sale-2"},
		{"summer-sale", "summer-sale-9", "summer-sale-10"},
		{"summer-sale", "unrelated", "summer-sale-1"},
	}
	for _, c := range cases {
		if got := NextSlug(c.base, c.current); got != c.want {
			t.Fatalf("NextSlug(%q, %q) = %q, want %q", c.base, c.current, got, c.want)
		}
	}
}

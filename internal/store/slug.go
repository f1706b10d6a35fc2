package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lowerer          = cases.Lower(language.Und)
	nonAlnumSequence = regexp.MustCompile(`[^a-z0-9]+`)
	edgeHyphens      = regexp.MustCompile(`^-+|-+$`)
)

// slugify derives a URL-safe slug from a claim title: Unicode-aware
// lowercasing (golang.org/x/text/cases, so "Café Auth" folds the way a
// non-ASCII locale would expect) followed by non-alphanumeric
// collapsing to a single hyphen, per spec.md §3.
func slugify(title string) string {
	lowered := lowerer.String(title)
	collapsed := nonAlnumSequence.ReplaceAllString(lowered, "-")
	trimmed := edgeHyphens.ReplaceAllString(collapsed, "")
	if trimmed == "" {
		return "claim"
	}
	return trimmed
}

// uniqueSlug returns a slug guaranteed not to collide with any live
// claim, disambiguating collisions with a numeric suffix "-2", "-3", ...
// Must be called from within the same transaction as the insert it
// backs, so the uniqueness check and the write are atomic.
func uniqueSlug(ctx context.Context, tx *sql.Tx, title string) (string, error) {
	base := slugify(title)
	candidate := base
	for n := 2; ; n++ {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims WHERE slug = ?`, candidate).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("check slug uniqueness: %w", err)
		}
		if exists == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
		if n > 10000 {
			// Policy exhausted; spec.md §4.1 calls this AlreadyExists.
			return "", fmt.Errorf("could not disambiguate slug for %q", strings.TrimSpace(title))
		}
	}
}

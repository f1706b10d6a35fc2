// Package resolve maps a user-supplied claim reference — a numeric id,
// a slug, or free text — to exactly one claim. See spec.md §4.4.
package resolve

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/proofcarrying/roadmap/internal/model"
)

// Source loads the candidate pool a Resolver ranks against.
type Source interface {
	GetClaim(ctx context.Context, id int64) (model.Claim, error)
	GetClaimBySlug(ctx context.Context, slug string) (model.Claim, error)
	ListClaims(ctx context.Context) ([]model.Claim, error)
}

// Mode selects how permissive resolution is.
type Mode int

const (
	// Strict accepts only an exact id or exact slug. Used for agent/JSON
	// paths where silent fuzzy correction would be a footgun.
	Strict Mode = iota
	// Lenient additionally tries substring and similarity ranking. Used
	// for interactive paths.
	Lenient
)

// Ranking parameters (spec.md §4.4): a candidate wins only if it beats
// the runner-up by Margin and clears MinScore outright.
const (
	MinScore = 0.35
	Margin   = 0.10
)

// Resolver resolves references against a Source.
type Resolver struct {
	src  Source
	mode Mode
}

// New builds a Resolver bound to a claim source in the given mode.
func New(src Source, mode Mode) *Resolver {
	return &Resolver{src: src, mode: mode}
}

// Resolve maps ref to exactly one claim, or fails with a NotFound or
// Ambiguous *model.Error.
func (r *Resolver) Resolve(ctx context.Context, ref string) (model.Claim, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Claim{}, model.NewError(model.ErrNotFound, "empty reference")
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		claim, err := r.src.GetClaim(ctx, id)
		if err == nil {
			return claim, nil
		}
		if model.KindOf(err) != model.ErrNotFound {
			return model.Claim{}, err
		}
		// No claim has this numeric id, but ref may still be an
		// all-digits slug (e.g. a claim titled "404"); fall through to
		// the slug lookup below before giving up.
	}

	if claim, err := r.src.GetClaimBySlug(ctx, ref); err == nil {
		return claim, nil
	} else if model.KindOf(err) != model.ErrNotFound {
		return model.Claim{}, err
	}

	if r.mode == Strict {
		return model.Claim{}, model.NewError(model.ErrNotFound, "no claim matches "+strconv.Quote(ref))
	}

	claims, err := r.src.ListClaims(ctx)
	if err != nil {
		return model.Claim{}, err
	}

	if hit, ok := substringMatch(ref, claims); ok {
		return hit, nil
	}

	return r.rankedMatch(ref, claims)
}

// substringMatch tries a case-insensitive substring hit against slug
// then statement, spec.md §4.4 step 3. A unique hit wins outright; more
// than one candidate falls through to ranked scoring instead of
// guessing.
func substringMatch(ref string, claims []model.Claim) (model.Claim, bool) {
	needle := strings.ToLower(ref)
	var bySlug, byStatement []model.Claim
	for _, c := range claims {
		if strings.Contains(strings.ToLower(c.Slug), needle) {
			bySlug = append(bySlug, c)
		}
	}
	if len(bySlug) == 1 {
		return bySlug[0], true
	}
	if len(bySlug) == 0 {
		for _, c := range claims {
			if strings.Contains(strings.ToLower(c.Statement), needle) {
				byStatement = append(byStatement, c)
			}
		}
		if len(byStatement) == 1 {
			return byStatement[0], true
		}
	}
	return model.Claim{}, false
}

// rankedMatch implements spec.md §4.4 step 4: token-overlap and
// edit-distance ranking with a margin-and-threshold acceptance rule.
func (r *Resolver) rankedMatch(ref string, claims []model.Claim) (model.Claim, error) {
	type scored struct {
		claim model.Claim
		score float64
	}
	scoredClaims := make([]scored, 0, len(claims))
	for _, c := range claims {
		scoredClaims = append(scoredClaims, scored{claim: c, score: score(ref, c)})
	}
	sort.Slice(scoredClaims, func(i, j int) bool {
		if scoredClaims[i].score != scoredClaims[j].score {
			return scoredClaims[i].score > scoredClaims[j].score
		}
		return scoredClaims[i].claim.ID < scoredClaims[j].claim.ID
	})

	if len(scoredClaims) == 0 {
		return model.Claim{}, model.NewError(model.ErrNotFound, "no claims to resolve against")
	}

	best := scoredClaims[0]
	if best.score < MinScore {
		return model.Claim{}, model.NewError(model.ErrNotFound, "no claim resembles "+strconv.Quote(ref))
	}

	runnerUp := 0.0
	if len(scoredClaims) > 1 {
		runnerUp = scoredClaims[1].score
	}
	if best.score-runnerUp < Margin {
		const maxCandidates = 5
		n := len(scoredClaims)
		if n > maxCandidates {
			n = maxCandidates
		}
		candidates := make([]model.Candidate, 0, n)
		for _, s := range scoredClaims[:n] {
			if s.score < MinScore {
				break
			}
			candidates = append(candidates, model.Candidate{ID: s.claim.ID, Slug: s.claim.Slug, Score: s.score})
		}
		return model.Claim{}, &model.Error{Kind: model.ErrAmbiguous, Message: "ambiguous reference " + strconv.Quote(ref), Candidates: candidates}
	}

	return best.claim, nil
}

// score blends token-overlap (Jaccard) against a claim's statement and
// normalized edit distance against its statement or slug, whichever is
// closer, weighting overlap more heavily since it
// tolerates word reordering that edit distance penalizes.
func score(ref string, c model.Claim) float64 {
	jaccard := jaccardSimilarity(tokenize(ref), tokenize(c.Statement))
	edit := 1.0 - normalizedLevenshtein(strings.ToLower(ref), strings.ToLower(c.Statement))
	slugEdit := 1.0 - normalizedLevenshtein(strings.ToLower(ref), strings.ToLower(c.Slug))
	best := edit
	if slugEdit > best {
		best = slugEdit
	}
	return 0.6*jaccard + 0.4*best
}

func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// jaccardSimilarity is |a∩b| / |a∪b|, the standard token-overlap metric.
func jaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// normalizedLevenshtein returns edit distance divided by the longer
// string's length, so the result sits in [0, 1] regardless of input size.
func normalizedLevenshtein(a, b string) float64 {
	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	return float64(dist) / float64(maxLen)
}

// levenshtein computes edit distance with the classic dynamic-programming
// table, keeping only two rows of it.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

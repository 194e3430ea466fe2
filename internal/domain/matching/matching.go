// Package matching ranks candidate study buddies for a requester.
//
// Scoring reads the requester and one candidate at a time. Ranking is a
// stable sort on score so equal scores keep their input order. The Matcher
// holds no mutable state and is safe for concurrent use.
package matching

import (
	"sort"

	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/types"
)

// Matcher scores and ranks candidates with a fixed set of weights.
type Matcher struct {
	weights          Weights
	excludeRequester bool
}

// scored pairs a candidate with its score for one invocation.
type scored struct {
	profile *model.Profile
	score   float64
}

// NewMatcher creates a Matcher with default weights and the given options.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Weights returns the weights in effect.
func (m *Matcher) Weights() Weights { return m.weights }

// Score computes the match score of candidate against requester.
func (m *Matcher) Score(requester, candidate *model.Profile) float64 {
	if requester == nil || candidate == nil {
		return 0
	}
	var score float64
	if requester.Department != "" && candidate.Department == requester.Department {
		score += m.weights.Department
	}
	if requester.CurrentYear != "" && candidate.CurrentYear == requester.CurrentYear {
		score += m.weights.Year
	}
	score += float64(requester.Classes.Intersect(candidate.Classes)) * m.weights.SharedClass
	score += float64(requester.Interests.Intersect(candidate.Interests)) * m.weights.SharedInterest
	if candidate.Mentor {
		score += m.weights.Mentor
	}
	return score
}

// Recommend returns at most limit candidates ordered by score, highest first.
// A nil requester yields ErrInvalidRequester. limit <= 0 or no candidates
// yields an empty result. Nil candidates are skipped.
func (m *Matcher) Recommend(requester *model.Profile, candidates []*model.Profile, limit int) ([]types.Recommendation, error) {
	if requester == nil {
		return nil, ErrInvalidRequester
	}
	if limit <= 0 || len(candidates) == 0 {
		return []types.Recommendation{}, nil
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if m.excludeRequester && c.ID == requester.ID {
			continue
		}
		ranked = append(ranked, scored{profile: c, score: m.Score(requester, c)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]types.Recommendation, len(ranked))
	for i, s := range ranked {
		out[i] = project(s)
	}
	return out, nil
}

// project copies the public fields of a scored candidate.
func project(s scored) types.Recommendation {
	p := s.profile
	return types.Recommendation{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Department:  p.Department,
		Classes:     p.Classes.Values(),
		Mentor:      p.Mentor,
		CurrentYear: p.CurrentYear,
		Interests:   p.Interests.Values(),
		Score:       s.score,
	}
}

var defaultMatcher = NewMatcher()

// Recommend ranks candidates with the default weights.
func Recommend(requester *model.Profile, candidates []*model.Profile, limit int) ([]types.Recommendation, error) {
	return defaultMatcher.Recommend(requester, candidates, limit)
}

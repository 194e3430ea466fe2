package matching

import "math"

// Default signal weights and result size.
const (
	DefaultDepartmentWeight     = 3
	DefaultYearWeight           = 2
	DefaultSharedClassWeight    = 2
	DefaultSharedInterestWeight = 1
	DefaultMentorWeight         = 1
	DefaultLimit                = 3
)

// MaxWeight bounds a single weight so a score sum stays finite.
const MaxWeight = 1e6

// Weights holds the contribution of each scoring signal.
type Weights struct {
	Department     float64
	Year           float64
	SharedClass    float64
	SharedInterest float64
	Mentor         float64
}

// DefaultWeights returns the stock weights (3/2/2/1/1).
func DefaultWeights() Weights {
	return Weights{
		Department:     DefaultDepartmentWeight,
		Year:           DefaultYearWeight,
		SharedClass:    DefaultSharedClassWeight,
		SharedInterest: DefaultSharedInterestWeight,
		Mentor:         DefaultMentorWeight,
	}
}

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithWeights replaces every weight. Negative values keep the current weight.
func WithWeights(w Weights) Option {
	return func(m *Matcher) {
		WithDepartmentWeight(w.Department)(m)
		WithYearWeight(w.Year)(m)
		WithSharedClassWeight(w.SharedClass)(m)
		WithSharedInterestWeight(w.SharedInterest)(m)
		WithMentorWeight(w.Mentor)(m)
	}
}

// WithDepartmentWeight sets the department match weight.
func WithDepartmentWeight(v float64) Option {
	return func(m *Matcher) { setWeight(&m.weights.Department, v) }
}

// WithYearWeight sets the year match weight.
func WithYearWeight(v float64) Option {
	return func(m *Matcher) { setWeight(&m.weights.Year, v) }
}

// WithSharedClassWeight sets the weight added per shared class.
func WithSharedClassWeight(v float64) Option {
	return func(m *Matcher) { setWeight(&m.weights.SharedClass, v) }
}

// WithSharedInterestWeight sets the weight added per shared interest.
func WithSharedInterestWeight(v float64) Option {
	return func(m *Matcher) { setWeight(&m.weights.SharedInterest, v) }
}

// WithMentorWeight sets the bonus for mentor candidates.
func WithMentorWeight(v float64) Option {
	return func(m *Matcher) { setWeight(&m.weights.Mentor, v) }
}

// WithExcludeRequester drops candidates sharing the requester's id.
func WithExcludeRequester(exclude bool) Option {
	return func(m *Matcher) {
		m.excludeRequester = exclude
	}
}

// setWeight keeps scores non-negative and finite. Values outside [0, MaxWeight] are ignored.
func setWeight(dst *float64, v float64) {
	if v >= 0 && v <= MaxWeight && !math.IsInf(v, 0) {
		*dst = v
	}
}

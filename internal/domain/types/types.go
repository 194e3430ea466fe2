// Package types contains common types used across the application
package types

// Recommendation is the public shape of a recommended study buddy.
// Fields are an explicit allow-list; nothing else from a profile is exposed.
type Recommendation struct {
	ID          string   `json:"_id"`
	FirstName   string   `json:"firstname"`
	LastName    string   `json:"lastname"`
	Department  string   `json:"dept"`
	Classes     []string `json:"classes"`
	Mentor      bool     `json:"mentor"`
	CurrentYear string   `json:"current_year"`
	Interests   []string `json:"interests"`
	Score       float64  `json:"score"`
}

// RecommendationResult is the reply for one requester. Message is set when
// there were no candidates to rank.
type RecommendationResult struct {
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// BatchEntry is one requester's outcome within a batch request.
type BatchEntry struct {
	UserID string `json:"user_id"`
	RecommendationResult
	Error string `json:"error,omitempty"`
}

// PublicProfile is the profile shape returned by read endpoints.
type PublicProfile struct {
	ID          string   `json:"_id"`
	FirstName   string   `json:"firstname"`
	LastName    string   `json:"lastname"`
	Department  string   `json:"dept"`
	CurrentYear string   `json:"current_year"`
	Classes     []string `json:"classes"`
	Interests   []string `json:"interests"`
	Mentor      bool     `json:"mentor"`
}

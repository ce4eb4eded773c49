package models

import "time"

// Job states. The authoritative state is which directory the document
// lives in, not a field; these constants name those directories.
const (
	JobStatePending = "pending"
	JobStateClaimed = "claimed"
	JobStateDone    = "done"
)

// Job priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Job complexities
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// Job represents one unit of work handed off between agents.
// Documents are YAML so operators can edit them by hand.
type Job struct {
	ID          string    `yaml:"id"`
	CreatedAt   time.Time `yaml:"created_at"`
	CreatedBy   string    `yaml:"created_by"`
	Priority    string    `yaml:"priority"`
	Complexity  string    `yaml:"complexity"`
	ModelTier   string    `yaml:"recommended_model_tier,omitempty"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description,omitempty"`
	DependsOn   []string  `yaml:"depends_on,omitempty"`

	// Set atomically at claim time; both absent while pending.
	ClaimedBy string    `yaml:"claimed_by,omitempty"`
	ClaimedAt time.Time `yaml:"claimed_at,omitempty"`

	// Set together at completion; both absent until done.
	CompletedAt time.Time `yaml:"completed_at,omitempty"`
	Result      string    `yaml:"result,omitempty"`
}

// RecommendedTier returns the tier hint for capability matching: the
// explicit recommendation when present, otherwise one derived from the
// declared complexity.
func (j *Job) RecommendedTier() string {
	if j.ModelTier != "" {
		return j.ModelTier
	}
	switch j.Complexity {
	case ComplexitySimple:
		return TierFast
	case ComplexityComplex:
		return TierDeep
	default:
		return TierBalanced
	}
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidComplexity reports whether c is a known complexity.
func ValidComplexity(c string) bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	}
	return false
}

package providers

import "context"

// SpecialtyRequest carries what the patient reported
type SpecialtyRequest struct {
	Symptoms string
	Age      *int
	Gender   string
}

// SpecialtyRecommender maps free-text symptoms to a single specialty label.
// An empty label means no recommendation.
type SpecialtyRecommender interface {
	RecommendSpecialty(ctx context.Context, req SpecialtyRequest) (string, error)
}

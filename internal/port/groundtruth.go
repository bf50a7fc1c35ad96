package port

import "context"

// GroundTruthStore looks up the canonical JSON for a document identifier.
// A miss returns (_, false, nil); it is an expected state, not an error.
type GroundTruthStore interface {
	Lookup(ctx context.Context, documentID string) (string, bool, error)
}

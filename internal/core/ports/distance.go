package ports

import "context"

// DistanceProvider returns the travel distance in kilometres between two
// normalized addresses. Implementations may block on the network and must
// honour ctx cancellation.
type DistanceProvider interface {
	Distance(ctx context.Context, origin, destination string) (float64, error)
}

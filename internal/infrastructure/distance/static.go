package distance

import "context"

// Static returns the same distance for every pair. It exists for local runs
// and tests and is only selected through configuration.
type Static struct {
	Km float64
}

func (s Static) Distance(ctx context.Context, _, _ string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.Km, nil
}

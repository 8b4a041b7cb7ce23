package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/99minutos/bulk-shipping/internal/api/metrics"
	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

// distanceLookup bounds every provider call with its own timeout and turns
// provider failures into row-level rejections.
type distanceLookup struct {
	provider ports.DistanceProvider
	timeout  time.Duration
}

func (d distanceLookup) km(ctx context.Context, origin, destination string) (float64, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	km, err := d.provider.Distance(ctx, origin, destination)
	metrics.DistanceLookupDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		metrics.DistanceLookupsTotal.WithLabelValues("timeout").Inc()
		return 0, domain.Reject(domain.ErrDistanceLookupFailed,
			fmt.Sprintf("Distance lookup timed out after %s", d.timeout))
	case err != nil:
		metrics.DistanceLookupsTotal.WithLabelValues("error").Inc()
		return 0, domain.Reject(domain.ErrDistanceLookupFailed, err.Error())
	case math.IsNaN(km) || math.IsInf(km, 0) || km < 0:
		metrics.DistanceLookupsTotal.WithLabelValues("invalid").Inc()
		return 0, domain.Reject(domain.ErrDistanceLookupFailed,
			fmt.Sprintf("Distance provider returned an invalid distance (%v)", km))
	}

	metrics.DistanceLookupsTotal.WithLabelValues("ok").Inc()
	return km, nil
}

// withPrefix keeps the rejection kind of a *domain.RowError and prefixes its reason.
func withPrefix(err error, prefix string) error {
	var re *domain.RowError
	if errors.As(err, &re) {
		return domain.Reject(re.Kind, prefix+re.Reason)
	}
	return err
}

package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/weather-dashboard/internal/weather"
	"golang.org/x/time/rate"
)

// Processor turns one region into a forecast. Implementations must be safe
// for concurrent use; every worker shares the same Processor.
type Processor interface {
	Process(ctx context.Context, region weather.Region) (weather.Forecast, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, region weather.Region) (weather.Forecast, error)

func (f ProcessorFunc) Process(ctx context.Context, region weather.Region) (weather.Forecast, error) {
	return f(ctx, region)
}

// rateLimitWait bounds how long a request queues for a token before it is
// rejected as rate limited.
const rateLimitWait = 2 * time.Second

type rateLimited struct {
	next    Processor
	limiter *rate.Limiter
}

// RateLimited wraps p with a token bucket of rps requests per second and the
// given burst. Requests that cannot get a token in time fail with a
// rate_limited ServerError.
func RateLimited(p Processor, rps float64, burst int) Processor {
	if burst < 1 {
		burst = 1
	}
	return &rateLimited{next: p, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *rateLimited) Process(ctx context.Context, region weather.Region) (weather.Forecast, error) {
	waitCtx, cancel := context.WithTimeout(ctx, rateLimitWait)
	defer cancel()
	if err := r.limiter.Wait(waitCtx); err != nil {
		if ctx.Err() != nil {
			return weather.Forecast{}, fmt.Errorf("rate limit wait canceled: %w", ctx.Err())
		}
		return weather.Forecast{}, weather.NewServerError(weather.CodeRateLimited, "too many requests for %s", region.Name())
	}
	return r.next.Process(ctx, region)
}

// asServerError maps any processing failure onto the wire error codes.
func asServerError(err error) *weather.ServerError {
	var serr *weather.ServerError
	switch {
	case errors.As(err, &serr):
		return serr
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return weather.NewServerError(weather.CodeUnavailable, "server shutting down")
	default:
		return weather.NewServerError(weather.CodeInternal, "%v", err)
	}
}

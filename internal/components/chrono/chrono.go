package chrono

import (
	"context"
	"time"
	_ "time/tzdata"
)

// PortalTimezone is the timezone the student portal reports dates in.
const PortalTimezone = "Asia/Baku"

// API hides the wall clock so delays and timestamps can be faked in tests.
//
// note: fault injection point
type API interface {
	// Now returns the current time in the portal's timezone.
	Now() time.Time
	Location() *time.Location
	// Sleep blocks for `d` or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// StandardImpl is API backed by the real clock.
type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl() (StandardImpl, error) {
	location, err := time.LoadLocation(PortalTimezone)
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: location}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

func (s StandardImpl) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package chrono

import (
	"context"
	"sync"
	"time"
)

// FakeImpl is an API whose clock only moves when Sleep is called, it records every sleep.
type FakeImpl struct {
	lock   *sync.Mutex
	now    *time.Time
	sleeps *[]time.Duration
}

func NewFakeImpl(start time.Time) FakeImpl {
	return FakeImpl{
		lock:   &sync.Mutex{},
		now:    &start,
		sleeps: &[]time.Duration{},
	}
}

func (f FakeImpl) Now() time.Time {
	f.lock.Lock()
	defer f.lock.Unlock()
	return *f.now
}

func (f FakeImpl) Location() *time.Location {
	return f.Now().Location()
}

func (f FakeImpl) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	*f.sleeps = append(*f.sleeps, d)
	*f.now = f.now.Add(d)
	return nil
}

// Sleeps returns every duration passed to Sleep so far.
func (f FakeImpl) Sleeps() []time.Duration {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]time.Duration(nil), *f.sleeps...)
}

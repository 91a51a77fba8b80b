package chrono

import (
	"context"
	"kabinet-assist/internal/components/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImpl(t *testing.T) {
	impl, err := NewStandardImpl()
	require.NoError(t, err)
	require.Equal(t, "Asia/Baku", impl.Location().String())
	require.Equal(t, impl.Location(), impl.Now().Location())

	require.NoError(t, impl.Sleep(context.Background(), time.Millisecond))
	require.NoError(t, impl.Sleep(context.Background(), 0))
}

func TestStandardImplSleepCanceled(t *testing.T) {
	impl, err := NewStandardImpl()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err = impl.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Minute)
}

func TestFakeImpl(t *testing.T) {
	start := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	fake := NewFakeImpl(start)

	require.NoError(t, fake.Sleep(context.Background(), 200*time.Millisecond))
	require.NoError(t, fake.Sleep(context.Background(), time.Second))
	require.Equal(t, start.Add(1200*time.Millisecond), fake.Now())
	require.Equal(t, []time.Duration{200 * time.Millisecond, time.Second}, fake.Sleeps())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, fake.Sleep(ctx, time.Second), context.Canceled)
	require.Len(t, fake.Sleeps(), 2)
}

func TestStandardCron(t *testing.T) {
	tel := telemetry.NewTestAPI()
	scheduler := NewStandardCron(tel, time.UTC)
	defer scheduler.Stop()

	require.NoError(t, scheduler.Cron("@every 10ms", func() {}))
	require.NoError(t, scheduler.Cron("0 8 * * 1", func() {}))

	err := scheduler.Cron("every monday", func() {})
	require.Error(t, err)
	require.Contains(t, err.Error(), "every monday")
}

func TestStandardCronRecoversPanics(t *testing.T) {
	tel := telemetry.NewTestAPI()
	scheduler := NewStandardCron(tel, time.UTC)

	ran := make(chan struct{}, 1)
	require.NoError(t, scheduler.Cron("@every 10ms", func() {
		select {
		case ran <- struct{}{}:
			panic("report job exploded")
		default:
		}
	}))

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}
	<-scheduler.Stop().Done()
	require.True(t, tel.Has(telemetry.REPORT_BROKEN, "cron.job"), tel.String())
}

package services

import (
	"context"
	"testing"
	"time"

	"delivery-tracking-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTrackerHarness(clients []domain.Client) (*Tracker, *fakeStopEventRepo, *func() time.Time) {
	events := newFakeStopEventRepo()
	positions := newFakePositionRepo()
	deliveries := newFakeDeliveryRepo()

	now := func() time.Time { return ledgerEpoch }
	nowFn := &now

	ledger := &StopEventLedger{
		Events:     events,
		Positions:  positions,
		Deliveries: deliveries,
		Now:        func() time.Time { return (*nowFn)() },
	}
	tracker := &Tracker{
		Positions: positions,
		Clients:   &fakeClientRepo{clients: clients},
		Ledger:    ledger,
		Now:       func() time.Time { return (*nowFn)() },
	}
	return tracker, events, nowFn
}

func TestTrackerFirstSampleNeverDetects(t *testing.T) {
	tracker, events, _ := newTrackerHarness([]domain.Client{
		{ID: 1, Latitude: ptrFloat(-23.564003), Longitude: ptrFloat(-46.652267)},
	})

	sample, event, err := tracker.RecordPosition(context.Background(), domain.Coordinate{Lat: -23.564003, Lon: -46.652267})

	require.NoError(t, err)
	require.Equal(t, 1, sample.PositionID)
	require.Nil(t, event)
	require.Empty(t, events.events)
}

func TestTrackerDetectsStopOnSecondSample(t *testing.T) {
	tracker, events, nowFn := newTrackerHarness([]domain.Client{
		{ID: 1, Latitude: ptrFloat(-23.564003), Longitude: ptrFloat(-46.652267)},
	})

	_, _, err := tracker.RecordPosition(context.Background(), domain.Coordinate{Lat: -23.564003, Lon: -46.652267})
	require.NoError(t, err)

	*nowFn = func() time.Time { return ledgerEpoch.Add(3 * time.Minute) }

	sample, event, err := tracker.RecordPosition(context.Background(), domain.Coordinate{Lat: -23.564010, Lon: -46.652267})
	require.NoError(t, err)
	require.Equal(t, 2, sample.PositionID)

	require.NotNil(t, event)
	require.Equal(t, 1, event.ClientID)
	require.Equal(t, 2, event.PositionID)
	require.Len(t, events.events, 1)
}

func TestTrackerMovingAgentProducesNoEvent(t *testing.T) {
	tracker, events, nowFn := newTrackerHarness([]domain.Client{
		{ID: 1, Latitude: ptrFloat(-23.564003), Longitude: ptrFloat(-46.652267)},
	})

	_, _, err := tracker.RecordPosition(context.Background(), domain.Coordinate{Lat: -23.564003, Lon: -46.652267})
	require.NoError(t, err)

	*nowFn = func() time.Time { return ledgerEpoch.Add(3 * time.Minute) }

	// A kilometer of travel between pings is not a dwell.
	_, event, err := tracker.RecordPosition(context.Background(), domain.Coordinate{Lat: -23.574003, Lon: -46.652267})
	require.NoError(t, err)
	require.Nil(t, event)
	require.Empty(t, events.events)
}

func TestTrackerSuppressedDuplicateReturnsNoEvent(t *testing.T) {
	tracker, events, nowFn := newTrackerHarness([]domain.Client{
		{ID: 1, Latitude: ptrFloat(-23.564003), Longitude: ptrFloat(-46.652267)},
	})

	coord := domain.Coordinate{Lat: -23.564003, Lon: -46.652267}

	_, _, err := tracker.RecordPosition(context.Background(), coord)
	require.NoError(t, err)

	*nowFn = func() time.Time { return ledgerEpoch.Add(3 * time.Minute) }
	_, first, err := tracker.RecordPosition(context.Background(), coord)
	require.NoError(t, err)
	require.NotNil(t, first)

	*nowFn = func() time.Time { return ledgerEpoch.Add(6 * time.Minute) }
	_, second, err := tracker.RecordPosition(context.Background(), coord)
	require.NoError(t, err)
	require.Nil(t, second)
	require.Len(t, events.events, 1)
}

func TestTrackerClientsWithoutCoordinatesIgnored(t *testing.T) {
	tracker, events, nowFn := newTrackerHarness([]domain.Client{
		{ID: 1}, // never geocoded
	})

	coord := domain.Coordinate{Lat: -23.564003, Lon: -46.652267}

	_, _, err := tracker.RecordPosition(context.Background(), coord)
	require.NoError(t, err)

	*nowFn = func() time.Time { return ledgerEpoch.Add(3 * time.Minute) }

	_, event, err := tracker.RecordPosition(context.Background(), coord)
	require.NoError(t, err)
	require.Nil(t, event)
	require.Empty(t, events.events)
}

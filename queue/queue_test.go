package queue

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchside/matchday/localstore"
	"github.com/pitchside/matchday/models"
)

// fakeRemote records every batch it is handed and can be told to fail.
type fakeRemote struct {
	mu      sync.Mutex
	batches [][]models.MatchEvent
	err     error
}

func (f *fakeRemote) CreateBatch(_ context.Context, events []models.MatchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	copied := make([]models.MatchEvent, len(events))
	copy(copied, events)
	f.batches = append(f.batches, copied)
	return nil
}

func (f *fakeRemote) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeRemote) allEvents() []models.MatchEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.MatchEvent
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

func newTestQueue(t *testing.T) (*Queue, *fakeRemote) {
	t.Helper()
	remote := &fakeRemote{}
	return New(localstore.NewMemoryStore(), remote, nil), remote
}

func goalPayload(minute int) models.EventPayload {
	return models.EventPayload{Kind: models.EventGoal, Minute: minute, Side: models.SideHome}
}

func TestEnqueue_LocalOnly(t *testing.T) {
	q, remote := newTestQueue(t)

	ev, err := q.Enqueue(10, goalPayload(12))
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, 10, ev.MatchID)
	assert.False(t, ev.Synced)
	assert.False(t, ev.CreatedAt.IsZero())

	// Nothing reaches the remote store until a sync is asked for.
	assert.Empty(t, remote.allEvents())

	events, err := q.GetAll(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev.ID, events[0].ID)
}

func TestEnqueue_PreservesOrderAndUniqueIDs(t *testing.T) {
	q, _ := newTestQueue(t)

	seen := make(map[string]bool)
	for minute := 1; minute <= 20; minute++ {
		ev, err := q.Enqueue(7, goalPayload(minute))
		require.NoError(t, err)
		require.False(t, seen[ev.ID], "duplicate event id %s", ev.ID)
		seen[ev.ID] = true
	}

	events, err := q.GetAll(7)
	require.NoError(t, err)
	require.Len(t, events, 20)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Payload.Minute)
	}
}

func TestSync_MarksEventsAndIsIdempotent(t *testing.T) {
	q, remote := newTestQueue(t)
	ctx := context.Background()

	for minute := 1; minute <= 3; minute++ {
		_, err := q.Enqueue(5, goalPayload(minute))
		require.NoError(t, err)
	}

	res, err := q.Sync(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 3, Pending: 0}, res)
	assert.Len(t, remote.allEvents(), 3)

	// Re-syncing an already-synced queue is a no-op.
	res, err = q.Sync(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 0, Pending: 0}, res)
	assert.Len(t, remote.allEvents(), 3)

	state, err := q.SyncState(5)
	require.NoError(t, err)
	assert.Equal(t, SyncState{Total: 3, Unsynced: 0}, state)
}

func TestSync_RemoteFailureLeavesEverythingUnsynced(t *testing.T) {
	q, remote := newTestQueue(t)
	ctx := context.Background()

	for minute := 1; minute <= 4; minute++ {
		_, err := q.Enqueue(5, goalPayload(minute))
		require.NoError(t, err)
	}

	remote.fail(errors.New("network down"))
	res, err := q.Sync(ctx, 5)
	require.Error(t, err)
	assert.Equal(t, SyncResult{Synced: 0, Pending: 4}, res)

	state, err := q.SyncState(5)
	require.NoError(t, err)
	assert.Equal(t, SyncState{Total: 4, Unsynced: 4}, state)

	// Connectivity returns: the very same batch goes through.
	remote.fail(nil)
	res, err = q.Sync(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 4, Pending: 0}, res)
	assert.Len(t, remote.allEvents(), 4)
}

func TestSync_ClientIDCarriesLocalID(t *testing.T) {
	q, remote := newTestQueue(t)

	ev, err := q.Enqueue(9, goalPayload(44))
	require.NoError(t, err)

	_, err = q.Sync(context.Background(), 9)
	require.NoError(t, err)

	rows := remote.allEvents()
	require.Len(t, rows, 1)
	assert.Equal(t, ev.ID, rows[0].ClientID)
	assert.Equal(t, models.EventGoal, rows[0].Kind)
	assert.Equal(t, 44, rows[0].Minute)
	require.NotNil(t, rows[0].Side)
	assert.Equal(t, models.SideHome, *rows[0].Side)
}

func TestSync_SkipsKindlessPayloads(t *testing.T) {
	q, remote := newTestQueue(t)
	ctx := context.Background()

	_, err := q.Enqueue(3, goalPayload(10))
	require.NoError(t, err)
	_, err = q.Enqueue(3, models.EventPayload{Minute: 20}) // no kind
	require.NoError(t, err)
	_, err = q.Enqueue(3, goalPayload(30))
	require.NoError(t, err)

	res, err := q.Sync(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 2, Pending: 1}, res)
	assert.Len(t, remote.allEvents(), 2)

	// The kindless payload stays local and keeps the unsynced counter up.
	state, err := q.SyncState(3)
	require.NoError(t, err)
	assert.Equal(t, SyncState{Total: 3, Unsynced: 1}, state)

	// And it keeps being reported, not retried into the batch.
	res, err = q.Sync(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 0, Pending: 1}, res)
	assert.Len(t, remote.allEvents(), 2)
}

func TestSync_OnlyKindlessPayloads(t *testing.T) {
	q, remote := newTestQueue(t)

	_, err := q.Enqueue(3, models.EventPayload{Minute: 5})
	require.NoError(t, err)

	res, err := q.Sync(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 0, Pending: 1}, res)
	assert.Empty(t, remote.allEvents())
}

func TestSync_EmptyQueue(t *testing.T) {
	q, remote := newTestQueue(t)

	res, err := q.Sync(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{}, res)
	assert.Empty(t, remote.allEvents())
}

func TestSync_ConcurrentCallsSerialize(t *testing.T) {
	q, remote := newTestQueue(t)
	ctx := context.Background()

	for minute := 1; minute <= 10; minute++ {
		_, err := q.Enqueue(1, goalPayload(minute))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = q.Sync(ctx, 1)
		}()
	}
	wg.Wait()

	// In-process races cannot duplicate a batch: exactly one call wins.
	assert.Len(t, remote.allEvents(), 10)

	state, err := q.SyncState(1)
	require.NoError(t, err)
	assert.Equal(t, SyncState{Total: 10, Unsynced: 0}, state)
}

func TestSyncAll_CoversEveryMatch(t *testing.T) {
	q, remote := newTestQueue(t)
	ctx := context.Background()

	for _, matchID := range []int{3, 1, 2} {
		for minute := 1; minute <= 2; minute++ {
			_, err := q.Enqueue(matchID, goalPayload(minute))
			require.NoError(t, err)
		}
	}

	res, err := q.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 6, Pending: 0}, res)
	assert.Len(t, remote.allEvents(), 6)
}

func TestSyncAll_ContinuesPastFailingMatch(t *testing.T) {
	store := localstore.NewMemoryStore()
	remote := &fakeRemote{}
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))
	q := New(store, remote, logger)
	ctx := context.Background()

	_, err := q.Enqueue(1, goalPayload(5))
	require.NoError(t, err)
	_, err = q.Enqueue(2, goalPayload(6))
	require.NoError(t, err)

	// Poison match 1's stored collection so its sync fails to decode.
	require.NoError(t, store.Set("match_events:1", []byte("{not json")))

	res, err := q.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 1, Pending: 0}, res)

	rows := remote.allEvents()
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].MatchID)

	// The skipped match shows up in the log, it is not dropped silently.
	assert.Contains(t, logBuf.String(), "match sync skipped")
	assert.Contains(t, logBuf.String(), `"match_id":1`)
}

func TestQueue_SurvivesStoreReopen(t *testing.T) {
	store := localstore.NewMemoryStore()
	remote := &fakeRemote{}

	q := New(store, remote, nil)
	ev, err := q.Enqueue(4, goalPayload(15))
	require.NoError(t, err)

	// A new queue over the same store sees the pending event, as after an
	// app restart.
	q2 := New(store, remote, nil)
	events, err := q2.GetAll(4)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev.ID, events[0].ID)
	assert.False(t, events[0].Synced)

	res, err := q2.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 1, Pending: 0}, res)
}

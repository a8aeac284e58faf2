// Package queue implements the offline event queue: live match events are
// written to on-device storage first and pushed to the remote store later,
// so recording latency never depends on network state.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pitchside/matchday/localstore"
	"github.com/pitchside/matchday/models"
)

const (
	matchKeyPrefix = "match_events:"
	indexKey       = "match_events:index"
)

// RemoteWriter is the remote-store side of a sync: a single batched insert
// of transformed event rows. The production implementation is the
// match_events repository; it must either accept the whole batch or
// return an error.
type RemoteWriter interface {
	CreateBatch(ctx context.Context, events []models.MatchEvent) error
}

// SyncState summarizes a match's local queue for UI badges.
type SyncState struct {
	Total    int `json:"total"`
	Unsynced int `json:"unsynced"`
}

// SyncResult reports the outcome of one Sync call. Pending counts events
// still unsynced afterwards, which includes payloads skipped for having no
// event kind.
type SyncResult struct {
	Synced  int `json:"synced"`
	Pending int `json:"pending"`
}

// Queue buffers QueuedEvents per match in a localstore.Store and
// reconciles them against the remote store on demand.
//
// Sync is all-or-nothing per batch: no event is marked synced unless the
// remote write succeeded, and a failed batch is retried wholesale next
// time. The read-modify-write cycle is serialized per match, so two
// in-process Sync calls for the same match cannot interleave; duplicate
// remote writes remain possible across processes and are tolerated (the
// client_id idempotency constraint on the remote table absorbs them).
type Queue struct {
	store  localstore.Store
	remote RemoteWriter
	logger *slog.Logger

	mu      sync.Mutex
	locks   map[int]*sync.Mutex
	indexMu sync.Mutex
}

func New(store localstore.Store, remote RemoteWriter, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		store:  store,
		remote: remote,
		logger: logger,
		locks:  make(map[int]*sync.Mutex),
	}
}

func (q *Queue) matchLock(matchID int) *sync.Mutex {
	q.mu.Lock()
	defer q.mu.Unlock()
	l, ok := q.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		q.locks[matchID] = l
	}
	return l
}

// Enqueue appends a new unsynced event to the match's local collection and
// returns it. No remote I/O happens on this path and the payload is not
// validated; a kind-less payload is accepted here and skipped at sync time.
func (q *Queue) Enqueue(matchID int, payload models.EventPayload) (models.QueuedEvent, error) {
	lock := q.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return models.QueuedEvent{}, fmt.Errorf("generate event id: %w", err)
	}
	event := models.QueuedEvent{
		ID:        id.String(),
		MatchID:   matchID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
		Synced:    false,
	}

	events, err := q.load(matchID)
	if err != nil {
		return models.QueuedEvent{}, err
	}
	events = append(events, event)
	if err := q.persist(matchID, events); err != nil {
		return models.QueuedEvent{}, err
	}
	if err := q.addToIndex(matchID); err != nil {
		return models.QueuedEvent{}, err
	}
	return event, nil
}

// GetAll returns every event for the match, synced and unsynced, in
// creation order.
func (q *Queue) GetAll(matchID int) ([]models.QueuedEvent, error) {
	lock := q.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()
	return q.load(matchID)
}

// SyncState returns total and unsynced counts for the match.
func (q *Queue) SyncState(matchID int) (SyncState, error) {
	events, err := q.GetAll(matchID)
	if err != nil {
		return SyncState{}, err
	}
	state := SyncState{Total: len(events)}
	for _, ev := range events {
		if !ev.Synced {
			state.Unsynced++
		}
	}
	return state, nil
}

// Sync pushes the match's unsynced events to the remote store in a single
// batch. Payloads without an event kind are left out of the batch but kept
// locally, permanently unsynced unless corrected externally. On remote
// failure nothing is marked synced and the error is returned alongside a
// zero result; the whole batch is retried on the next call.
func (q *Queue) Sync(ctx context.Context, matchID int) (SyncResult, error) {
	lock := q.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	events, err := q.load(matchID)
	if err != nil {
		return SyncResult{}, err
	}

	var (
		batch   []models.MatchEvent
		indices []int
		skipped int
	)
	for i, ev := range events {
		if ev.Synced {
			continue
		}
		row, ok := toMatchEvent(ev)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, row)
		indices = append(indices, i)
	}

	if skipped > 0 {
		q.logger.Warn("skipping events with no kind during sync",
			slog.Int("match_id", matchID),
			slog.Int("skipped", skipped))
	}
	if len(batch) == 0 {
		return SyncResult{Synced: 0, Pending: skipped}, nil
	}

	// The remote write is issued once and awaited before any local
	// mutation, so a failure leaves every event untouched.
	if err := q.remote.CreateBatch(ctx, batch); err != nil {
		q.logger.Error("remote event batch write failed",
			slog.Int("match_id", matchID),
			slog.Int("batch_size", len(batch)),
			slog.Any("error", err))
		return SyncResult{Synced: 0, Pending: len(batch) + skipped}, fmt.Errorf("sync match %d: %w", matchID, err)
	}

	for _, i := range indices {
		events[i].Synced = true
	}
	if err := q.persist(matchID, events); err != nil {
		// The remote accepted the batch but the local flag flip did not
		// land; the events stay unsynced and the next sync re-sends them,
		// relying on the remote idempotency constraint.
		return SyncResult{Synced: 0, Pending: len(batch) + skipped}, err
	}

	q.logger.Info("event batch synced",
		slog.Int("match_id", matchID),
		slog.Int("synced", len(batch)),
		slog.Int("pending", skipped))
	return SyncResult{Synced: len(batch), Pending: skipped}, nil
}

// SyncAll runs Sync for every match that ever enqueued an event. Errors
// are logged per match and do not stop the loop; the aggregate result is
// returned. Used by the periodic retry scheduler.
func (q *Queue) SyncAll(ctx context.Context) (SyncResult, error) {
	matchIDs, err := q.loadIndex()
	if err != nil {
		return SyncResult{}, err
	}
	var total SyncResult
	for _, matchID := range matchIDs {
		res, err := q.Sync(ctx, matchID)
		if err != nil {
			q.logger.Warn("match sync skipped",
				slog.Int("match_id", matchID),
				slog.Any("error", err))
			continue
		}
		total.Synced += res.Synced
		total.Pending += res.Pending
	}
	return total, nil
}

func toMatchEvent(ev models.QueuedEvent) (models.MatchEvent, bool) {
	if ev.Payload.Kind == "" {
		return models.MatchEvent{}, false
	}
	row := models.MatchEvent{
		MatchID:   ev.MatchID,
		ClientID:  ev.ID,
		Kind:      ev.Payload.Kind,
		Minute:    ev.Payload.Minute,
		PlayerID:  ev.Payload.PlayerID,
		CreatedAt: ev.CreatedAt,
	}
	if ev.Payload.Side != "" {
		side := ev.Payload.Side
		row.Side = &side
	}
	if ev.Payload.Detail != "" {
		detail := ev.Payload.Detail
		row.Detail = &detail
	}
	return row, true
}

func matchKey(matchID int) string {
	return fmt.Sprintf("%s%d", matchKeyPrefix, matchID)
}

func (q *Queue) load(matchID int) ([]models.QueuedEvent, error) {
	raw, ok, err := q.store.Get(matchKey(matchID))
	if err != nil {
		return nil, fmt.Errorf("load events for match %d: %w", matchID, err)
	}
	if !ok {
		return []models.QueuedEvent{}, nil
	}
	var events []models.QueuedEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decode events for match %d: %w", matchID, err)
	}
	return events, nil
}

func (q *Queue) persist(matchID int, events []models.QueuedEvent) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events for match %d: %w", matchID, err)
	}
	if err := q.store.Set(matchKey(matchID), raw); err != nil {
		return fmt.Errorf("persist events for match %d: %w", matchID, err)
	}
	return nil
}

func (q *Queue) loadIndex() ([]int, error) {
	raw, ok, err := q.store.Get(indexKey)
	if err != nil {
		return nil, fmt.Errorf("load queue index: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var matchIDs []int
	if err := json.Unmarshal(raw, &matchIDs); err != nil {
		return nil, fmt.Errorf("decode queue index: %w", err)
	}
	return matchIDs, nil
}

// addToIndex registers a match in the global index key. Guarded by its own
// mutex because enqueues for different matches hold different match locks.
func (q *Queue) addToIndex(matchID int) error {
	q.indexMu.Lock()
	defer q.indexMu.Unlock()
	matchIDs, err := q.loadIndex()
	if err != nil {
		return err
	}
	for _, id := range matchIDs {
		if id == matchID {
			return nil
		}
	}
	matchIDs = append(matchIDs, matchID)
	sort.Ints(matchIDs)
	raw, err := json.Marshal(matchIDs)
	if err != nil {
		return fmt.Errorf("encode queue index: %w", err)
	}
	if err := q.store.Set(indexKey, raw); err != nil {
		return fmt.Errorf("persist queue index: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"sort"
	"sync"

	"github.com/pitchside/matchday/models"
	"github.com/pitchside/matchday/repositories"
)

// In-memory repository fakes shared by the service tests. They hold plain
// maps behind a mutex and reproduce the sentinel errors the Postgres
// implementations return, so services see the same error surface either way.

type fakeTournamentRepo struct {
	mu          sync.Mutex
	nextID      int
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{nextID: 1, tournaments: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	copied := *t
	r.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(_ context.Context) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, id int, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	nextID  int
	matches map[int]*models.Match

	updateErr error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, matches: make(map[int]*models.Match)}
}

func (r *fakeMatchRepo) Create(_ context.Context, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	copied := *m
	r.matches[m.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == nil || *m.TournamentID != tournamentID {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) ListCompletedByTournament(_ context.Context, tournamentID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == nil || *m.TournamentID != tournamentID || m.Status != models.MatchCompleted {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMatchRepo) UpdateScoreStatus(_ context.Context, id int, homeScore, awayScore *int, status models.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.HomeScore = homeScore
	m.AwayScore = awayScore
	m.Status = status
	return nil
}

type standingKey struct {
	tournamentID int
	teamID       int
}

type fakeStandingRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[standingKey]*models.Standing

	upsertErr error
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{nextID: 1, rows: make(map[standingKey]*models.Standing)}
}

func (r *fakeStandingRepo) GetByTournamentAndTeam(_ context.Context, _ repositories.SQLExecutor, tournamentID, teamID int) (*models.Standing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[standingKey{tournamentID, teamID}]
	if !ok {
		return nil, repositories.ErrStandingNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStandingRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, ranked bool) ([]*models.Standing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Standing
	for _, s := range r.rows {
		if s.TournamentID != tournamentID {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	if ranked {
		sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	}
	return out, nil
}

func (r *fakeStandingRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, standings []*models.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range standings {
		copied := *s
		copied.ID = r.nextID
		r.nextID++
		r.rows[standingKey{s.TournamentID, s.TeamID}] = &copied
	}
	return nil
}

func (r *fakeStandingRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, standing *models.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	key := standingKey{standing.TournamentID, standing.TeamID}
	existing, ok := r.rows[key]
	copied := *standing
	if ok {
		// Position is deliberately left as-is on upsert, matching the
		// SQL ON CONFLICT column list.
		copied.ID = existing.ID
		copied.Position = existing.Position
	} else {
		copied.ID = r.nextID
		r.nextID++
	}
	r.rows[key] = &copied
	return nil
}

func (r *fakeStandingRepo) DeleteByTournamentID(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.rows {
		if key.tournamentID == tournamentID {
			delete(r.rows, key)
		}
	}
	return nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	nextID int
	teams  map[int]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{nextID: 1, teams: make(map[int]*models.Team)}
}

func (r *fakeTeamRepo) Create(_ context.Context, t *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.Name == t.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	t.ID = r.nextID
	r.nextID++
	copied := *t
	r.teams[t.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) List(_ context.Context) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, t *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[t.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	copied := *t
	r.teams[t.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) UpdateCrestKey(_ context.Context, id int, crestKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.CrestKey = crestKey
	return nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	nextID  int
	players map[int]*models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{nextID: 1, players: make(map[int]*models.Player)}
}

func (r *fakePlayerRepo) Create(_ context.Context, p *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	copied := *p
	r.players[p.ID] = &copied
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlayerRepo) ListByTeam(_ context.Context, teamID int) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Player
	for _, p := range r.players {
		if p.TeamID != teamID {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) Update(_ context.Context, p *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	copied := *p
	r.players[p.ID] = &copied
	return nil
}

func (r *fakePlayerRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}

type registration struct {
	tournamentID int
	teamID       int
}

type fakeTournamentTeamRepo struct {
	mu            sync.Mutex
	nextID        int
	registrations map[registration]*models.TournamentTeam
}

func newFakeTournamentTeamRepo() *fakeTournamentTeamRepo {
	return &fakeTournamentTeamRepo{nextID: 1, registrations: make(map[registration]*models.TournamentTeam)}
}

func (r *fakeTournamentTeamRepo) Create(_ context.Context, tt *models.TournamentTeam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := registration{tt.TournamentID, tt.TeamID}
	if _, ok := r.registrations[key]; ok {
		return repositories.ErrTournamentTeamConflict
	}
	tt.ID = r.nextID
	r.nextID++
	copied := *tt
	r.registrations[key] = &copied
	return nil
}

func (r *fakeTournamentTeamRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.TournamentTeam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TournamentTeam
	for key, tt := range r.registrations {
		if key.tournamentID != tournamentID {
			continue
		}
		copied := *tt
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (r *fakeTournamentTeamRepo) Exists(_ context.Context, tournamentID, teamID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.registrations[registration{tournamentID, teamID}]
	return ok, nil
}

func (r *fakeTournamentTeamRepo) Delete(_ context.Context, tournamentID, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := registration{tournamentID, teamID}
	if _, ok := r.registrations[key]; !ok {
		return repositories.ErrTournamentTeamNotFound
	}
	delete(r.registrations, key)
	return nil
}

type fakeLineupRepo struct {
	mu      sync.Mutex
	entries map[int][]*models.LineupEntry // keyed by match id

	replaceErr error
}

func newFakeLineupRepo() *fakeLineupRepo {
	return &fakeLineupRepo{entries: make(map[int][]*models.LineupEntry)}
}

func (r *fakeLineupRepo) ReplaceForMatchTeam(_ context.Context, matchID, teamID int, entries []*models.LineupEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return r.replaceErr
	}
	var kept []*models.LineupEntry
	for _, e := range r.entries[matchID] {
		if e.TeamID != teamID {
			kept = append(kept, e)
		}
	}
	for _, e := range entries {
		copied := *e
		copied.MatchID = matchID
		copied.TeamID = teamID
		kept = append(kept, &copied)
	}
	r.entries[matchID] = kept
	return nil
}

func (r *fakeLineupRepo) ListByMatch(_ context.Context, matchID int) ([]*models.LineupEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.LineupEntry, 0, len(r.entries[matchID]))
	for _, e := range r.entries[matchID] {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

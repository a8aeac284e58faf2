package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchside/matchday/models"
)

func newTournamentFixture(t *testing.T) (TournamentService, *fakeTeamRepo) {
	t.Helper()
	teamRepo := newFakeTeamRepo()
	svc := NewTournamentService(newFakeTournamentRepo(), newFakeTournamentTeamRepo(), teamRepo)
	return svc, teamRepo
}

func intPtr(v int) *int { return &v }

func TestCreateTournament_Defaults(t *testing.T) {
	svc, _ := newTournamentFixture(t)

	tournament, err := svc.Create(context.Background(), CreateTournamentInput{Name: "  Spring Cup  "})
	require.NoError(t, err)
	assert.Equal(t, "Spring Cup", tournament.Name)
	assert.Equal(t, models.TournamentScheduled, tournament.Status)
	assert.Equal(t, 3, tournament.PointsWin)
	assert.Equal(t, 1, tournament.PointsDraw)
	assert.Equal(t, 0, tournament.PointsLoss)
}

func TestCreateTournament_CustomPoints(t *testing.T) {
	svc, _ := newTournamentFixture(t)

	tournament, err := svc.Create(context.Background(), CreateTournamentInput{
		Name:       "Old Style League",
		PointsWin:  intPtr(2),
		PointsLoss: intPtr(-1),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tournament.PointsWin)
	assert.Equal(t, 1, tournament.PointsDraw) // default kept
	assert.Equal(t, -1, tournament.PointsLoss)
}

func TestCreateTournament_NameRequired(t *testing.T) {
	svc, _ := newTournamentFixture(t)
	_, err := svc.Create(context.Background(), CreateTournamentInput{Name: "   "})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	svc, _ := newTournamentFixture(t)
	ctx := context.Background()

	tournament, err := svc.Create(ctx, CreateTournamentInput{Name: "Cup"})
	require.NoError(t, err)

	// scheduled -> completed is not reachable directly.
	_, err = svc.UpdateStatus(ctx, tournament.ID, models.TournamentCompleted)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)

	updated, err := svc.UpdateStatus(ctx, tournament.ID, models.TournamentActive)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentActive, updated.Status)

	updated, err = svc.UpdateStatus(ctx, tournament.ID, models.TournamentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentCompleted, updated.Status)

	// Completed is terminal.
	_, err = svc.UpdateStatus(ctx, tournament.ID, models.TournamentActive)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)

	_, err = svc.UpdateStatus(ctx, tournament.ID, models.TournamentStatus("archived"))
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)
}

func TestRegisterTeam(t *testing.T) {
	svc, teamRepo := newTournamentFixture(t)
	ctx := context.Background()

	tournament, err := svc.Create(ctx, CreateTournamentInput{Name: "Cup"})
	require.NoError(t, err)

	team := &models.Team{Name: "Harbor FC"}
	require.NoError(t, teamRepo.Create(ctx, team))

	tt, err := svc.RegisterTeam(ctx, tournament.ID, team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, tt.TeamID)

	// Double registration is rejected.
	_, err = svc.RegisterTeam(ctx, tournament.ID, team.ID)
	assert.ErrorIs(t, err, ErrTeamAlreadyRegistered)

	// Unknown references.
	_, err = svc.RegisterTeam(ctx, tournament.ID, 404)
	assert.ErrorIs(t, err, ErrTeamNotFound)
	_, err = svc.RegisterTeam(ctx, 404, team.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	teams, err := svc.ListTeams(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	require.NotNil(t, teams[0].Team)
	assert.Equal(t, "Harbor FC", teams[0].Team.Name)
}

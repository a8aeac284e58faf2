package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchside/matchday/models"
)

func completedMatch(home, away, homeScore, awayScore int) *models.Match {
	hs, as := homeScore, awayScore
	return &models.Match{
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  &hs,
		AwayScore:  &as,
		Status:     models.MatchCompleted,
	}
}

func TestAccumulate_BasicScenario(t *testing.T) {
	// A beats B 2-1, B and C draw 0-0, A vs C not yet played.
	matches := []*models.Match{
		completedMatch(1, 2, 2, 1),
		completedMatch(2, 3, 0, 0),
		{HomeTeamID: 1, AwayTeamID: 3, Status: models.MatchScheduled},
	}

	rows := Accumulate(matches, DefaultPoints)
	require.Len(t, rows, 3)

	a := rows[1]
	assert.Equal(t, 1, a.Played)
	assert.Equal(t, 1, a.Won)
	assert.Equal(t, 2, a.GoalsFor)
	assert.Equal(t, 1, a.GoalsAgainst)
	assert.Equal(t, 1, a.GoalDiff)
	assert.Equal(t, 3, a.Points)
	assert.Equal(t, "W", a.Trail)

	b := rows[2]
	assert.Equal(t, 2, b.Played)
	assert.Equal(t, 0, b.Won)
	assert.Equal(t, 1, b.Drawn)
	assert.Equal(t, 1, b.Lost)
	assert.Equal(t, 1, b.Points)
	assert.Equal(t, "LD", b.Trail)

	c := rows[3]
	assert.Equal(t, 1, c.Played)
	assert.Equal(t, 1, c.Drawn)
	assert.Equal(t, 1, c.Points)
	assert.Equal(t, "D", c.Trail)
}

func TestAccumulate_SkipsMatchesWithoutResult(t *testing.T) {
	score := 1
	matches := []*models.Match{
		// Completed but score never recorded: excluded, not treated as 0-0.
		{HomeTeamID: 1, AwayTeamID: 2, Status: models.MatchCompleted},
		// Score present but match not completed.
		{HomeTeamID: 1, AwayTeamID: 2, HomeScore: &score, AwayScore: &score, Status: models.MatchInProgress},
	}
	rows := Accumulate(matches, DefaultPoints)
	assert.Empty(t, rows)
}

func TestAccumulate_EmptyInput(t *testing.T) {
	rows := Accumulate(nil, DefaultPoints)
	assert.Empty(t, rows)
	assert.Empty(t, Rank(rows))
}

func TestAccumulate_CustomAndNegativePoints(t *testing.T) {
	matches := []*models.Match{
		completedMatch(1, 2, 3, 0),
		completedMatch(2, 1, 1, 1),
	}
	pts := Points{Win: 2, Draw: 1, Loss: -1}

	rows := Accumulate(matches, pts)
	assert.Equal(t, 3, rows[1].Points)  // one win, one draw
	assert.Equal(t, 0, rows[2].Points)  // one loss, one draw
	assert.Equal(t, "WD", rows[1].Trail)
	assert.Equal(t, "LD", rows[2].Trail)
}

func TestApplyMatch_AgreesWithAccumulate(t *testing.T) {
	// The incremental path applies each result to rows carried over from
	// the previous state; after every step it must match a full recompute
	// over the prefix.
	matches := []*models.Match{
		completedMatch(1, 2, 2, 0),
		completedMatch(3, 1, 1, 1),
		completedMatch(2, 3, 4, 2),
		completedMatch(1, 3, 0, 3),
		completedMatch(2, 1, 2, 2),
		completedMatch(3, 2, 1, 0),
		completedMatch(1, 2, 5, 1),
	}

	incremental := make(map[int]*Row)
	get := func(teamID int) *Row {
		row, ok := incremental[teamID]
		if !ok {
			row = &Row{TeamID: teamID}
			incremental[teamID] = row
		}
		return row
	}

	for i, m := range matches {
		ApplyMatch(get(m.HomeTeamID), get(m.AwayTeamID), *m.HomeScore, *m.AwayScore, DefaultPoints)

		full := Accumulate(matches[:i+1], DefaultPoints)
		require.Len(t, incremental, len(full))
		for teamID, want := range full {
			got := incremental[teamID]
			require.NotNil(t, got, "team %d missing after match %d", teamID, i)
			assert.Equal(t, *want, *got, "team %d diverged after match %d", teamID, i)
		}
	}
}

func TestRank_Ordering(t *testing.T) {
	rows := map[int]*Row{
		// Same points as team 2, worse goal difference.
		1: {TeamID: 1, Points: 6, GoalDiff: 1, GoalsFor: 4},
		2: {TeamID: 2, Points: 6, GoalDiff: 3, GoalsFor: 5},
		// Fewer points, best goal difference: still last.
		3: {TeamID: 3, Points: 4, GoalDiff: 9, GoalsFor: 12},
	}

	ranked := Rank(rows)
	require.Len(t, ranked, 3)
	assert.Equal(t, []int{2, 1, 3}, []int{ranked[0].TeamID, ranked[1].TeamID, ranked[2].TeamID})
	assert.Equal(t, 1, ranked[0].Position)
	assert.Equal(t, 2, ranked[1].Position)
	assert.Equal(t, 3, ranked[2].Position)
}

func TestRank_GoalsForThenTeamIDTieBreak(t *testing.T) {
	rows := map[int]*Row{
		5: {TeamID: 5, Points: 3, GoalDiff: 0, GoalsFor: 2},
		2: {TeamID: 2, Points: 3, GoalDiff: 0, GoalsFor: 4},
		// Fully tied with team 9: lower id ranks first.
		7: {TeamID: 7, Points: 3, GoalDiff: 0, GoalsFor: 2},
		9: {TeamID: 9, Points: 3, GoalDiff: 0, GoalsFor: 2},
	}

	ranked := Rank(rows)
	got := make([]int, len(ranked))
	for i, r := range ranked {
		got[i] = r.TeamID
	}
	assert.Equal(t, []int{2, 5, 7, 9}, got)
}

func TestRank_Deterministic(t *testing.T) {
	build := func() map[int]*Row {
		rows := make(map[int]*Row)
		for id := 1; id <= 8; id++ {
			rows[id] = &Row{TeamID: id, Points: 3, GoalDiff: 0, GoalsFor: 1}
		}
		return rows
	}

	first := Rank(build())
	for run := 0; run < 10; run++ {
		again := Rank(build())
		for i := range first {
			require.Equal(t, first[i].TeamID, again[i].TeamID)
		}
	}
}

func TestLastFive(t *testing.T) {
	tests := []struct {
		trail    string
		expected string
	}{
		{"", ""},
		{"W", "W"},
		{"WDLWD", "WDLWD"},
		{"WWDLWDL", "DLWDL"},
		{"LLLLLLLLLW", "LLLLW"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, LastFive(tt.trail), "trail %q", tt.trail)
	}
}

func TestPointsFor(t *testing.T) {
	assert.Equal(t, DefaultPoints, PointsFor(nil))

	tr := &models.Tournament{PointsWin: 2, PointsDraw: 1, PointsLoss: 0}
	assert.Equal(t, Points{Win: 2, Draw: 1, Loss: 0}, PointsFor(tr))
}

func TestApplyResult_CountersStayConsistent(t *testing.T) {
	row := &Row{TeamID: 1}
	row.applyResult(2, 0, DefaultPoints)
	row.applyResult(1, 1, DefaultPoints)
	row.applyResult(0, 4, DefaultPoints)

	assert.Equal(t, 3, row.Played)
	assert.Equal(t, row.Won+row.Drawn+row.Lost, row.Played)
	assert.Equal(t, row.GoalsFor-row.GoalsAgainst, row.GoalDiff)
	assert.Equal(t, row.Won*3+row.Drawn*1, row.Points)
	assert.Equal(t, "WDL", row.Trail)
}

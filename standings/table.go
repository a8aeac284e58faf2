// Package standings holds the table computation core: turning completed
// match results into ranked per-team rows. It is pure in-memory
// arithmetic; loading matches and persisting rows is the standing
// service's job.
package standings

import (
	"sort"

	"github.com/pitchside/matchday/models"
)

// Points is a tournament's scoring configuration. Negative values are not
// excluded; a negative-loss-points tournament produces negative totals.
type Points struct {
	Win  int
	Draw int
	Loss int
}

// DefaultPoints is the standard 3/1/0 football scoring.
var DefaultPoints = Points{Win: 3, Draw: 1, Loss: 0}

// PointsFor extracts the scoring configuration of a tournament.
func PointsFor(t *models.Tournament) Points {
	if t == nil {
		return DefaultPoints
	}
	return Points{Win: t.PointsWin, Draw: t.PointsDraw, Loss: t.PointsLoss}
}

// Row is one team's accumulator. Trail is the chronological result trail,
// oldest first, one letter (W/D/L) per counted match; GoalDiff and Points
// are kept consistent with the counters on every apply so the full
// recompute and the incremental path share identical arithmetic.
type Row struct {
	TeamID       int
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
	Points       int
	Trail        string
	Position     int
}

// lastFiveLen bounds the form string stored on a standings row.
const lastFiveLen = 5

// LastFive returns the trailing slice of a result trail: at most the five
// most recent letters, chronological order preserved.
func LastFive(trail string) string {
	if len(trail) <= lastFiveLen {
		return trail
	}
	return trail[len(trail)-lastFiveLen:]
}

func (r *Row) applyResult(scored, conceded int, pts Points) {
	r.Played++
	r.GoalsFor += scored
	r.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		r.Won++
		r.Trail += "W"
	case scored < conceded:
		r.Lost++
		r.Trail += "L"
	default:
		r.Drawn++
		r.Trail += "D"
	}
	r.GoalDiff = r.GoalsFor - r.GoalsAgainst
	r.Points = r.Won*pts.Win + r.Drawn*pts.Draw + r.Lost*pts.Loss
}

// ApplyMatch applies one final score to both sides' rows. This is the
// single accumulation step used by the full recompute and by the
// incremental single-result path, so the two agree on every counter for
// any match history.
func ApplyMatch(home, away *Row, homeScore, awayScore int, pts Points) {
	home.applyResult(homeScore, awayScore, pts)
	away.applyResult(awayScore, homeScore, pts)
}

// Accumulate builds per-team rows from scratch out of a match list.
// Matches without a usable result are excluded entirely: not counted as
// played, not counted as 0-0. Matches must be supplied in chronological
// order for the trails to come out right.
func Accumulate(matches []*models.Match, pts Points) map[int]*Row {
	rows := make(map[int]*Row)
	get := func(teamID int) *Row {
		row, ok := rows[teamID]
		if !ok {
			row = &Row{TeamID: teamID}
			rows[teamID] = row
		}
		return row
	}

	for _, m := range matches {
		if !m.HasResult() {
			continue
		}
		home := get(m.HomeTeamID)
		away := get(m.AwayTeamID)
		ApplyMatch(home, away, *m.HomeScore, *m.AwayScore, pts)
	}
	return rows
}

// Rank sorts rows into display order and assigns 1-based positions:
// points descending, then goal difference, then goals for, with the team
// id ascending as the final deterministic tie-break.
func Rank(rows map[int]*Row) []*Row {
	ranked := make([]*Row, 0, len(rows))
	for _, row := range rows {
		ranked = append(ranked, row)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})
	for i, row := range ranked {
		row.Position = i + 1
	}
	return ranked
}

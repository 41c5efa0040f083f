package scoring

import (
	"sort"

	"github.com/courtline/ladder/internal/ladder"
)

// RecomputeLeaguePositions computes a fresh position ordering for the whole
// league from a snapshot of standings. Players are ordered by level ascending
// and master points descending, with ties broken by player id so the result is
// deterministic; positions restart at 1 whenever the level changes. The
// function is pure: callers apply the returned assignments as a batch write.
// Recomputing from the same underlying points always converges to the same
// ordering, so concurrent recomputes are harmless.
func RecomputeLeaguePositions(standings []ladder.PlayerStanding) []ladder.PositionAssignment {
	if len(standings) == 0 {
		return nil
	}

	sorted := make([]ladder.PlayerStanding, len(standings))
	copy(sorted, standings)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CurrentLevel != sorted[j].CurrentLevel {
			return sorted[i].CurrentLevel < sorted[j].CurrentLevel
		}
		if sorted[i].MasterPoints != sorted[j].MasterPoints {
			return sorted[i].MasterPoints > sorted[j].MasterPoints
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	assignments := make([]ladder.PositionAssignment, 0, len(sorted))
	position := 0
	currentLevel := sorted[0].CurrentLevel
	for _, st := range sorted {
		if st.CurrentLevel != currentLevel {
			currentLevel = st.CurrentLevel
			position = 0
		}
		position++
		assignments = append(assignments, ladder.PositionAssignment{
			PlayerID: st.PlayerID,
			Level:    st.CurrentLevel,
			Position: position,
		})
	}
	return assignments
}

package scoring

import (
	"github.com/courtline/ladder/internal/ladder"
)

// Outcome is the derived bookkeeping for a reported result.
type Outcome struct {
	WinnerID       string
	LoserID        string
	Player1SetsWon int
	Player2SetsWon int
	WinnerSetsWon  int
	LoserSetsWon   int
}

// ComputeOutcome derives per-player set tallies and the winner/loser assignment
// from the raw per-set scores. The declared winner on the result is
// authoritative and is not cross-checked against the set counts; the tallies
// here are bookkeeping only. A tied set counts for neither side.
func ComputeOutcome(result *ladder.MatchResult) Outcome {
	o := Outcome{WinnerID: result.WinnerID}

	if result.WinnerID == result.Player1ID {
		o.LoserID = result.Player2ID
	} else {
		o.LoserID = result.Player1ID
	}

	for i := range result.Player1Sets {
		if i >= len(result.Player2Sets) {
			break
		}
		switch {
		case result.Player1Sets[i] > result.Player2Sets[i]:
			o.Player1SetsWon++
		case result.Player2Sets[i] > result.Player1Sets[i]:
			o.Player2SetsWon++
		}
	}

	if o.WinnerID == result.Player1ID {
		o.WinnerSetsWon, o.LoserSetsWon = o.Player1SetsWon, o.Player2SetsWon
	} else {
		o.WinnerSetsWon, o.LoserSetsWon = o.Player2SetsWon, o.Player1SetsWon
	}
	return o
}

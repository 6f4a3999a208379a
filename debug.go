package watchsat

import "github.com/kr/pretty"

// dumpState is a snapshot of the mutable solver state, pulled together
// purely for pretty-printing; it is not part of the solver's hot path.
type dumpState struct {
	Level       int
	Trail       []TrailEntry
	NumVars     int
	NumClauses  int
	NumLearned  int
	Conflicts   int64
	Decisions   int64
	Restarts    int64
}

// Dump renders the solver's current trail, decision level, and clause
// counts with github.com/kr/pretty, for use in -v CLI output and in test
// failure messages where go-cmp's diff alone doesn't explain *why* two
// solver runs diverged.
func (s *Solver) Dump() string {
	learned := 0
	for i := 0; i < s.db.Len(); i++ {
		if s.db.Get(ClauseID(i)).Learned {
			learned++
		}
	}
	st := dumpState{
		Level:      s.trail.Level(),
		Trail:      append([]TrailEntry(nil), s.trail.entries...),
		NumVars:    len(s.origVar),
		NumClauses: s.db.Len(),
		NumLearned: learned,
		Conflicts:  s.stats.Conflicts,
		Decisions:  s.stats.Decisions,
		Restarts:   s.stats.Restarts,
	}
	return pretty.Sprint(st)
}

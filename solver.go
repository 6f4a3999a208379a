package watchsat

import (
	"context"
	"sort"
)

// Solver is a CDCL SAT solver instance. Create one with NewSolver; all
// state is exclusively owned by the instance for the duration of Solve and
// the solver is not safe for concurrent use.
type Solver struct {
	db       *ClauseDB
	trail    *Trail
	prop     *Propagator
	analyzer *Analyzer
	vsids    *VSIDS

	// Restart is the restart policy consulted once per conflict. Callers
	// may replace it before calling Solve (e.g. the CLI's -restart flag).
	// Defaults to a Luby schedule.
	Restart RestartPolicy

	// Trace, if true, narrates the search via Tracer (trace.go). Tracer
	// defaults to a standard-library logger if left nil.
	Trace  bool
	Tracer Tracer

	origVar      []int // dense Variable -> source DIMACS integer
	trivialUnsat bool  // set when an input clause reduced to empty at ingestion

	stats Stats
}

// NewSolver builds a solver for problem, a CNF formula in the same
// representation ParseDIMACS produces: each element is a clause, itself a
// slice of nonzero signed integers (negative = negated variable). Variables
// are interned into a dense range exactly once, from the union of literals
// observed across all clauses.
//
// NewSolver never returns an error for a malformed *solver-level* formula
// (the zero-literal case) because that is a contract violation of the core
// API, not a property of externally supplied data; callers feeding
// attacker-controlled input should validate through ParseDIMACS instead,
// which does return errors.
func NewSolver(problem [][]int) *Solver {
	varSet := make(map[int]struct{})
	for _, cls := range problem {
		for _, v := range cls {
			if v == 0 {
				panic("watchsat: zero literal in clause passed to NewSolver")
			}
			varSet[abs(v)] = struct{}{}
		}
	}
	origVar := make([]int, 0, len(varSet))
	for v := range varSet {
		origVar = append(origVar, v)
	}
	sort.Ints(origVar)
	srcVar := make(map[int]Variable, len(origVar))
	for i, v := range origVar {
		srcVar[v] = Variable(i)
	}

	numVars := len(origVar)
	db := NewClauseDB()
	trail := NewTrail(numVars)
	prop := NewPropagator(db, trail, numVars)

	s := &Solver{
		db:       db,
		trail:    trail,
		prop:     prop,
		analyzer: NewAnalyzer(db, trail),
		vsids:    NewVSIDS(trail, numVars, 0.95),
		Restart:  NewLuby(512),
		origVar:  origVar,
	}

	for _, cls := range problem {
		lits := make([]Literal, len(cls))
		for i, v := range cls {
			lits[i] = NewLiteral(srcVar[abs(v)], v < 0)
		}
		id, err := db.AddOriginal(lits)
		switch err {
		case ErrTautology:
			continue
		case ErrEmptyClause:
			s.trivialUnsat = true
			continue
		case nil:
			// fall through
		default:
			panic(&InternalError{"AddOriginal: " + err.Error()})
		}

		c := db.Get(id)
		if c.Unit() {
			lit := c.Lits[0]
			switch trail.Value(lit) {
			case LitFalsified:
				s.trivialUnsat = true
			case LitUnassigned:
				if err := trail.Assign(lit, 0, NoClause); err != nil {
					panic(&InternalError{"unit fact assign: " + err.Error()})
				}
			}
			// LitSatisfied: a duplicate, already-true fact; nothing to do.
		} else {
			prop.Watch(id)
		}
	}
	return s
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Solve runs the CDCL search loop:
//
//	propagate -> (conflict?) analyse -> backjump -> learn -> assert
//	          -> (no conflict, vars remain?) decide
//
// until propagation at level 0 yields a conflict (Unsatisfiable), every
// variable is assigned with no conflict (Satisfiable), or ctx is cancelled
// at a safe point (Interrupted).
func (s *Solver) Solve(ctx context.Context) Result {
	if s.trivialUnsat {
		return Result{Status: Unsatisfiable, Stats: s.Stats()}
	}

	if _, ok := s.prop.Propagate(); !ok {
		return Result{Status: Unsatisfiable, Stats: s.Stats()}
	}

	for {
		select {
		case <-ctx.Done():
			return Result{Status: Interrupted, Stats: s.Stats()}
		default:
		}

		v, polarity, ok := s.vsids.Decide()
		if !ok {
			return Result{Status: Satisfiable, Model: s.buildModel(), Stats: s.Stats()}
		}

		s.trail.NewDecisionLevel()
		lit := NewLiteral(v, !polarity)
		if err := s.trail.Assign(lit, s.trail.Level(), NoClause); err != nil {
			panic(&InternalError{"decision assign: " + err.Error()})
		}
		s.vsids.SavePhase(v, polarity)
		s.stats.Decisions++
		s.tracef("decide %s @%d", lit, s.trail.Level())

		for {
			conflict, ok := s.prop.Propagate()
			if ok {
				break
			}
			s.stats.Conflicts++
			if s.trail.Level() == 0 {
				return Result{Status: Unsatisfiable, Stats: s.Stats()}
			}

			learnedLits, backjump, bumped := s.analyzer.Analyze(conflict)
			s.vsids.Bump(bumped)

			id, err := s.db.AddLearned(learnedLits)
			if err != nil {
				panic(&InternalError{"learned clause: " + err.Error()})
			}
			s.stats.Learned++
			c := s.db.Get(id)
			if len(c.Lits) >= 2 {
				s.prop.Watch(id)
			}
			assertingLit := c.Lits[0] // Analyze sorts by decreasing level; index 0 is the unique conflict-level literal.

			for _, u := range s.trail.PopTo(backjump) {
				s.vsids.SavePhase(u.Var(), !u.Negated())
				s.vsids.Requeue(u.Var())
			}
			s.prop.Reset(s.trail.Len())

			if err := s.trail.Assign(assertingLit, backjump, id); err != nil {
				panic(&InternalError{"asserting literal: " + err.Error()})
			}
			s.tracef("learn %v backjump=%d assert %s", c.Lits, backjump, assertingLit)

			if s.Restart.OnConflict() {
				undone := s.trail.PopTo(0)
				for _, u := range undone {
					s.vsids.SavePhase(u.Var(), !u.Negated())
					s.vsids.Requeue(u.Var())
				}
				// A backjump to level 0 leaves nothing to pop, and the
				// asserting literal just pushed must still be propagated.
				if len(undone) > 0 {
					s.prop.Reset(s.trail.Len())
				}
				s.stats.Restarts++
				s.tracef("restart")
			}
		}
	}
}

// buildModel projects the current (total) assignment back onto the
// original DIMACS variable numbering.
func (s *Solver) buildModel() []int {
	model := make([]int, len(s.origVar))
	for i, src := range s.origVar {
		v := Variable(i)
		if s.trail.IsAssigned(v) && s.trail.BoolValue(v) {
			model[i] = src
		} else {
			model[i] = -src
		}
	}
	return model
}

// Stats returns the running statistics for this solver instance.
func (s *Solver) Stats() Stats {
	st := s.stats
	st.Propagations = s.prop.Propagations()
	return st
}

// Solve is a convenience wrapper around NewSolver(problem).Solve for
// callers that don't need tracing, a custom restart policy, or
// cancellation.
func Solve(problem [][]int) Result {
	return NewSolver(problem).Solve(context.Background())
}

package watchsat

import (
	"errors"
	"sort"
)

// ClauseID is a stable, dense identity for a clause handed out by a
// ClauseDB. Clauses never move once created, so a ClauseID may be cached
// (e.g. as a trail antecedent) for the lifetime of the solve.
type ClauseID int32

// NoClause is the antecedent of a decision literal or an unconditional
// (level-0) fact that was asserted without a justifying clause.
const NoClause ClauseID = -1

// ErrTautology is returned by AddOriginal/AddLearned when the clause
// contains a variable and its negation; such a clause is always satisfied
// and the caller should simply discard it.
var ErrTautology = errors.New("watchsat: tautological clause")

// ErrEmptyClause is returned when, after deduplication, a clause has no
// literals left. The caller should treat this as an immediate UNSAT verdict.
var ErrEmptyClause = errors.New("watchsat: empty clause")

// Clause is a deduplicated, tautology-free disjunction of literals. For
// clauses with two or more literals, Watch0 and Watch1 are indices into
// Lits identifying the two watched slots: watch metadata is two small
// integers into the clause's own array, not a back-reference into anything
// else. Unit clauses (len(Lits) == 1) and the degenerate zero-literal case
// have no watches and are never registered in the watch index.
type Clause struct {
	Lits    []Literal
	Watch0  int
	Watch1  int
	Learned bool
}

// Unit reports whether the clause has exactly one literal.
func (c *Clause) Unit() bool { return len(c.Lits) == 1 }

// ClauseDB owns the backing storage for original and learned clauses and
// hands out stable ClauseIDs for them. Clause storage is a flat, append-only
// arena so propagation never chases pointers between heap objects.
type ClauseDB struct {
	clauses []Clause
}

// NewClauseDB returns an empty clause database.
func NewClauseDB() *ClauseDB {
	return &ClauseDB{}
}

// Get returns a pointer to the clause's data. The pointer is valid until the
// next Add call may reallocate the backing slice; callers that need a
// long-lived reference should re-fetch by id instead of holding the
// pointer across an Add.
func (db *ClauseDB) Get(id ClauseID) *Clause {
	return &db.clauses[id]
}

// Len returns the number of clauses currently stored (original + learned).
func (db *ClauseDB) Len() int { return len(db.clauses) }

// dedupAndCheck deduplicates literals (by exact literal, i.e. same variable
// and polarity) and detects tautologies (a variable appearing with both
// polarities). It returns the deduplicated slice.
func dedupAndCheck(lits []Literal) ([]Literal, error) {
	seen := make(map[Literal]bool, len(lits))
	polarity := make(map[Variable]Literal, len(lits))
	out := lits[:0:0]
	for _, l := range lits {
		if seen[l] {
			continue
		}
		if other, ok := polarity[l.Var()]; ok && other != l {
			return nil, ErrTautology
		}
		seen[l] = true
		polarity[l.Var()] = l
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, ErrEmptyClause
	}
	return out, nil
}

func (db *ClauseDB) add(lits []Literal, learned bool) (ClauseID, error) {
	deduped, err := dedupAndCheck(lits)
	if err != nil {
		return NoClause, err
	}
	id := ClauseID(len(db.clauses))
	c := Clause{Lits: deduped, Learned: learned}
	if len(c.Lits) >= 2 {
		c.Watch0, c.Watch1 = 0, 1
	}
	db.clauses = append(db.clauses, c)
	return id, nil
}

// AddOriginal interns an input clause. It deduplicates literals and rejects
// tautologies (ErrTautology) and empty clauses (ErrEmptyClause); callers
// treat both as normal control flow, not as fatal errors. A unit clause is
// stored with no watch slots; the caller is responsible for enqueuing its
// literal as a level-0 fact.
func (db *ClauseDB) AddOriginal(lits []Literal) (ClauseID, error) {
	return db.add(lits, false)
}

// AddLearned interns a clause derived by conflict analysis. The clause is
// marked learned so future reduction policies (not implemented here) can
// distinguish it from original input clauses.
func (db *ClauseDB) AddLearned(lits []Literal) (ClauseID, error) {
	return db.add(lits, true)
}

// sortByLevelDesc orders literals by decreasing assignment level, used by
// the conflict analyser to pick watch slots for a freshly learned clause:
// the asserting literal and the literal at the backjump level (or any
// second-highest-level literal) end up at the front.
func sortByLevelDesc(lits []Literal, levelOf func(Variable) int) {
	sort.Slice(lits, func(i, j int) bool {
		return levelOf(lits[i].Var()) > levelOf(lits[j].Var())
	})
}

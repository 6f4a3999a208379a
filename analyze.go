package watchsat

// Analyzer derives a 1-UIP asserting clause and backjump level from a
// conflicting clause. It also tracks which variables were touched during
// the resolution walk so the search driver can bump their VSIDS activity.
type Analyzer struct {
	db *ClauseDB
	tr *Trail

	inClause map[Variable]Literal // var -> the (falsified) literal of that var currently in the learned clause
	seen     map[Variable]bool
	bumped   []Variable
}

// NewAnalyzer builds an analyzer over db and tr.
func NewAnalyzer(db *ClauseDB, tr *Trail) *Analyzer {
	return &Analyzer{
		db:       db,
		tr:       tr,
		inClause: make(map[Variable]Literal),
		seen:     make(map[Variable]bool),
	}
}

// Analyze resolves conflict back through antecedents until exactly one
// literal at the current (conflict) decision level d > 0 remains: the
// first unique implication point. It returns the literals of the learned
// asserting clause (not yet registered in a ClauseDB), the backjump level
// b < d, and the set of variables visited during resolution (for VSIDS
// bumping).
func (a *Analyzer) Analyze(conflict ClauseID) (learned []Literal, backjumpLevel int, bumped []Variable) {
	d := a.tr.Level()

	for k := range a.inClause {
		delete(a.inClause, k)
	}
	for k := range a.seen {
		delete(a.seen, k)
	}
	a.bumped = a.bumped[:0]

	count := 0
	addLit := func(l Literal) {
		v := l.Var()
		if _, ok := a.inClause[v]; ok {
			return
		}
		a.inClause[v] = l
		if !a.seen[v] {
			a.seen[v] = true
			a.bumped = append(a.bumped, v)
		}
		if a.tr.VarLevel(v) == d {
			count++
		}
	}

	for _, l := range a.db.Get(conflict).Lits {
		addLit(l)
	}

	trailIdx := a.tr.Len() - 1
	for count > 1 {
		// Walk the trail backwards for the most recent literal p that
		// appears negated in the learned set and sits at level d.
		var p Literal
		found := false
		for ; trailIdx >= 0; trailIdx-- {
			e := a.tr.At(trailIdx)
			if e.Level != d {
				continue
			}
			if lit, ok := a.inClause[e.Lit.Var()]; ok && lit == e.Lit.Negate() {
				p = e.Lit
				found = true
				break
			}
		}
		if !found {
			panic("watchsat: Internal{conflict analysis ran off the trail before reaching 1-UIP}")
		}
		ante := a.tr.Antecedent(p.Var())
		if ante == NoClause {
			panic("watchsat: Internal{conflict analysis reached a decision before 1-UIP}")
		}

		delete(a.inClause, p.Var())
		count--

		for _, l := range a.db.Get(ante).Lits {
			if l.Var() != p.Var() {
				addLit(l)
			}
		}
		trailIdx--
	}

	learned = make([]Literal, 0, len(a.inClause))
	backjumpLevel = 0
	for _, l := range a.inClause {
		learned = append(learned, l)
		lvl := a.tr.VarLevel(l.Var())
		if lvl != d && lvl > backjumpLevel {
			backjumpLevel = lvl
		}
	}
	sortByLevelDesc(learned, a.tr.VarLevel)
	return learned, backjumpLevel, a.bumped
}

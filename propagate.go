package watchsat

// Propagator enforces the two-watched-literal invariant and performs unit
// propagation. The watch index is kept as an append-only list per literal
// with in-place filtering during a propagation visit: this is the
// MiniSat-style scheme and avoids iterating a defensive snapshot copy the
// way a naive set-based watch list would need to.
type Propagator struct {
	db   *ClauseDB
	tr   *Trail
	qPos int // index into tr.entries of the next literal to propagate

	// watches[lit] holds the ids of clauses currently watching lit.
	watches [][]ClauseID

	// propagations counts literals assigned as a consequence of unit
	// propagation (Stats.Propagations); it is a running total that
	// Solver.Stats reads and never resets.
	propagations int64
}

// NewPropagator builds a propagator over numVars variables (so 2*numVars
// literal slots) backed by db and tr.
func NewPropagator(db *ClauseDB, tr *Trail, numVars int) *Propagator {
	return &Propagator{
		db:      db,
		tr:      tr,
		watches: make([][]ClauseID, 2*numVars),
	}
}

// Watch registers id as watching both of its clause's current watch
// literals. Used both for original clauses at build time and for freshly
// learned clauses.
func (p *Propagator) Watch(id ClauseID) {
	c := p.db.Get(id)
	if len(c.Lits) < 2 {
		return
	}
	w0, w1 := c.Lits[c.Watch0], c.Lits[c.Watch1]
	p.watches[w0] = append(p.watches[w0], id)
	p.watches[w1] = append(p.watches[w1], id)
}

// Propagations returns the running count of literals assigned by unit
// propagation since the propagator was created.
func (p *Propagator) Propagations() int64 { return p.propagations }

// Reset rewinds the propagation queue pointer to idx, the point in the
// trail propagation should resume from. Used after a backjump, where the
// asserting literal is pushed onto the (now shorter) trail and must still
// be propagated.
func (p *Propagator) Reset(idx int) { p.qPos = idx }

// Propagate drains the propagation queue, visiting the watch list of each
// newly falsified literal (the negation of each newly assigned one). It
// returns the conflicting clause and
// ok=false on conflict; ok=true once the queue is exhausted with no
// conflict. Propagations discovered are in trail order, the BFS order
// required for correct 1-UIP extraction.
func (p *Propagator) Propagate() (conflict ClauseID, ok bool) {
	for p.qPos < p.tr.Len() {
		lit := p.tr.At(p.qPos).Lit
		p.qPos++
		level := p.tr.At(p.qPos - 1).Level

		falseLit := lit.Negate()
		watchList := p.watches[falseLit]

		keep := watchList[:0]
		conflictID := NoClause
		for i := 0; i < len(watchList); i++ {
			id := watchList[i]
			c := p.db.Get(id)

			// Identify this clause's "other" watched literal w.
			var otherIdx int
			if c.Lits[c.Watch0] == falseLit {
				otherIdx = c.Watch1
			} else {
				otherIdx = c.Watch0
			}
			other := c.Lits[otherIdx]

			if p.tr.Value(other) == LitSatisfied {
				keep = append(keep, id)
				continue
			}

			// Scan for a replacement watch: any literal that is not the
			// other watch and is not falsified.
			replaced := false
			for j, cand := range c.Lits {
				if j == otherIdx || cand == falseLit {
					continue
				}
				if p.tr.Value(cand) != LitFalsified {
					// Install cand as the new watch in place of falseLit.
					if c.Watch0 == otherIdx {
						c.Watch1 = j
					} else {
						c.Watch0 = j
					}
					p.watches[cand] = append(p.watches[cand], id)
					replaced = true
					break
				}
			}
			if replaced {
				continue
			}

			// Clause is unit or conflicting on other.
			keep = append(keep, id)
			switch p.tr.Value(other) {
			case LitUnassigned:
				if err := p.tr.Assign(other, level, id); err != nil {
					panic(err)
				}
				p.propagations++
			case LitFalsified:
				if conflictID == NoClause {
					conflictID = id
					// Copy the remaining watch entries verbatim; we stop
					// scanning new implications but the watch-list
					// invariant (each clause appears in the list of each
					// of its two watches) must still hold afterwards.
					for k := i + 1; k < len(watchList); k++ {
						keep = append(keep, watchList[k])
					}
					i = len(watchList) // break after copy
				}
			}
		}
		p.watches[falseLit] = keep
		if conflictID != NoClause {
			return conflictID, false
		}
	}
	return NoClause, true
}

package watchsat

import "container/heap"

// rescaleThreshold is the activity magnitude at which all scores (and the
// bump increment) are rescaled down to avoid floating-point overflow.
const rescaleThreshold = 1e100

// VSIDS is the Variable State Independent Decaying Sum decision heuristic.
// Activity is tracked in a dense array; a max-heap over (activity, var)
// gives "extract unassigned variable of maximum activity" without a
// decrease-key operation — stale entries (whose cached activity no longer
// matches, or whose variable has since been assigned) are simply skipped
// when popped and re-pushed lazily on bump, the standard trick for VSIDS
// priority queues.
type VSIDS struct {
	tr *Trail

	activity []float64
	inc      float64
	decay    float64

	phase []bool // last value assigned to each var (phase saving)
	pq    activityHeap
}

type heapEntry struct {
	v        Variable
	activity float64
}

type activityHeap []heapEntry

func (h activityHeap) Len() int            { return len(h) }
func (h activityHeap) Less(i, j int) bool  { return h[i].activity > h[j].activity }
func (h activityHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *activityHeap) Push(x interface{}) { *h = append(*h, x.(heapEntry)) }
func (h *activityHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// NewVSIDS builds a VSIDS heuristic over numVars variables, with every
// variable pushed onto the heap at activity 0 and phase defaulting to
// false.
func NewVSIDS(tr *Trail, numVars int, decay float64) *VSIDS {
	h := &VSIDS{
		tr:       tr,
		activity: make([]float64, numVars),
		inc:      1.0,
		decay:    decay,
		phase:    make([]bool, numVars),
	}
	h.pq = make(activityHeap, numVars)
	for v := 0; v < numVars; v++ {
		h.pq[v] = heapEntry{v: Variable(v), activity: 0}
	}
	heap.Init(&h.pq)
	return h
}

// Bump increases the activity of each variable in vars by the current
// increment, then decays the increment so future bumps count for more —
// variables touched by recent conflicts rise above ones touched long ago.
func (h *VSIDS) Bump(vars []Variable) {
	for _, v := range vars {
		h.activity[v] += h.inc
		if h.activity[v] > rescaleThreshold {
			h.rescale()
		}
		heap.Push(&h.pq, heapEntry{v: v, activity: h.activity[v]})
	}
	h.inc /= h.decay
	if h.inc > rescaleThreshold {
		h.rescale()
	}
}

func (h *VSIDS) rescale() {
	const factor = 1e-100
	for v := range h.activity {
		h.activity[v] *= factor
	}
	h.inc *= factor
	for i := range h.pq {
		h.pq[i].activity *= factor
	}
	heap.Init(&h.pq)
}

// Decide pops the unassigned variable of maximum activity (stale, already
// assigned heap entries are discarded as they're popped) and returns it
// together with its saved phase. ok is false once every variable is
// assigned.
func (h *VSIDS) Decide() (v Variable, polarity bool, ok bool) {
	for h.pq.Len() > 0 {
		e := heap.Pop(&h.pq).(heapEntry)
		if h.tr.IsAssigned(e.v) {
			continue
		}
		if e.activity != h.activity[e.v] {
			// Stale entry from before a bump; the fresh one is already
			// (or will be) on the heap.
			continue
		}
		return e.v, h.phase[e.v], true
	}
	return 0, false, false
}

// SavePhase records the value last assigned to v, used as its polarity the
// next time v is decided upon.
func (h *VSIDS) SavePhase(v Variable, value bool) { h.phase[v] = value }

// Requeue pushes v back onto the decision heap, used when PopTo unassigns
// variables on backjump or restart.
func (h *VSIDS) Requeue(v Variable) {
	heap.Push(&h.pq, heapEntry{v: v, activity: h.activity[v]})
}

// Package fuzzgen generates CNF test instances: random satisfiable
// formulas built from a planted assignment, and structured unsatisfiable
// families like the pigeonhole principle, for exercising the solver
// directly in tests rather than via files on disk.
package fuzzgen

import "math/rand"

// Random builds a random CNF instance over numVars variables and
// numClauses clauses that is satisfiable by construction: a random total
// assignment is planted first, and every clause is forced to contain at
// least one literal consistent with it. Variable numbering in the result is
// remapped to a contiguous [1, n] range covering only the variables that
// actually ended up in some clause.
func Random(seed int64, numVars, numClauses int) [][]int {
	rng := rand.New(rand.NewSource(seed))
	assignment := make([]bool, numVars)
	for v := range assignment {
		assignment[v] = rng.Intn(2) == 1
	}
	vars := make([]int, numVars)
	for v := range vars {
		vars[v] = v
	}
	problem := make([][]int, numClauses)
	for i := range problem {
		rng.Shuffle(len(vars), func(a, b int) { vars[a], vars[b] = vars[b], vars[a] })
		problem[i] = make([]int, rng.Intn(numVars)+1)
		fixed := rng.Intn(len(problem[i]))
		for j := range problem[i] {
			v := vars[j] + 1
			switch {
			case j == fixed:
				if !assignment[v-1] {
					v = -v
				}
			case rng.Intn(2) == 1:
				v = -v
			}
			problem[i][j] = v
		}
	}
	return remapContiguous(problem)
}

// remapContiguous renumbers the variables appearing in problem to a
// contiguous range starting at 1, preserving first-seen order.
func remapContiguous(problem [][]int) [][]int {
	remap := make(map[int]int)
	out := make([][]int, len(problem))
	for i, cls := range problem {
		out[i] = make([]int, len(cls))
		for j, v := range cls {
			neg := v < 0
			if neg {
				v = -v
			}
			nv, ok := remap[v]
			if !ok {
				nv = len(remap) + 1
				remap[v] = nv
			}
			if neg {
				nv = -nv
			}
			out[i][j] = nv
		}
	}
	return out
}

// Pigeonhole builds the classic PHP(pigeons, holes) unsatisfiable instance:
// every pigeon must go in some hole, and no two pigeons share a hole. For
// pigeons > holes the instance is UNSAT.
//
// Variable numbering: var for "pigeon p in hole h" (0-indexed p, h) is
// p*holes + h + 1 (i.e. a dense row-major encoding in
// [1, pigeons*holes]).
func Pigeonhole(pigeons, holes int) [][]int {
	v := func(p, h int) int { return p*holes + h + 1 }
	var problem [][]int
	for p := 0; p < pigeons; p++ {
		cls := make([]int, 0, holes)
		for h := 0; h < holes; h++ {
			cls = append(cls, v(p, h))
		}
		problem = append(problem, cls)
	}
	for h := 0; h < holes; h++ {
		for p1 := 0; p1 < pigeons; p1++ {
			for p2 := p1 + 1; p2 < pigeons; p2++ {
				problem = append(problem, []int{-v(p1, h), -v(p2, h)})
			}
		}
	}
	return problem
}

// Package watchsat implements a Conflict-Driven Clause Learning (CDCL)
// SAT solver: given a propositional formula in conjunctive normal form, it
// either produces a satisfying assignment or proves that none exists.
//
// The solver is built around five pieces of shared, tightly coupled state:
// a clause database with stable clause identities, a trail recording
// assigned literals in order with their decision levels and antecedents, a
// watch index mapping literals to the clauses currently watching them, a
// two-watched-literal propagator, and a first-UIP conflict analyser. The
// search driver in solver.go ties them together:
//
//	propagate -> (conflict?) analyse -> backjump -> learn -> assert
//	          -> (no conflict, vars remain?) decide
//
// See dimacs.go for the DIMACS CNF collaborator and cmd/watchsat for the
// command-line front end.
package watchsat

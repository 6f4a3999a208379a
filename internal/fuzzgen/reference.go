package fuzzgen

import (
	"bufio"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ReferenceResult is the outcome of handing an instance to an external
// reference solver.
type ReferenceResult struct {
	Available bool // false if no reference binary could be located/run
	SAT       bool
	Model     []int
}

// Reference shells out to minisat (if present on PATH) to label problem
// with its ground-truth status. When minisat isn't installed, Available is
// false and callers should skip the differential comparison rather than
// fail — the reference solver is an optional test collaborator, not a
// dependency of the core.
func Reference(problem [][]int) ReferenceResult {
	path, err := exec.LookPath("minisat")
	if err != nil {
		return ReferenceResult{Available: false}
	}

	in, err := os.CreateTemp("", "watchsat-in-*.cnf")
	if err != nil {
		return ReferenceResult{Available: false}
	}
	defer os.Remove(in.Name())
	if err := writeDIMACS(in, problem); err != nil {
		in.Close()
		return ReferenceResult{Available: false}
	}
	in.Close()

	out, err := os.CreateTemp("", "watchsat-out-*.txt")
	if err != nil {
		return ReferenceResult{Available: false}
	}
	defer os.Remove(out.Name())
	out.Close()

	cmd := exec.Command(path, in.Name(), out.Name())
	// minisat exits non-zero on UNSAT; that's an expected outcome, not a
	// failure to run the reference solver, so the exit code is ignored and
	// the output file is parsed regardless.
	_ = cmd.Run()

	f, err := os.Open(out.Name())
	if err != nil {
		return ReferenceResult{Available: false}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return ReferenceResult{Available: false}
	}
	status := strings.TrimSpace(sc.Text())
	if status == "UNSAT" {
		return ReferenceResult{Available: true, SAT: false}
	}
	var model []int
	if sc.Scan() {
		for _, f := range strings.Fields(sc.Text()) {
			n, err := strconv.Atoi(f)
			if err == nil && n != 0 {
				model = append(model, n)
			}
		}
	}
	return ReferenceResult{Available: true, SAT: true, Model: model}
}

// writeDIMACS is a minimal local copy of the package's DIMACS writer so
// fuzzgen has no import-cycle back onto the solver package it tests.
func writeDIMACS(f *os.File, problem [][]int) error {
	w := bufio.NewWriter(f)
	maxVar := 0
	for _, cls := range problem {
		for _, v := range cls {
			if v < 0 {
				v = -v
			}
			if v > maxVar {
				maxVar = v
			}
		}
	}
	if _, err := w.WriteString(dimacsHeader(maxVar, len(problem))); err != nil {
		return err
	}
	for _, cls := range problem {
		for _, v := range cls {
			if _, err := w.WriteString(strconv.Itoa(v)); err != nil {
				return err
			}
			if err := w.WriteByte(' '); err != nil {
				return err
			}
		}
		if _, err := w.WriteString("0\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

func dimacsHeader(vars, clauses int) string {
	return "p cnf " + strconv.Itoa(vars) + " " + strconv.Itoa(clauses) + "\n"
}

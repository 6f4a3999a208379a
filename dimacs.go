package watchsat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Problem is a parsed DIMACS CNF formula: the clauses themselves, plus the
// dimensions declared by the (optional) problem line. When the problem line
// declares a nonzero variable count, ParseDIMACS rejects input that uses a
// larger variable or whose clause count differs from the declared one. The
// solver does not use these fields; its variable set is the union of
// literals observed across clauses.
type Problem struct {
	Clauses         [][]int
	DeclaredVars    int
	DeclaredClauses int
}

// ParseDIMACS parses text in the DIMACS CNF format.
//
// For convenience, a few non-standard variations are accepted:
//
//   - Comments (lines beginning with 'c') may appear anywhere, not just in
//     the preamble.
//   - The problem line may be missing.
//   - A clause's literals may be split across multiple lines.
//   - A trailing line containing a single '%' ends the formula early.
func ParseDIMACS(r io.Reader) (Problem, error) {
	var declaredVars, declaredClauses int
	haveHeader := false
	var clauses [][]int
	var clause []int
	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := s.Text()
		if len(line) == 0 || line[0] == 'c' {
			continue
		}
		if line == "%" {
			break
		}
		if line[0] == 'p' {
			if len(clauses) > 0 {
				return Problem{}, &ParseError{lineNo, "problem line appears after clauses"}
			}
			if haveHeader {
				return Problem{}, &ParseError{lineNo, "multiple problem lines"}
			}
			fields := strings.Fields(line)
			if len(fields) != 4 {
				return Problem{}, &ParseError{lineNo, fmt.Sprintf("malformed problem line %q", line)}
			}
			if fields[1] != "cnf" {
				return Problem{}, &ParseError{lineNo, fmt.Sprintf("only cnf supported; got %q", fields[1])}
			}
			var err error
			declaredVars, err = strconv.Atoi(fields[2])
			if err != nil {
				return Problem{}, &ParseError{lineNo, "malformed #vars in problem line: " + err.Error()}
			}
			declaredClauses, err = strconv.Atoi(fields[3])
			if err != nil {
				return Problem{}, &ParseError{lineNo, "malformed #clauses in problem line: " + err.Error()}
			}
			if declaredVars < 0 {
				return Problem{}, &ParseError{lineNo, fmt.Sprintf("invalid #vars %d", declaredVars)}
			}
			if declaredClauses < 0 {
				return Problem{}, &ParseError{lineNo, fmt.Sprintf("invalid #clauses %d", declaredClauses)}
			}
			haveHeader = true
			continue
		}
		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return Problem{}, &ParseError{lineNo, "invalid literal: " + err.Error()}
			}
			if n == 0 {
				clauses = append(clauses, clause)
				clause = nil
			} else {
				clause = append(clause, n)
			}
		}
	}
	if err := s.Err(); err != nil {
		return Problem{}, err
	}
	if len(clause) > 0 {
		clauses = append(clauses, clause)
	}

	if haveHeader && declaredVars > 0 {
		vars := make(map[int]struct{})
		for _, cls := range clauses {
			for _, v := range cls {
				if v < 0 {
					v = -v
				}
				if v > declaredVars {
					return Problem{}, &ParseError{lineNo, fmt.Sprintf(
						"formula contains var %d, but problem line asserts %d vars", v, declaredVars)}
				}
				vars[v] = struct{}{}
			}
		}
		if len(vars) > declaredVars {
			return Problem{}, &ParseError{lineNo, fmt.Sprintf(
				"problem line specifies %d vars, but there are %d", declaredVars, len(vars))}
		}
		if len(clauses) != declaredClauses {
			return Problem{}, &ParseError{lineNo, fmt.Sprintf(
				"problem line specifies %d clauses, but there are %d", declaredClauses, len(clauses))}
		}
	}
	return Problem{Clauses: clauses, DeclaredVars: declaredVars, DeclaredClauses: declaredClauses}, nil
}

// WriteDIMACS emits problem (a clause list in the same representation
// ParseDIMACS.Clauses uses) as a DIMACS CNF file: a "p cnf n m" header
// followed by one "l1 l2 ... 0" line per clause. The variable count is the
// highest variable magnitude appearing in problem. Used by the parse
// round-trip test; internal/fuzzgen keeps its own copy of this writer.
func WriteDIMACS(w io.Writer, problem [][]int) error {
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
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", maxVar, len(problem)); err != nil {
		return err
	}
	for _, cls := range problem {
		for _, v := range cls {
			if _, err := fmt.Fprintf(bw, "%d ", v); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw, "0"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

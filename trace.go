package watchsat

import "log"

// Tracer receives a narration of the search driver's decisions, conflicts,
// learned clauses, and restarts. The field pair (Trace, Tracer) mirrors
// etsangsplk-go-sat's Solver.Trace/Solver.Tracer: tracing is off by
// default and, when on, uses Tracer, falling back to stdTracer if Tracer is
// nil.
type Tracer interface {
	Printf(format string, args ...interface{})
}

// stdTracer adapts the standard library logger to the Tracer interface; it
// is the default that tracef installs when Trace is enabled without an
// explicit Tracer.
type stdTracer struct{}

func (stdTracer) Printf(format string, args ...interface{}) { log.Printf(format, args...) }

func (s *Solver) tracef(format string, args ...interface{}) {
	if !s.Trace {
		return
	}
	if s.Tracer == nil {
		s.Tracer = stdTracer{}
	}
	s.Tracer.Printf(format, args...)
}

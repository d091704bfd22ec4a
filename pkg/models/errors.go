package models

import "fmt"

// ParseError reports a malformed geometry or material resource.
type ParseError struct {
	Format string // "obj", "mtl" or "glb"
	Line   int    // 1-based line, 0 when not line oriented
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	s := "parse " + e.Format
	if e.Line > 0 {
		s += fmt.Sprintf(": line %d", e.Line)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

package duckparse

import (
	"io"

	"github.com/i64/duckparse/parse"
)

// Source is a seekable byte source of fixed size.
type Source = io.ReadSeeker

// Format is a named, compiled binary format.
type Format interface {
	// Name returns the short name used to select the format.
	Name() string
	// Parse decodes one file from src.
	Parse(src Source) (*parse.Instance, error)
}

// PlanFormat adapts a compiled stream plan to Format.
type PlanFormat struct {
	Plan *parse.Plan
	ID   string
}

func (f PlanFormat) Name() string { return f.ID }

func (f PlanFormat) Parse(src Source) (*parse.Instance, error) {
	return f.Plan.Parse(src)
}

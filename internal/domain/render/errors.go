package render

import "errors"

var (
	ErrJobNotFound  = errors.New("export job not found")
	ErrNotJobOwner  = errors.New("not export job owner")
	ErrEmptyProject = errors.New("project has no document")
)

package preset

import "github.com/bananalab/canvas-api/internal/domain/project"

// Preset lookup errors live in the project package so its handlers can map
// them without importing this package back.
var (
	ErrPresetNotFound = project.ErrPresetNotFound
	ErrPresetInactive = project.ErrPresetInactive
)

package project

import "errors"

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrNotProjectOwner   = errors.New("you can only manage your own projects")
	ErrProjectOrdered    = errors.New("project is attached to an order and cannot be deleted")
	ErrLastPage          = errors.New("a project must keep at least one page")
	ErrPageLimitExceeded = errors.New("page limit for this product reached")
	ErrPageNotFound      = errors.New("page index out of range")
	ErrCellNotFound      = errors.New("cell index out of range")
	ErrElementNotFound   = errors.New("element not found")
	ErrDuplicateElement  = errors.New("element id already present in project")
	ErrSaveInProgress    = errors.New("another save for this project is in progress")
	ErrPresetNotFound    = errors.New("preset not found")
	ErrPresetInactive    = errors.New("preset is not active")
)

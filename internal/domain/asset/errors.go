package asset

import "errors"

var (
	ErrAssetNotFound   = errors.New("asset not found")
	ErrNotAssetOwner   = errors.New("not asset owner")
	ErrInvalidDataURI  = errors.New("invalid data URI")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrFileTooLarge    = errors.New("file too large")
)

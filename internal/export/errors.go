package export

import "errors"

var (
	ErrNothingToExport = errors.New("no items to export")
)

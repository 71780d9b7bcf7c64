package huddle

import "errors"

var (
	ErrNoNames         = errors.New("no patient names found in schedule")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownPatient  = errors.New("patient is not on today's roster")
	ErrEmptyCharge     = errors.New("select at least one code or add a note")
	ErrEmptyTask       = errors.New("task is empty")
	ErrInvalidStatus   = errors.New("invalid app update status")
	ErrItemNotFound    = errors.New("item not found")
	ErrNotListCategory = errors.New("category does not hold removable items")
	ErrInvalidTimeout  = errors.New("lock timeout must be between 1 and 120 minutes")
	ErrNotOpen         = errors.New("huddle is not open")
)

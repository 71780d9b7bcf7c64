package huddle

import (
	"maps"
	"slices"
	"time"
)

// NoteItem is a patient note in one of the note categories.
type NoteItem struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patientName"`
	Note        string    `json:"note"`
	Date        string    `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

// ChargeItem records the charge codes and passdown note for a visit.
type ChargeItem struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patientName"`
	Codes       []string  `json:"codes"`
	Note        string    `json:"note"`
	Date        string    `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

type TodoItem struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// AppStatus is the Chiro 180 app update state of one patient.
type AppStatus string

const (
	StatusPending     AppStatus = "pending"
	StatusUpdated     AppStatus = "updated"
	StatusNeedsUpdate AppStatus = "needs-update"
)

func ParseAppStatus(s string) (AppStatus, error) {
	switch AppStatus(s) {
	case StatusPending, StatusUpdated, StatusNeedsUpdate:
		return AppStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// Data is the whole daily workflow record. It is persisted as one sealed
// value and reset when the date changes.
type Data struct {
	Date               string               `json:"date"`
	PmtIssues          []NoteItem           `json:"pmtIssues"`
	InsuranceQuestions []NoteItem           `json:"insuranceQuestions"`
	NoAppt             []NoteItem           `json:"noAppt"`
	ChargePassdown     []ChargeItem         `json:"chargePassdown"`
	Todo24             []TodoItem           `json:"todo24"`
	Chiro180           map[string]AppStatus `json:"chiro180"`
	InsuranceVerify    map[string]bool      `json:"insuranceVerify"`
}

// NewData returns an empty record for date.
func NewData(date string) *Data {
	d := &Data{Date: date}
	d.normalize()
	return d
}

func (d *Data) normalize() {
	if d.PmtIssues == nil {
		d.PmtIssues = []NoteItem{}
	}
	if d.InsuranceQuestions == nil {
		d.InsuranceQuestions = []NoteItem{}
	}
	if d.NoAppt == nil {
		d.NoAppt = []NoteItem{}
	}
	if d.ChargePassdown == nil {
		d.ChargePassdown = []ChargeItem{}
	}
	if d.Todo24 == nil {
		d.Todo24 = []TodoItem{}
	}
	if d.Chiro180 == nil {
		d.Chiro180 = map[string]AppStatus{}
	}
	if d.InsuranceVerify == nil {
		d.InsuranceVerify = map[string]bool{}
	}
}

// clone returns a deep copy of d.
func (d *Data) clone() *Data {
	c := *d
	c.PmtIssues = slices.Clone(d.PmtIssues)
	c.InsuranceQuestions = slices.Clone(d.InsuranceQuestions)
	c.NoAppt = slices.Clone(d.NoAppt)
	c.ChargePassdown = slices.Clone(d.ChargePassdown)
	c.Todo24 = slices.Clone(d.Todo24)
	c.Chiro180 = maps.Clone(d.Chiro180)
	c.InsuranceVerify = maps.Clone(d.InsuranceVerify)
	c.normalize()
	return &c
}

func (d *Data) notes(c Category) *[]NoteItem {
	switch c {
	case PmtIssues:
		return &d.PmtIssues
	case InsuranceQuestions:
		return &d.InsuranceQuestions
	case NoAppt:
		return &d.NoAppt
	}
	return nil
}

const DefaultLockTimeout = 5

// Settings holds user preferences.
type Settings struct {
	LockTimeout    int    `json:"lockTimeout"` // minutes
	EmailRecipient string `json:"emailRecipient"`
}

func DefaultSettings() Settings {
	return Settings{LockTimeout: DefaultLockTimeout}
}

// LockAfter returns the idle period after which the store is locked.
func (s Settings) LockAfter() time.Duration {
	if s.LockTimeout <= 0 {
		return DefaultLockTimeout * time.Minute
	}
	return time.Duration(s.LockTimeout) * time.Minute
}

// TrackedItem is one exported row, remembered so later exports do not
// repeat it. Cells line up with Headers for the item's category.
type TrackedItem struct {
	ID        string    `json:"id"`
	Cells     []string  `json:"cells"`
	Timestamp time.Time `json:"timestamp"`
}

// History is the cumulative export ledger keyed by category.
type History map[Category][]TrackedItem

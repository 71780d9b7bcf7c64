package huddle

import (
	"fmt"
	"strings"
)

type Category string

const (
	PmtIssues          Category = "pmtIssues"
	InsuranceQuestions Category = "insuranceQuestions"
	NoAppt             Category = "noAppt"
	ChargePassdown     Category = "chargePassdown"
	Todo24             Category = "todo24"
	Chiro180           Category = "chiro180"
	InsuranceVerify    Category = "insuranceVerify"
)

// Categories is the fixed review order.
var Categories = []Category{
	PmtIssues,
	InsuranceQuestions,
	NoAppt,
	ChargePassdown,
	Todo24,
	Chiro180,
	InsuranceVerify,
}

var displayNames = map[Category]string{
	PmtIssues:          "PMT Issues",
	InsuranceQuestions: "Insurance Questions",
	NoAppt:             "No Appt",
	ChargePassdown:     "Charge and Passdown",
	Todo24:             "24 Hour To-Do",
	Chiro180:           "Chiro 180 Updates",
	InsuranceVerify:    "Insurance Verification",
}

var labels = map[Category]string{
	PmtIssues:          "PMT Issue",
	InsuranceQuestions: "Insurance Question",
	NoAppt:             "No Appointment",
	ChargePassdown:     "Charge/Passdown",
	Todo24:             "24 Hour To-Do",
	Chiro180:           "Chiro 180 Update",
	InsuranceVerify:    "Insurance Verification",
}

func (c Category) String() string { return string(c) }

// DisplayName is the section title shown to staff.
func (c Category) DisplayName() string {
	if n, ok := displayNames[c]; ok {
		return n
	}
	return string(c)
}

// Label is the singular item label, used as the fallback issue text.
func (c Category) Label() string {
	if n, ok := labels[c]; ok {
		return n
	}
	return string(c)
}

// IsNoteCategory reports whether items in c are free-text patient notes.
func (c Category) IsNoteCategory() bool {
	return c == PmtIssues || c == InsuranceQuestions || c == NoAppt
}

func (c Category) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

// ParseCategory accepts a category id, case-insensitively, or a 1-based
// position in Categories.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for i, c := range Categories {
		if strings.EqualFold(s, string(c)) || s == fmt.Sprint(i+1) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

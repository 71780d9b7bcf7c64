package huddle

import (
	"sort"
	"strings"
	"time"
)

const timestampLayout = "01/02/2006, 03:04 PM"

var headers = map[Category][]string{
	PmtIssues:          {"Date", "Patient Name", "Issue", "Notes", "Timestamp"},
	InsuranceQuestions: {"Date", "Patient Name", "Question/Issue", "Notes", "Timestamp"},
	NoAppt:             {"Date", "Patient Name", "Reason", "Notes", "Timestamp"},
	ChargePassdown:     {"Date", "Patient Name", "Charge Codes", "Notes", "Timestamp"},
	Todo24:             {"Date", "Task", "Timestamp"},
	Chiro180:           {"Date", "Patient Name", "Status", "Timestamp"},
	InsuranceVerify:    {"Date", "Patient Name", "Status", "Timestamp"},
}

// Headers returns the column titles of the export sheet for c.
func Headers(c Category) []string {
	h := headers[c]
	out := make([]string, len(h))
	copy(out, h)
	return out
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(timestampLayout)
}

// exportRows flattens the items of c into tracked rows. Chiro 180 entries
// still pending are skipped. Map-backed categories follow roster order and
// then name order for patients no longer on the roster.
func exportRows(d *Data, c Category, roster []string, now time.Time, date string) []TrackedItem {
	switch c {
	case PmtIssues, InsuranceQuestions, NoAppt:
		items := *d.notes(c)
		rows := make([]TrackedItem, 0, len(items))
		for _, it := range items {
			issue := it.Note
			if issue == "" {
				issue = c.Label()
			}
			rows = append(rows, TrackedItem{
				ID:        it.ID,
				Cells:     []string{it.Date, it.PatientName, issue, it.Note, formatTimestamp(it.Timestamp)},
				Timestamp: it.Timestamp,
			})
		}
		return rows

	case ChargePassdown:
		rows := make([]TrackedItem, 0, len(d.ChargePassdown))
		for _, it := range d.ChargePassdown {
			rows = append(rows, TrackedItem{
				ID:        it.ID,
				Cells:     []string{it.Date, it.PatientName, strings.Join(it.Codes, ", "), it.Note, formatTimestamp(it.Timestamp)},
				Timestamp: it.Timestamp,
			})
		}
		return rows

	case Todo24:
		rows := make([]TrackedItem, 0, len(d.Todo24))
		for _, it := range d.Todo24 {
			rows = append(rows, TrackedItem{
				ID:        it.ID,
				Cells:     []string{it.Date, it.Task, formatTimestamp(it.Timestamp)},
				Timestamp: it.Timestamp,
			})
		}
		return rows

	case Chiro180:
		rows := make([]TrackedItem, 0, len(d.Chiro180))
		for _, p := range orderedPatients(d.Chiro180, roster) {
			status := d.Chiro180[p]
			if status == StatusPending {
				continue
			}
			label := "Needs Update"
			if status == StatusUpdated {
				label = "Updated"
			}
			rows = append(rows, statusRow(date, p, label, now))
		}
		return rows

	case InsuranceVerify:
		rows := make([]TrackedItem, 0, len(d.InsuranceVerify))
		for _, p := range orderedPatients(d.InsuranceVerify, roster) {
			label := "Needs Verification"
			if d.InsuranceVerify[p] {
				label = "Verified"
			}
			rows = append(rows, statusRow(date, p, label, now))
		}
		return rows
	}

	return []TrackedItem{}
}

// statusRow ids are stable for a patient within a day, so exporting the
// same section twice does not duplicate it in the ledger.
func statusRow(date, patient, label string, now time.Time) TrackedItem {
	return TrackedItem{
		ID:        date + "/" + patient,
		Cells:     []string{date, patient, label, formatTimestamp(now)},
		Timestamp: now,
	}
}

func orderedPatients[V any](m map[string]V, roster []string) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	for _, p := range roster {
		if _, ok := m[p]; ok {
			out = append(out, p)
			seen[p] = struct{}{}
		}
	}
	rest := make([]string, 0)
	for p := range m {
		if _, ok := seen[p]; !ok {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// SortNewestFirst orders rows by timestamp, newest first. Rows with equal
// timestamps keep their relative order.
func SortNewestFirst(rows []TrackedItem) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})
}

package huddle

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const summaryDateLayout = "Monday, January 2, 2006"

// renderSummary produces the plain-text huddle summary meant for e-mail.
func renderSummary(d *Data, roster []string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "EVENING HUDDLE SUMMARY - %s\n\n", now.Format(summaryDateLayout))

	total := 0
	noteSection := func(title string, items []NoteItem, fallback string) {
		if len(items) == 0 {
			return
		}
		total += len(items)
		fmt.Fprintf(&b, "%s (%d)\n", title, len(items))
		for _, it := range items {
			note := it.Note
			if note == "" {
				note = fallback
			}
			fmt.Fprintf(&b, "  • %s: %s\n", it.PatientName, note)
		}
		b.WriteString("\n")
	}

	noteSection("PMT ISSUES", d.PmtIssues, "Needs follow-up")
	noteSection("INSURANCE QUESTIONS", d.InsuranceQuestions, "Needs follow-up")
	noteSection("NO APPT", d.NoAppt, "No appointment scheduled")

	if n := len(d.ChargePassdown); n > 0 {
		total += n
		fmt.Fprintf(&b, "CHARGE AND PASSDOWN (%d)\n", n)
		for _, it := range d.ChargePassdown {
			line := strings.Join(it.Codes, ", ")
			if it.Note != "" {
				line += " - " + it.Note
			}
			fmt.Fprintf(&b, "  • %s: %s\n", it.PatientName, line)
		}
		b.WriteString("\n")
	}

	if n := len(d.Todo24); n > 0 {
		total += n
		fmt.Fprintf(&b, "24 HOUR TO-DO (%d)\n", n)
		for _, it := range d.Todo24 {
			fmt.Fprintf(&b, "  • %s\n", it.Task)
		}
		b.WriteString("\n")
	}

	needsUpdate := make([]string, 0)
	for _, p := range orderedPatients(d.Chiro180, roster) {
		if d.Chiro180[p] == StatusNeedsUpdate {
			needsUpdate = append(needsUpdate, p)
		}
	}
	patientSection := func(title string, patients []string) {
		if len(patients) == 0 {
			return
		}
		total += len(patients)
		fmt.Fprintf(&b, "%s (%d)\n", title, len(patients))
		for _, p := range patients {
			fmt.Fprintf(&b, "  • %s\n", p)
		}
		b.WriteString("\n")
	}
	patientSection("CHIRO 180 - NEEDS UPDATE", needsUpdate)

	notVerified := make([]string, 0)
	for _, p := range orderedPatients(d.InsuranceVerify, roster) {
		if !d.InsuranceVerify[p] {
			notVerified = append(notVerified, p)
		}
	}
	patientSection("INSURANCE VERIFICATION NEEDED", notVerified)

	if total == 0 {
		b.WriteString("No action items recorded for today's huddle.\n\n")
	}

	fmt.Fprintf(&b, "---\nGenerated by HuddleKeeper • %d patients reviewed", len(roster))
	return b.String()
}

// MailtoURL builds a mailto: link that opens the summary in the default
// mail client.
func MailtoURL(recipient, summary string, now time.Time) string {
	q := url.Values{}
	q.Set("subject", "Evening Huddle Summary - "+now.Format(summaryDateLayout))
	q.Set("body", summary)
	u := url.URL{Scheme: "mailto", Opaque: recipient, RawQuery: strings.ReplaceAll(q.Encode(), "+", "%20")}
	return u.String()
}

// counts returns the number of action items per category, as shown on the
// completion screen: pending app statuses and unverified patients do not
// count.
func counts(d *Data) map[Category]int {
	c := map[Category]int{
		PmtIssues:          len(d.PmtIssues),
		InsuranceQuestions: len(d.InsuranceQuestions),
		NoAppt:             len(d.NoAppt),
		ChargePassdown:     len(d.ChargePassdown),
		Todo24:             len(d.Todo24),
	}
	for _, s := range d.Chiro180 {
		if s != StatusPending {
			c[Chiro180]++
		}
	}
	for _, v := range d.InsuranceVerify {
		if v {
			c[InsuranceVerify]++
		}
	}
	return c
}

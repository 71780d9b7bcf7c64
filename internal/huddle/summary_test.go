package huddle

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSummary(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	d := NewData("2026-03-14")
	d.PmtIssues = []NoteItem{{PatientName: "John Smith", Note: "Card declined"}}
	d.NoAppt = []NoteItem{{PatientName: "Mary Jane Doe"}}
	d.ChargePassdown = []ChargeItem{{PatientName: "John Smith", Codes: []string{"98940", "laser"}, Note: "billed"}}
	d.Todo24 = []TodoItem{{Task: "call insurer"}}
	d.Chiro180 = map[string]AppStatus{"John Smith": StatusNeedsUpdate, "Mary Jane Doe": StatusUpdated}
	d.InsuranceVerify = map[string]bool{"Mary Jane Doe": false, "John Smith": true}
	roster := []string{"John Smith", "Mary Jane Doe"}

	got := renderSummary(d, roster, now)

	want := []string{
		"EVENING HUDDLE SUMMARY - Saturday, March 14, 2026",
		"PMT ISSUES (1)\n  • John Smith: Card declined\n",
		"NO APPT (1)\n  • Mary Jane Doe: No appointment scheduled\n",
		"CHARGE AND PASSDOWN (1)\n  • John Smith: 98940, laser - billed\n",
		"24 HOUR TO-DO (1)\n  • call insurer\n",
		"CHIRO 180 - NEEDS UPDATE (1)\n  • John Smith\n",
		"INSURANCE VERIFICATION NEEDED (1)\n  • Mary Jane Doe\n",
		"---\nGenerated by HuddleKeeper • 2 patients reviewed",
	}
	for _, w := range want {
		assert.Contains(t, got, w)
	}
	assert.NotContains(t, got, "INSURANCE QUESTIONS")
	assert.NotContains(t, got, "No action items")
}

func TestRenderSummary_Empty(t *testing.T) {
	got := renderSummary(NewData("2026-03-14"), nil, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, got, "No action items recorded for today's huddle.")
	assert.True(t, strings.HasSuffix(got, "0 patients reviewed"))
}

func TestMailtoURL(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	u := MailtoURL("front@clinic.test", "a b+c", now)

	require.True(t, strings.HasPrefix(u, "mailto:front@clinic.test?"))
	assert.Contains(t, u, "body=a%20b%2Bc")
	assert.Contains(t, u, "subject=Evening%20Huddle%20Summary%20-%20Saturday%2C%20March%2014%2C%202026")
}

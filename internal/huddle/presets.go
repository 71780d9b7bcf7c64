package huddle

// QuickNotes are the canned notes offered for each note category.
var QuickNotes = map[Category][]string{
	PmtIssues:          {"Missed payment", "Payment plan needed", "Past due balance", "Card declined", "Needs statement"},
	InsuranceQuestions: {"Benefits check needed", "Pre-auth required", "Claim follow-up", "Coverage question", "Referral needed"},
	NoAppt:             {"No call/No show", "Cancelled with no appointment", "Left message", "Needs to reschedule", "Will call back"},
}

// ChargeCodes is the selectable list for Charge and Passdown.
var ChargeCodes = []string{
	"98940", "98941", "98943", "97140",
	"piezo", "laser", "shockwave", "decomp",
	"KOT", "normatec", "dakota traction",
	"progress exam", "normal exam",
	"lumbar x-rays", "cervical x-rays", "x-rays unspecified",
}

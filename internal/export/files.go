package export

import "github.com/dmitrijs2005/huddlekeeper/internal/huddle"

// trackerFiles keeps one stable file per category so repeated exports
// accumulate into the same sheet.
var trackerFiles = map[huddle.Category]string{
	huddle.PmtIssues:          "PMT_Issues.csv",
	huddle.InsuranceQuestions: "Insurance_Questions.csv",
	huddle.NoAppt:             "No_Appt.csv",
	huddle.ChargePassdown:     "Charge_and_Passdown.csv",
	huddle.Todo24:             "24_Hour_ToDo.csv",
	huddle.Chiro180:           "Chiro180_Updates.csv",
	huddle.InsuranceVerify:    "Insurance_Verification.csv",
}

// TrackerFile returns the file name used for c.
func TrackerFile(c huddle.Category) string {
	if name, ok := trackerFiles[c]; ok {
		return name
	}
	return string(c) + ".csv"
}

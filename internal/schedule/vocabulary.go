package schedule

// AppointmentTypes lists the trailing appointment phrases removed from a
// line before name extraction. Matching is case-insensitive and the first
// entry that matches wins, so longer phrases sharing a suffix with a shorter
// one must come first.
var AppointmentTypes = []string{
	"adjustment",
	"adjustments",
	"new patient exam",
	"reactivation exam",
	"progress exam",
	"normal exam",
	"day 2 report",
	"report of findings",
	"15 min treatment",
	"30 min treatment",
	"45 min treatment",
	"60 min treatment",
	"treatment",
	"exam",
	"consultation",
	"consult",
	"follow up",
	"follow-up",
	"followup",
	"massage",
	"therapy",
	"evaluation",
	"1st general audit",
	"tc 1st insurance audit",
}

// StopWords end the name walk. Keys are lower case.
var StopWords = map[string]struct{}{
	"per": {}, "as": {}, "of": {}, "the": {}, "and": {}, "but": {},
	"for": {}, "with": {}, "after": {}, "before": {}, "on": {}, "in": {},
	"at": {}, "to": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"will": {}, "be": {}, "has": {}, "have": {}, "had": {},
}

const (
	// maxNameWords caps how many tokens a single name may take.
	maxNameWords = 3
	// minNameWords is the smallest accepted name; single words are dropped.
	minNameWords = 2
	// maxTokenLen is the longest token still considered part of a name.
	maxTokenLen = 15
)

package huddle

import (
	"time"

	"github.com/dmitrijs2005/huddlekeeper/internal/common"
)

// RecordDefaults returns the empty value of every persisted record, in the
// shape the secure store writes on first setup.
func RecordDefaults(now func() time.Time) map[string]func() any {
	return map[string]func() any{
		common.KeyHuddleData:    func() any { return NewData(today(now)) },
		common.KeyPatients:      func() any { return []string{} },
		common.KeySettings:      func() any { return DefaultSettings() },
		common.KeyExportHistory: func() any { return History{} },
	}
}

func today(now func() time.Time) string {
	return now().Format(common.DateLayout)
}

package huddle

import (
	"context"
	"time"

	"github.com/dmitrijs2005/huddlekeeper/internal/common"
)

// Backup is a decrypted snapshot of every persisted record.
type Backup struct {
	HuddleData    *Data     `json:"huddleData"`
	Patients      []string  `json:"patients"`
	Settings      Settings  `json:"settings"`
	ExportHistory History   `json:"exportHistory"`
	ExportDate    time.Time `json:"exportDate"`
}

// Backup reads all records straight from the store. The result holds
// patient data in plaintext.
func (s *service) Backup(ctx context.Context) (*Backup, error) {
	b := &Backup{
		HuddleData:    NewData(""),
		Patients:      []string{},
		Settings:      DefaultSettings(),
		ExportHistory: History{},
		ExportDate:    s.now().UTC(),
	}

	if _, err := s.load(ctx, common.KeyHuddleData, b.HuddleData); err != nil {
		return nil, err
	}
	b.HuddleData.normalize()
	if _, err := s.load(ctx, common.KeyPatients, &b.Patients); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, common.KeySettings, &b.Settings); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, common.KeyExportHistory, &b.ExportHistory); err != nil {
		return nil, err
	}
	if b.Patients == nil {
		b.Patients = []string{}
	}
	if b.ExportHistory == nil {
		b.ExportHistory = History{}
	}
	return b, nil
}

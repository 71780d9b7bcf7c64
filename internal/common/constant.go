// Package common defines the record keys, layouts and byte helpers shared
// across HuddleKeeper components.
package common

// Logical keys of the four encrypted records. They are stable: renaming one
// orphans data already persisted under the old name.
const (
	KeyHuddleData    = "huddle_data"
	KeyPatients      = "patients"
	KeySettings      = "settings"
	KeyExportHistory = "export_history"
)

// Metadata keys stored in plaintext next to the records.
const (
	KeySalt         = "salt"
	KeyPasscodeHash = "passcode_hash"
)

// RecordKeys lists every encrypted record in the order they are initialized
// and re-encrypted.
var RecordKeys = []string{KeyHuddleData, KeyPatients, KeySettings, KeyExportHistory}

// DateLayout is the day stamp used on huddle records and exported rows.
const DateLayout = "2006-01-02"

// Package huddle implements the end-of-day review workflow: the patient
// roster, the seven review categories, the settings record and the export
// ledger, all persisted as whole records through an encrypted store.
package huddle

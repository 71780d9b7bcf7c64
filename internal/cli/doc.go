// Package cli implements the interactive huddle terminal.
//
// On start the user either creates a 4-digit passcode (first run) or
// unlocks the existing store. The REPL then drives the evening huddle:
//
//	help                           list commands
//	paste                          paste today's schedule (end with a line ".")
//	patients                       list today's roster
//	note <category> [patient]      add a note to pmtIssues, insuranceQuestions or noAppt
//	charge [patient]               add charge codes and a passdown note
//	todo [task]                    add a 24 hour to-do
//	rm <category> <n>              remove item n of a list category
//	app <patient> <status>         set Chiro 180 status (updated, needs-update, pending)
//	verify <patient> [yes|no]      mark insurance verification
//	show [category]                category counts, or the items of one category
//	export <category>              export a category to its tracker sheet
//	exportall                      export every non-empty category
//	summary                        print the e-mail summary
//	settings [timeout N|email X]   show or change settings
//	passwd                         change the passcode
//	lock                           lock now
//	clear                          delete all data and start over
//	backup                         write a plaintext JSON backup
//	exit | quit                    leave
//
// Patients may be given by roster number or by full name. Categories may be
// given by id or by their position in the review order (1-7).
//
// An idle watcher locks the store after the configured number of minutes
// without input; the next command asks for the passcode first.
package cli

// Package schedule extracts patient names from a pasted clinic schedule.
//
// Each appointment line has the loose form
//
//	TIME NameTokens... AppointmentType [trailing notes/dates]
//
// and is reduced to a name by an ordered pipeline of pure steps:
// appointment-type strip, date strip, initials strip, then a token walk
// that accepts two or three capitalized words. Lines that do not start with
// a clock time are ignored. The pipeline order is significant: changing it
// changes which names come out.
package schedule

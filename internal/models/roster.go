package models

// Roster is one channel's current chat roster as reported by the roster
// source. Chatters holds raw usernames; normalization and filtering happen
// in the collector.
type Roster struct {
	ChatterCount int
	Chatters     []string
}

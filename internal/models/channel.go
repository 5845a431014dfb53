package models

import "time"

// Channel is the reference entity owned by channel discovery. The engine
// only writes back the computed total-shared count and history rows.
type Channel struct {
	ID          int
	LoginName   string
	DisplayName string
	Avatar      string
	Game        string
	Viewers     int
	Chatters    int
	Shared      int
	LastUpdate  time.Time
}

// ChannelHistory is one point of a channel's viewer/chatter/shared series,
// written once per tick.
type ChannelHistory struct {
	ChannelID int
	Timestamp time.Time
	Viewers   int
	Chatters  int
	Shared    int
}

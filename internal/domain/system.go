package domain

import "time"

// StoreInfo is the singleton shop identity shown on receipts.
type StoreInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Logo    string `json:"logo"`
}

// ActivityLog is one append-only audit entry, newest first in the
// persisted collection.
type ActivityLog struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Avatar    string    `json:"avatar"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

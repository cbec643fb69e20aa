package models

import "time"

// Message is a single inbox entry. Sender and Receiver are usernames, the
// natural key of users. Only Unread ever changes after creation, and only
// from true to false.
type Message struct {
	ID        string
	Sender    string
	Receiver  string
	Subject   string
	Body      string
	Unread    bool
	CreatedAt time.Time
}

package domain

import "time"

// User is the domain model for authenticated actors: requesters, agents and
// the fixed support identity used for inbound Telegram replies.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

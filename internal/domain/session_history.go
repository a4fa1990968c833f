package domain

import "time"

// SessionHistory is an immutable audit entry describing what one turn changed.
type SessionHistory struct {
	ID         string
	SessionID  string
	FromStep   Step
	ToStep     Step
	MergePatch []byte
	CreatedAt  time.Time
}

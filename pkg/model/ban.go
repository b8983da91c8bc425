package model

import "time"

// Ban records a username denied future connections. Bans are permanent;
// there is no unban operation.
type Ban struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Reason    string    `json:"reason"`
	BannedBy  string    `json:"banned_by"` // issuing admin or "console"
	CreatedAt time.Time `json:"created_at"`
}

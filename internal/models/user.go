package models

import "time"

// User mirrors an identity from the external identity provider. The core
// never manages credentials or sessions; it only references user rows.
type User struct {
	ID        int64
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

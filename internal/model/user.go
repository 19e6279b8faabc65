package model

import "time"

// User owns transactions. The admin user is the default owner for
// statement imports when no uploader is supplied.
type User struct {
	CreatedAt time.Time
	Name      string
	Email     string
	ID        int64
	IsAdmin   bool
}

// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is an entry of the account directory. Only ID takes part in token
// binding; Login and Email are used to find the account.
type Account struct {
	ID        int64     `db:"id"`
	Login     string    `db:"login"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

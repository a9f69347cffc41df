package users

import "time"

// User is the stored account record. PasswordHash always holds a bcrypt
// hash, never the original secret. BirthDate is a calendar date; the
// time of day is meaningless and kept at midnight UTC.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	BirthDate    time.Time
	CreatedAt    time.Time
	Addresses    []Address
}

// Address is a postal record owned exclusively by one user and removed
// together with it.
type Address struct {
	ID           int64
	UserID       int64
	CEP          string
	Street       string
	StreetNumber int
	Complement   string
	Neighborhood string
	City         string
	State        string
}

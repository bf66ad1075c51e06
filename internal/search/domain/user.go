package domain

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // md5 hex digest, legacy format shared with pre-populated rows
}

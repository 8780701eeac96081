package dto

import "time"

type CredentialsInput struct {
	Username string
	Password string
}

type AccountOutput struct {
	ID       int64
	Username string
}

type SessionOutput struct {
	Username  string
	Token     string
	State     string
	ExpiresAt time.Time
}

package models

import "time"

// AdminSession is an authenticated studio-staff session.
type AdminSession struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

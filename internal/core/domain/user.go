package domain

import "time"

// User models an account that can authenticate against the API.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// userProtectedFields are never replaced by account update payloads.
var userProtectedFields = map[string]bool{
	"_id":        true,
	"id":         true,
	"username":   true,
	"created_at": true,
}

// SanitizeUserUpdate strips identifier and other protected keys from an
// update payload, returning the remaining replaceable fields.
func SanitizeUserUpdate(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if userProtectedFields[k] {
			continue
		}
		out[k] = v
	}
	return out
}

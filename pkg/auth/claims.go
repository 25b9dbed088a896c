package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Approved bool
	Admin    bool
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to portal clients.
// Approved marks dealer accounts cleared to submit quote requests.
type AccessTokenClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	Approved bool      `json:"approved"`
	Admin    bool      `json:"admin"`
	jwt.RegisteredClaims
}

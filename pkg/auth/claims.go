package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/oclservices/ocl-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	// Subject identifies the human or system acting (admin email, courier id, ...).
	Subject string
	Role    enums.ActorRole
	// EntityID is the corporate client, medicine user or courier boy the token is scoped to.
	EntityID *uuid.UUID
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	Role     enums.ActorRole `json:"role"`
	EntityID *uuid.UUID      `json:"entity_id,omitempty"`
	jwt.RegisteredClaims
}

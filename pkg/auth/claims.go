package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pramodsinghlodhi/masterprint-backend/pkg/enums"
)

// AccessTokenClaims carries the custom claims minted into access tokens by
// the identity provider. AgentID is present only for agent-portal tokens.
type AccessTokenClaims struct {
	UserID  uuid.UUID       `json:"uid"`
	Role    enums.ActorRole `json:"role"`
	AgentID *uuid.UUID      `json:"agent_id,omitempty"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input to token minting.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Role    enums.ActorRole
	AgentID *uuid.UUID
	JTI     string
}

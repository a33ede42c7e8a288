package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserProfile is the identity shown in the console header.
type UserProfile struct {
	Subject string `bson:"sub" json:"sub"`
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	Picture string `bson:"picture,omitempty" json:"picture,omitempty"`
}

// Session is a signed-in console session. Provider tokens are stored sealed
// and never leave the server.
type Session struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID         string             `bson:"sessionId" json:"-"`
	User              UserProfile        `bson:"user" json:"user"`
	SealedAccessToken []byte             `bson:"accessToken" json:"-"`
	SealedIDToken     []byte             `bson:"idToken" json:"-"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	ExpiresAt         time.Time          `bson:"expiresAt" json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefreshToken stores only the SHA-256 of the opaque token handed to the
// client. Rotated tokens point at their successor.
type RefreshToken struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID  `bson:"userId" json:"userId"`
	TokenHash  string              `bson:"tokenHash" json:"-"`
	ExpiresAt  time.Time           `bson:"expiresAt" json:"expiresAt"`
	Revoked    bool                `bson:"revoked" json:"revoked"`
	ReplacedBy *primitive.ObjectID `bson:"replacedBy,omitempty" json:"replacedBy,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
}

func (t RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

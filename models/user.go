package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DemoEmail is the shared demo account whose profile and password are read-only.
const DemoEmail = "admin@admin.com"

type Admin struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Removed bool               `bson:"removed" json:"removed"`
	Enabled *bool              `bson:"enabled,omitempty" json:"enabled,omitempty"`
	Email   string             `bson:"email" json:"email"`
	Name    string             `bson:"name" json:"name"`
	Surname string             `bson:"surname,omitempty" json:"surname,omitempty"`
	Photo   string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role    string             `bson:"role" json:"role"`
	Created time.Time          `bson:"created,omitempty" json:"created,omitempty"`
}

// IsEnabled treats an admin stored without the flag as enabled.
func (a *Admin) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// AdminPassword is the credential record owned by one Admin.
type AdminPassword struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Removed        bool               `bson:"removed" json:"removed"`
	User           primitive.ObjectID `bson:"user" json:"user"`
	Password       string             `bson:"password" json:"-"`
	Salt           string             `bson:"salt" json:"-"`
	EmailToken     string             `bson:"emailToken,omitempty" json:"-"`
	ResetToken     *string            `bson:"resetToken,omitempty" json:"-"`
	EmailVerified  bool               `bson:"emailVerified" json:"emailVerified"`
	AuthType       string             `bson:"authType,omitempty" json:"authType,omitempty"`
	LoggedSessions []string           `bson:"loggedSessions" json:"-"`
}

func (p *AdminPassword) HasSession(token string) bool {
	for _, s := range p.LoggedSessions {
		if s == token {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role constants for user authorization.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

var ValidRoles = []string{RoleUser, RoleAdmin, RoleSuperAdmin}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	Role      string             `bson:"role" json:"role"`  // user, admin, super_admin
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

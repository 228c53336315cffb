package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
	RoleAdmin   Role = "admin"
)

// Principal is the authenticated caller as carried in the bearer token.
// Accounts themselves live in the auth service; this backend only sees the claims.
type Principal struct {
	UserID primitive.ObjectID
	Role   Role
}

package users

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type Role string

const (
	ROLE_ADMIN Role = "admin"
	ROLE_USER  Role = "user"
)

func (r Role) Valid() bool {
	return r == ROLE_ADMIN || r == ROLE_USER
}

// User is the identity the backend returns for a bearer credential.
type User struct {
	ID       string              `json:"id" validate:"required"`
	Email    openapi_types.Email `json:"email" validate:"required"`
	FullName string              `json:"full_name"`
	Role     Role                `json:"role" validate:"required,oneof=admin user"`
}

func (u User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}

// AuthResponse is returned by the login and register endpoints.
type AuthResponse struct {
	Token string `json:"token" validate:"required"`
	User  User   `json:"user"`
}

package domain

import "github.com/gookit/validate"

const PlaceholderDisplayName = "User"

type User struct {
	UserID      string `json:"userId"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio,omitempty"`
}

// AuthSession pairs the opaque bearer token with the (possibly placeholder) profile.
type AuthSession struct {
	Token string `json:"-"`
	User  User   `json:"user"`
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username    string `json:"username" validate:"required|minLen:3"`
	Password    string `json:"password" validate:"required|minLen:6"`
	DisplayName string `json:"displayName" validate:"required"`
	Bio         string `json:"bio"`
}

func (c Credentials) Validate() error {
	return validateStruct("credentials", &c)
}

func (r RegisterRequest) Validate() error {
	return validateStruct("registration", &r)
}

func validateStruct(name string, v any) error {
	vd := validate.Struct(v)
	if vd.Validate() {
		return nil
	}
	return ValidationError{Field: name, Message: vd.Errors.One()}
}

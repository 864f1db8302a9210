package transport

import "time"

type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name"  validate:"required,max=50"`
	Password  string `json:"password"   validate:"required"`
}

type TokenRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenPair struct {
	Access     string    `json:"access"`
	Refresh    string    `json:"refresh"`
	AccessExp  time.Time `json:"-"`
	RefreshExp time.Time `json:"-"`
}

type UpdateProfileRequest struct {
	Email       *string    `json:"email"        validate:"omitempty,email"`
	FirstName   *string    `json:"first_name"   validate:"omitempty,max=50"`
	LastName    *string    `json:"last_name"    validate:"omitempty,max=50"`
	PhoneNumber *string    `json:"phone_number"`
	Gender      *string    `json:"gender"`
	Birthday    *time.Time `json:"birthday"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	Password    string `json:"password"     validate:"required"`
	Password2   string `json:"password2"    validate:"required"`
}

type CommentRequest struct {
	CommentContents string `json:"comment_contents" validate:"required,max=255"`
}

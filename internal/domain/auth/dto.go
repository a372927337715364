package auth

import (
	"strings"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/validator"
)

type RegisterRequest struct {
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
	Role            string  `json:"role"`
	Manager         *string `json:"manager"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}
	if len(r.FullName) > 150 {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name must not exceed 150 characters",
		})
	}

	// Email
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	// Password
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}
	if r.Password != r.ConfirmPassword {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "confirm_password must match password",
		})
	}

	// Role
	if _, ok := user.ParseRole(r.Role); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: employee, manager, hr, admin",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Normalize lowercases the role and clears the manager for non-employees,
// who report to nobody upstream.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)

	role, _ := user.ParseRole(r.Role)
	r.Role = string(role)

	if role != user.RoleEmployee || (r.Manager != nil && validator.IsEmpty(*r.Manager)) {
		r.Manager = nil
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// LoginResponse is what the browser receives after a successful login.
// The upstream tokens never leave the gateway.
type LoginResponse struct {
	AccessToken  string            `json:"access_token"`
	ExpiresAt    int64             `json:"expires_at"`
	User         user.UserResponse `json:"user"`
	Username     string            `json:"username"`
	Role         string            `json:"role"`
	RedirectPath string            `json:"redirect_path"`
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

package user

// UserResponse represents user data in API responses
type UserResponse struct {
	ID        string  `json:"id"`
	FullName  string  `json:"full_name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	ManagerID *string `json:"manager_id,omitempty"`
}

// ManagerOption is one entry of the registration form's manager picker.
type ManagerOption struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      string(u.Role),
		ManagerID: u.ManagerID,
	}
}

func FromResponse(r UserResponse) User {
	role, ok := ParseRole(r.Role)
	if !ok {
		role = Role(r.Role)
	}
	return User{
		ID:        r.ID,
		FullName:  r.FullName,
		Email:     r.Email,
		Role:      role,
		ManagerID: r.ManagerID,
	}
}

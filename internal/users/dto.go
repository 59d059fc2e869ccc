package users

// CreateUserRequest carries the input for creating an account.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=255"`
	Role     string `json:"role" validate:"required,validrole"`
	Status   string `json:"status" validate:"required,validstatus"`
}

// UpdateUserRequest carries the input for mutating an account. Nil fields
// are left untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=255"`
	Role     *string `json:"role,omitempty" validate:"omitempty,validrole"`
	Status   *string `json:"status,omitempty" validate:"omitempty,validstatus"`
}

// ListUsersRequest carries the listing filters. Every filter is optional;
// an absent filter is a no-op, never an empty-string match.
type ListUsersRequest struct {
	ID     *int64 `json:"id,omitempty"`
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Email  string `json:"email,omitempty" validate:"omitempty,min=2,max=255"`
	Role   string `json:"role,omitempty" validate:"omitempty,validrole"`
	Status string `json:"status,omitempty" validate:"omitempty,validstatus"`
	Page   int    `json:"page,omitempty" validate:"omitempty,gte=1"`
}

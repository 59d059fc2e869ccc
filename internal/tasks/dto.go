package tasks

// DateTimeLayout is the wire format for every date-time parameter.
const DateTimeLayout = "2006-01-02 15:04:05"

// CreateTaskRequest carries the input for creating a task. UserID is the
// requested owner; a superadmin may omit it and owns the task themselves.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=1020"`
	Description string `json:"description" validate:"required,min=2,max=1020"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02 15:04:05"`
	Completed   bool   `json:"completed"`
	UserID      int64  `json:"user_id"`
}

// UpdateTaskRequest carries the input for mutating a task. Nil fields are
// left untouched; a non-nil UserID requests an ownership reassignment.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=2,max=1020"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=2,max=1020"`
	DueDate     *string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	Completed   *bool   `json:"completed,omitempty"`
	UserID      *int64  `json:"user_id,omitempty"`
}

// ListTasksRequest carries the listing filters. Every filter is optional;
// an absent filter is a no-op, never an empty match. Range bounds are
// inclusive and their from<=to ordering is enforced upstream.
type ListTasksRequest struct {
	UserID        *int64 `json:"user_id,omitempty"`
	Title         string `json:"title,omitempty" validate:"omitempty,min=2,max=1020"`
	Description   string `json:"description,omitempty" validate:"omitempty,min=2,max=1020"`
	Completed     *bool  `json:"completed,omitempty"`
	DueDateFrom   string `json:"due_date_from,omitempty" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	DueDateTo     string `json:"due_date_to,omitempty" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	CreatedAtFrom string `json:"created_at_from,omitempty" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	CreatedAtTo   string `json:"created_at_to,omitempty" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	UpdatedAtFrom string `json:"updated_at_from,omitempty" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	UpdatedAtTo   string `json:"updated_at_to,omitempty" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	Page          int    `json:"page,omitempty" validate:"omitempty,gte=1"`
}

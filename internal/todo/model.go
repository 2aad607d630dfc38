package todo

import "time"

// Todo is the stored representation of a single item. OwnerID never
// appears in a response payload; PublicTodo is the outward shape.
type Todo struct {
	ID          string
	Title       string
	Description *string
	IsCompleted bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Public strips the owner from the record.
func (t *Todo) Public() *PublicTodo {
	return &PublicTodo{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// PublicTodo is what clients see. Description serializes as null when
// unset.
type PublicTodo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTodoRequest is the POST body. Title is validated by the service
// rather than a binding tag so constraint failures surface as 422 with a
// field-level reason.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsCompleted bool    `json:"is_completed"`
}

// UpdateTodoRequest is the PATCH body. Each field is tri-state: an
// omitted field leaves the stored value untouched, while a present field
// is applied even when it carries a falsy value ({"is_completed": false}
// clears the flag, {"description": null} clears the description).
type UpdateTodoRequest struct {
	Title       Optional[string]  `json:"title"`
	Description Optional[*string] `json:"description"`
	IsCompleted Optional[bool]    `json:"is_completed"`
}

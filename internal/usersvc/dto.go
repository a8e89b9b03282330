package usersvc

// CreateUserRequest is the payload of the create_user message.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   *int   `json:"age,omitempty"`
}

package user

// User represents a user record owned by the user store. The ID is an opaque
// identifier assigned by the store exactly once, at creation.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age,omitempty"`
}

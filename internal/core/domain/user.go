package domain

// User is reference data used to resolve notification recipients.
type User struct {
	UserID string `json:"userID"` // Primary Key (UUID)
	Name   string `json:"name"`
	Email  string `json:"email"` // May be empty; such users are skipped as recipients
}

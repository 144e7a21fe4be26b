package dto

// CreateThoughtRequest posts a short message to the ephemeral board.
type CreateThoughtRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

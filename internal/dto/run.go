package dto

// CreateRunRequest is the body of a create run request
type CreateRunRequest struct {
	Target *string `json:"target" validate:"required"`
}

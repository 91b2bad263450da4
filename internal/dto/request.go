package dto

type CreateRsvpRequest struct {
	Status string `json:"status"`
}

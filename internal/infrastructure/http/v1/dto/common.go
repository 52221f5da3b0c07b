// Package dto provides request and response shapes for the HTTP API.
// Responses reuse the domain models' JSON tags; request DTOs validate
// input and map it onto entities.
package dto

// IDResponse returns a created entity's id.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse reports an operation outcome without a body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

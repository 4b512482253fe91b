package models

// OutboundMessageRequest represents a text notification pushed to a staff phone.
type OutboundMessageRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}

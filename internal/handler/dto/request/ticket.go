package request

import (
	"github.com/google/uuid"
)

type TransferTicketRequest struct {
	ToUserID uuid.UUID `json:"to_user_id" binding:"required"`
}

type ValidateTicketRequest struct {
	Credential string `json:"credential" binding:"required"`
}

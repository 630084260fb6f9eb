package api

import (
	"errors"
	"net/http"

	reqdto "tickethub/internal/handler/dto/request"
	resdto "tickethub/internal/handler/dto/response"
	"tickethub/internal/handler/httperr"
	"tickethub/internal/handler/middleware"
	"tickethub/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type ValidationHandler struct {
	validationCommands commands.ValidationCommands
}

func NewValidationHandler(validationCommands commands.ValidationCommands) *ValidationHandler {
	return &ValidationHandler{validationCommands: validationCommands}
}

// @Summary Validate a ticket at the gate
// @Description Redeem a credential; at most one validator wins per ticket
// @Tags validation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.ValidateTicketRequest true "Credential to redeem"
// @Success 200 {object} response.ValidationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Router /validations [post]
func (h *ValidationHandler) Validate(c *gin.Context) {
	validatorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	var req reqdto.ValidateTicketRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.validationCommands.ValidateTicket(c.Request.Context(), req.Credential, validatorID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrCredentialNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Credential not found", nil)
		case errors.Is(err, commands.ErrTicketAlreadyUsed):
			httperr.AbortWithError(c, http.StatusConflict, err, "Ticket already redeemed", nil)
		case errors.Is(err, commands.ErrTicketExpired):
			httperr.AbortWithError(c, http.StatusGone, err, "Ticket validity window has passed", nil)
		case errors.Is(err, commands.ErrTicketNotRedeemable):
			httperr.AbortWithError(c, http.StatusConflict, err, "Ticket is not redeemable", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromValidationResult(result))
}

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
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	checkoutCommands commands.CheckoutCommands
}

func NewCheckoutHandler(checkoutCommands commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{checkoutCommands: checkoutCommands}
}

// @Summary Checkout a cart
// @Description Issue tickets for each cart line; lines fail independently
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Optional idempotency key (UUID)"
// @Param request body request.CheckoutRequest true "Cart to purchase"
// @Success 201 {object} response.CheckoutResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	idempotencyKey, err := optionalIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid idempotency key format", nil)
		return
	}

	var req reqdto.CheckoutRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.checkoutCommands.Checkout(c.Request.Context(), userID, req.ToCartLines(), idempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrEmptyCart):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Cart has no lines", nil)
		case errors.Is(err, commands.ErrDuplicateCheckout):
			httperr.AbortWithError(c, http.StatusConflict, err, "Idempotency key reused with a different cart", nil)
		case errors.Is(err, commands.ErrIdempotencyInProgress):
			httperr.AbortWithError(c, http.StatusConflict, err, "Checkout is currently being processed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromCheckoutResult(result))
}

func optionalIdempotencyKey(c *gin.Context) (*uuid.UUID, error) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		return nil, nil
	}
	key, err := uuid.Parse(keyStr)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	reqdto "tickethub/internal/handler/dto/request"
	resdto "tickethub/internal/handler/dto/response"
	"tickethub/internal/handler/httperr"
	"tickethub/internal/handler/middleware"
	"tickethub/internal/usecase/commands"
	"tickethub/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TicketHandler struct {
	ticketCommands commands.TicketCommands
	ticketQueries  queries.TicketQueries
}

func NewTicketHandler(ticketCommands commands.TicketCommands, ticketQueries queries.TicketQueries) *TicketHandler {
	return &TicketHandler{
		ticketCommands: ticketCommands,
		ticketQueries:  ticketQueries,
	}
}

// @Summary Get ticket
// @Description Get one of the caller's tickets by ID
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 200 {object} response.TicketResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tickets/{id} [get]
func (h *TicketHandler) Get(c *gin.Context) {
	userID, ticketID, ok := h.callerAndTicket(c)
	if !ok {
		return
	}

	view, err := h.ticketQueries.GetByID(c.Request.Context(), userID, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrTicketViewNotFound), errors.Is(err, queries.ErrNotTicketOwner):
			// Not-owned reads 404 so ticket IDs cannot be probed.
			httperr.AbortWithError(c, http.StatusNotFound, err, "Ticket not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromTicketView(view))
}

// @Summary List tickets
// @Description List the caller's tickets, newest first, keyset paginated
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Opaque pagination cursor"
// @Param limit query int false "Page size (default 20, max 200)"
// @Success 200 {object} response.TicketListResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	var after *queries.Cursor
	if cursorStr := c.Query("cursor"); cursorStr != "" {
		after = &queries.Cursor{After: cursorStr}
	}
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid limit", nil)
			return
		}
		limit = parsed
	}

	items, next, err := h.ticketQueries.ListByUser(c.Request.Context(), userID, after, limit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
		return
	}

	resp := resdto.TicketListResponse{
		Items: make([]*resdto.TicketListItemResponse, len(items)),
	}
	for i, item := range items {
		resp.Items[i] = resdto.FromTicketListItem(item)
	}
	if next != nil {
		resp.NextCursor = &next.After
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel ticket
// @Description Void a still-valid ticket and compute the refund
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 200 {object} response.CancelTicketResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tickets/{id}/cancel [post]
func (h *TicketHandler) Cancel(c *gin.Context) {
	userID, ticketID, ok := h.callerAndTicket(c)
	if !ok {
		return
	}

	result, err := h.ticketCommands.CancelTicket(c.Request.Context(), ticketID, userID)
	if err != nil {
		h.writeTicketCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCancelResult(result))
}

// @Summary Transfer ticket
// @Description Reassign a still-valid ticket to another user
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param request body request.TransferTicketRequest true "Transfer target"
// @Success 200 {object} response.TicketResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tickets/{id}/transfer [post]
func (h *TicketHandler) Transfer(c *gin.Context) {
	userID, ticketID, ok := h.callerAndTicket(c)
	if !ok {
		return
	}

	var req reqdto.TransferTicketRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	view, err := h.ticketCommands.TransferTicket(c.Request.Context(), ticketID, userID, req.ToUserID)
	if err != nil {
		h.writeTicketCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromTicketView(view))
}

// @Summary Add ticket to calendar
// @Description Mark the ticket as added to the user's calendar
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tickets/{id}/calendar [post]
func (h *TicketHandler) AddToCalendar(c *gin.Context) {
	h.setFlag(c, h.ticketCommands.AddToCalendar)
}

// @Summary Set ticket reminder
// @Description Mark the ticket as having a reminder scheduled
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tickets/{id}/reminder [post]
func (h *TicketHandler) SetReminder(c *gin.Context) {
	h.setFlag(c, h.ticketCommands.SetReminder)
}

// @Summary Get wallet pass
// @Description Build the wallet pass URL for a ticket (apple or google)
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param platform query string true "Wallet platform" Enums(apple, google)
// @Success 200 {object} response.WalletPassResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tickets/{id}/wallet-pass [get]
func (h *TicketHandler) WalletPass(c *gin.Context) {
	userID, ticketID, ok := h.callerAndTicket(c)
	if !ok {
		return
	}

	platform := queries.WalletPlatform(c.Query("platform"))
	view, err := h.ticketQueries.WalletPass(c.Request.Context(), userID, ticketID, platform)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrInvalidPlatform):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Unsupported wallet platform", nil)
		case errors.Is(err, queries.ErrTicketViewNotFound), errors.Is(err, queries.ErrNotTicketOwner):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Ticket not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.WalletPassResponse{URL: view.URL})
}

func (h *TicketHandler) setFlag(c *gin.Context, op func(ctx context.Context, id uuid.UUID) error) {
	_, ticketID, ok := h.callerAndTicket(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), ticketID); err != nil {
		h.writeTicketCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TicketHandler) callerAndTicket(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return uuid.Nil, uuid.Nil, false
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid ticket ID format", nil)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, ticketID, true
}

func (h *TicketHandler) writeTicketCommandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrTicketNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Ticket not found", nil)
	case errors.Is(err, commands.ErrRecipientNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Transfer recipient not found", nil)
	case errors.Is(err, commands.ErrNotTicketOwner):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Ticket is not owned by requester", nil)
	case errors.Is(err, commands.ErrTicketAlreadyUsed):
		httperr.AbortWithError(c, http.StatusConflict, err, "Ticket already redeemed", nil)
	case errors.Is(err, commands.ErrTicketNotCancelable),
		errors.Is(err, commands.ErrTicketNotRedeemable),
		errors.Is(err, commands.ErrTicketStateChanged):
		httperr.AbortWithError(c, http.StatusConflict, err, "Ticket is not in a valid state for this operation", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"tickethub/internal/domain/ticket"
	"tickethub/internal/domain/user"
	"tickethub/internal/handler/api"
	resdto "tickethub/internal/handler/dto/response"
	"tickethub/internal/usecase/commands"
	"tickethub/internal/usecase/queries"
	"tickethub/tests/common/builder"
	"tickethub/tests/common/httptest"
	commandsmock "tickethub/tests/mock/commands"
	queriesmock "tickethub/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type TicketHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockTicketCommands
	mockQueries  *queriesmock.MockTicketQueries
	handler      *api.TicketHandler
	userID       uuid.UUID
}

func (s *TicketHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockTicketCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockTicketQueries(s.mockCtrl)
	s.handler = api.NewTicketHandler(s.mockCommands, s.mockQueries)
	s.userID = uuid.New()

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.userID)
		c.Set("user_role", user.RoleBuyer)
		c.Next()
	}

	s.router.GET("/tickets", authMiddleware, s.handler.List)
	s.router.GET("/tickets/:id", authMiddleware, s.handler.Get)
	s.router.POST("/tickets/:id/cancel", authMiddleware, s.handler.Cancel)
	s.router.POST("/tickets/:id/transfer", authMiddleware, s.handler.Transfer)
	s.router.POST("/tickets/:id/calendar", authMiddleware, s.handler.AddToCalendar)
	s.router.POST("/tickets/:id/reminder", authMiddleware, s.handler.SetReminder)
	s.router.GET("/tickets/:id/wallet-pass", authMiddleware, s.handler.WalletPass)
}

func (s *TicketHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestTicketHandlerSuite(t *testing.T) {
	suite.Run(t, new(TicketHandlerTestSuite))
}

// ================================================================================
// TestGet
// ================================================================================

func (s *TicketHandlerTestSuite) TestGet() {
	ticketID := uuid.New()
	url := "/tickets/" + ticketID.String()

	returnView := builder.NewTicketBuilder().WithID(ticketID).WithOwner(s.userID).BuildView()

	s.Run("success: returns 200 OK with TicketResponse", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.userID, ticketID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response resdto.TicketResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(ticketID, response.ID)
		s.Equal(returnView.Credential, response.Credential)
		s.Equal(string(ticket.StatusValid), response.Status)
	})

	s.Run("error: 400 Bad Request for invalid UUID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/tickets/invalid-uuid", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid ticket ID")
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: not-owned ticket reads as 404", func() {
		testCases := []struct {
			name         string
			queriesError error
		}{
			{name: "ticket missing", queriesError: queries.ErrTicketViewNotFound},
			{name: "ticket owned by someone else", queriesError: queries.ErrNotTicketOwner},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockQueries.EXPECT().GetByID(gomock.Any(), s.userID, ticketID).
					Return(nil, tc.queriesError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Ticket not found")
			})
		}
	})

	s.Run("error: 500 Internal Server Error on query failure", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.userID, ticketID).
			Return(nil, errors.New("database error")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}

// ================================================================================
// TestList
// ================================================================================

func (s *TicketHandlerTestSuite) TestList() {
	baseURL := "/tickets"

	items := []*queries.TicketListItem{
		builder.NewTicketBuilder().WithOwner(s.userID).BuildListItem(),
		builder.NewTicketBuilder().WithOwner(s.userID).BuildListItem(),
	}

	s.Run("success: returns ticket list with defaults", func() {
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.userID, (*queries.Cursor)(nil), 0).
			Return(items, nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, baseURL, nil, "bearer-token")

		var response resdto.TicketListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response.Items, 2)
		s.Nil(response.NextCursor)
	})

	s.Run("success: pagination params are forwarded", func() {
		url := baseURL + "?limit=10&cursor=cursor123"
		expectedCursor := &queries.Cursor{After: "cursor123"}
		nextCursor := &queries.Cursor{After: "next_cursor456"}

		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.userID, expectedCursor, 10).
			Return(items[:1], nextCursor, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response resdto.TicketListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response.Items, 1)
		s.NotNil(response.NextCursor)
		s.Equal("next_cursor456", *response.NextCursor)
	})

	s.Run("error: 400 Bad Request for non-numeric limit", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, baseURL+"?limit=abc", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid limit")
	})

	s.Run("error: 400 Bad Request for undecodable cursor", func() {
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.userID, &queries.Cursor{After: "garbage"}, 0).
			Return(nil, nil, errors.New("invalid cursor format")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, baseURL+"?cursor=garbage", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid cursor")
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, baseURL, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}

// ================================================================================
// TestCancel
// ================================================================================

func (s *TicketHandlerTestSuite) TestCancel() {
	ticketID := uuid.New()
	url := "/tickets/" + ticketID.String() + "/cancel"

	s.Run("success: returns 200 OK with refund amount", func() {
		result := &commands.CancelTicketResult{TicketID: ticketID, RefundCents: 9000}
		s.mockCommands.EXPECT().CancelTicket(gomock.Any(), ticketID, s.userID).
			Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var response resdto.CancelTicketResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(ticketID, response.TicketID)
		s.Equal(int64(9000), response.RefundCents)
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "ticket not found",
				commandsError:  commands.ErrTicketNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Ticket not found",
			},
			{
				name:           "not the owner",
				commandsError:  commands.ErrNotTicketOwner,
				expectedStatus: http.StatusForbidden,
				expectedMsg:    "not owned",
			},
			{
				name:           "already redeemed",
				commandsError:  commands.ErrTicketAlreadyUsed,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "already redeemed",
			},
			{
				name:           "not cancelable",
				commandsError:  commands.ErrTicketNotCancelable,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "not in a valid state",
			},
			{
				name:           "lost the state race",
				commandsError:  commands.ErrTicketStateChanged,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "not in a valid state",
			},
			{
				name:           "internal server error",
				commandsError:  errors.New("database error"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().CancelTicket(gomock.Any(), ticketID, s.userID).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestTransfer
// ================================================================================

func (s *TicketHandlerTestSuite) TestTransfer() {
	ticketID := uuid.New()
	url := "/tickets/" + ticketID.String() + "/transfer"
	recipientID := uuid.New()
	reqBody := map[string]string{"to_user_id": recipientID.String()}

	returnView := builder.NewTicketBuilder().WithID(ticketID).WithOwner(recipientID).BuildView()

	s.Run("success: returns 200 OK with reassigned ticket", func() {
		s.mockCommands.EXPECT().TransferTicket(gomock.Any(), ticketID, s.userID, recipientID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var response resdto.TicketResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(ticketID, response.ID)
		s.Equal(recipientID, response.UserID)
	})

	s.Run("error: 400 Bad Request when to_user_id is missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]string{}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: 404 Not Found for unknown recipient", func() {
		s.mockCommands.EXPECT().TransferTicket(gomock.Any(), ticketID, s.userID, recipientID).
			Return(nil, commands.ErrRecipientNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "recipient not found")
	})

	s.Run("error: 403 Forbidden when not the owner", func() {
		s.mockCommands.EXPECT().TransferTicket(gomock.Any(), ticketID, s.userID, recipientID).
			Return(nil, commands.ErrNotTicketOwner).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "not owned")
	})
}

// ================================================================================
// TestFlags
// ================================================================================

func (s *TicketHandlerTestSuite) TestFlags() {
	ticketID := uuid.New()

	s.Run("success: add to calendar returns 204 No Content", func() {
		s.mockCommands.EXPECT().AddToCalendar(gomock.Any(), ticketID).
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/tickets/"+ticketID.String()+"/calendar", nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("success: set reminder returns 204 No Content", func() {
		s.mockCommands.EXPECT().SetReminder(gomock.Any(), ticketID).
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/tickets/"+ticketID.String()+"/reminder", nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 404 Not Found for missing ticket", func() {
		s.mockCommands.EXPECT().SetReminder(gomock.Any(), ticketID).
			Return(commands.ErrTicketNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/tickets/"+ticketID.String()+"/reminder", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Ticket not found")
	})
}

// ================================================================================
// TestWalletPass
// ================================================================================

func (s *TicketHandlerTestSuite) TestWalletPass() {
	ticketID := uuid.New()
	baseURL := "/tickets/" + ticketID.String() + "/wallet-pass"

	s.Run("success: returns 200 OK with pass URL", func() {
		view := &queries.WalletPassView{URL: "https://passes.example.com/apple/" + ticketID.String()}
		s.mockQueries.EXPECT().WalletPass(gomock.Any(), s.userID, ticketID, queries.PlatformApple).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, baseURL+"?platform=apple", nil, "bearer-token")

		var response resdto.WalletPassResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(view.URL, response.URL)
	})

	s.Run("error: 400 Bad Request for unsupported platform", func() {
		s.mockQueries.EXPECT().WalletPass(gomock.Any(), s.userID, ticketID, queries.WalletPlatform("samsung")).
			Return(nil, queries.ErrInvalidPlatform).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, baseURL+"?platform=samsung", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Unsupported wallet platform")
	})

	s.Run("error: 404 Not Found for not-owned ticket", func() {
		s.mockQueries.EXPECT().WalletPass(gomock.Any(), s.userID, ticketID, queries.PlatformGoogle).
			Return(nil, queries.ErrNotTicketOwner).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, baseURL+"?platform=google", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Ticket not found")
	})
}

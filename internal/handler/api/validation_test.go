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
	"tickethub/tests/common/builder"
	"tickethub/tests/common/httptest"
	commandsmock "tickethub/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ValidationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockValidationCommands
	handler      *api.ValidationHandler
	validatorID  uuid.UUID
}

func (s *ValidationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockValidationCommands(s.mockCtrl)
	s.handler = api.NewValidationHandler(s.mockCommands)
	s.validatorID = uuid.New()

	// Mock authentication middleware for testing; gate validators act as staff
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.validatorID)
		c.Set("user_role", user.RoleStaff)
		c.Next()
	}

	s.router.POST("/validations", authMiddleware, s.handler.Validate)
}

func (s *ValidationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestValidationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ValidationHandlerTestSuite))
}

// ================================================================================
// TestValidate
// ================================================================================

func (s *ValidationHandlerTestSuite) TestValidate() {
	url := "/validations"

	b := builder.NewTicketBuilder().WithStatus(ticket.StatusUsed)
	usedView := b.BuildView()
	reqBody := map[string]string{"credential": usedView.Credential}

	s.Run("success: returns 200 OK with ticket and buyer info", func() {
		result := &commands.ValidationResult{
			Ticket:     usedView,
			BuyerName:  "Ada Lovelace",
			BuyerEmail: "ada@example.com",
		}
		s.mockCommands.EXPECT().ValidateTicket(gomock.Any(), usedView.Credential, s.validatorID).
			Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var response resdto.ValidationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(usedView.ID, response.Ticket.ID)
		s.Equal("Ada Lovelace", response.BuyerName)
		s.Equal("ada@example.com", response.BuyerEmail)
	})

	s.Run("error: 400 Bad Request when credential is missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]string{}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
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
				name:           "credential not found",
				commandsError:  commands.ErrCredentialNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Credential not found",
			},
			{
				name:           "already redeemed",
				commandsError:  commands.ErrTicketAlreadyUsed,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "already redeemed",
			},
			{
				name:           "validity window passed",
				commandsError:  commands.ErrTicketExpired,
				expectedStatus: http.StatusGone,
				expectedMsg:    "validity window",
			},
			{
				name:           "cancelled ticket",
				commandsError:  commands.ErrTicketNotRedeemable,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "not redeemable",
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
				s.mockCommands.EXPECT().ValidateTicket(gomock.Any(), usedView.Credential, s.validatorID).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

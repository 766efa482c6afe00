package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authcore/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/http/helpers"
	"github.com/dropDatabas3/authcore/internal/http/middlewares"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// AuthorizeController emite codes para un usuario que ya tiene access token.
type AuthorizeController struct {
	service Service
}

func NewAuthorizeController(s Service) *AuthorizeController {
	return &AuthorizeController{service: s}
}

// Authorize maneja GET /auth/authorize. Requiere RequireBearer delante.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrTokenMissing)
		return
	}
	log := logger.From(r.Context()).With(
		logger.Layer("controller"),
		logger.Op("AuthorizeController.Authorize"),
		logger.UserID(userID),
	)

	req := dto.AuthorizeFromQuery(r.URL.Query().Get)
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	res, err := c.service.Authorize(r.Context(), req.ToService(userID))
	if err != nil {
		log.Debug("authorize failed", logger.ClientID(req.ClientID), logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

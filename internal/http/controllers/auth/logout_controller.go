package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authcore/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/http/helpers"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

type LogoutController struct {
	service Service
}

func NewLogoutController(s Service) *LogoutController {
	return &LogoutController{service: s}
}

// Logout maneja POST /auth/logout. Idempotente: 204 aunque el token no exista.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.LogoutRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	if err := c.service.Logout(r.Context(), req.RefreshToken, req.ClientID); err != nil {
		logger.From(r.Context()).Debug("logout failed",
			logger.Layer("controller"),
			logger.ClientID(req.ClientID),
			logger.Err(err),
		)
		httperrors.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authcore/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/http/helpers"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

type TokenController struct {
	service Service
}

func NewTokenController(s Service) *TokenController {
	return &TokenController{service: s}
}

// Token maneja POST /auth/token (JSON o form). Grants: authorization_code y
// refresh_token.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("TokenController.Token"))

	var req dto.TokenRequest
	if err := helpers.ReadJSONOrForm(w, r, &req, req.FromForm); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	res, err := c.service.Token(r.Context(), req.ToService())
	if err != nil {
		log.Debug("token exchange failed",
			logger.GrantType(req.GrantType),
			logger.ClientID(req.ClientID),
			logger.Err(err),
		)
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

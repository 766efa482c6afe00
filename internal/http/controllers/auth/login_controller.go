package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authcore/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/http/helpers"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// LoginController maneja el endpoint de login con password.
type LoginController struct {
	service Service
}

func NewLoginController(s Service) *LoginController {
	return &LoginController{service: s}
}

// Login maneja POST /auth/login. Devuelve un authorization code, nunca tokens.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	res, err := c.service.Login(r.Context(), req.ToService())
	if err != nil {
		log.Debug("login failed", logger.ClientID(req.ClientID), logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authcore/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/http/helpers"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

type RegisterController struct {
	service Service
}

func NewRegisterController(s Service) *RegisterController {
	return &RegisterController{service: s}
}

// Register maneja POST /auth/register. Responde 201 con el usuario público.
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	var req dto.RegisterRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	u, err := c.service.Register(r.Context(), req.ToService())
	if err != nil {
		log.Debug("register failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, u)
}

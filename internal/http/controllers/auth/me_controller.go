package auth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/http/helpers"
	"github.com/dropDatabas3/authcore/internal/http/middlewares"
)

type MeController struct {
	service Service
}

func NewMeController(s Service) *MeController {
	return &MeController{service: s}
}

// Me maneja GET /users/me con el sub del access token.
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrTokenMissing)
		return
	}
	u, err := c.service.Me(r.Context(), userID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, u)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/docspot-api/internal/services"
)

// UpdateProfileRequest only changes the fields that are present.
type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Specialty *string `json:"specialty"`
	Location  *string `json:"location"`
}

// GetProfile retrieves the profile of the currently authenticated user.
func (h *Handler) GetProfile(c *gin.Context) {
	acct, ok := account(c)
	if !ok {
		return
	}
	user, err := h.Profile.Get(c.Request.Context(), acct)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	acct, ok := account(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.Profile.Update(c.Request.Context(), acct, services.ProfileInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Specialty: req.Specialty,
		Location:  req.Location,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

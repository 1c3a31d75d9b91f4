package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/middleware"
	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/services"
)

// Handler holds the services the HTTP endpoints delegate to.
type Handler struct {
	Auth         *services.AuthService
	Doctors      *services.DoctorService
	Appointments *services.AppointmentService
	Admin        *services.AdminService
	Profile      *services.ProfileService
}

func NewHandler(
	auth *services.AuthService,
	doctors *services.DoctorService,
	appointments *services.AppointmentService,
	admin *services.AdminService,
	profile *services.ProfileService,
) *Handler {
	return &Handler{
		Auth:         auth,
		Doctors:      doctors,
		Appointments: appointments,
		Admin:        admin,
		Profile:      profile,
	}
}

// account is only called behind the gate; a missing account means the
// route was registered without it.
func account(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperr.Unauthorized("Not authorized, no token"))
	}
	return u, ok
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListDoctors is the public directory of approved doctors.
func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.Doctors.ListApproved(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	doctor, err := h.Doctors.GetApproved(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doctor)
}

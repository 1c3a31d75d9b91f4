package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) PendingDoctors(c *gin.Context) {
	doctors, err := h.Admin.ListPendingDoctors(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *Handler) ApproveDoctor(c *gin.Context) {
	doctor, err := h.Admin.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor approved successfully", "doctorId": doctor.ID})
}

// RejectDoctor removes the doctor account.
func (h *Handler) RejectDoctor(c *gin.Context) {
	doctor, err := h.Admin.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor rejected and removed successfully", "doctorId": doctor.ID})
}

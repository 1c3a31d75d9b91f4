package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/services"
)

type BookAppointmentRequest struct {
	DoctorID  string   `json:"doctorId" binding:"required"`
	Date      string   `json:"date" binding:"required"`
	Time      string   `json:"time" binding:"required"`
	Documents []string `json:"documents"`
}

type UpdateAppointmentRequest struct {
	Status       *models.AppointmentStatus `json:"status"`
	DoctorNotes  *string                   `json:"doctorNotes"`
	VisitSummary *string                   `json:"visitSummary"`
}

type appointmentResponse struct {
	Message     string              `json:"message"`
	Appointment *models.Appointment `json:"appointment"`
}

// BookAppointment creates a pending appointment for the signed-in customer.
func (h *Handler) BookAppointment(c *gin.Context) {
	customer, ok := account(c)
	if !ok {
		return
	}
	var req BookAppointmentRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	apt, err := h.Appointments.Book(c.Request.Context(), customer, services.BookInput{
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Documents: req.Documents,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Appointment request submitted successfully. Waiting for doctor confirmation.",
		"appointmentId": apt.ID,
	})
}

// MyAppointments lists the caller's appointments.
// Optional query: ?status=pending&from=2025-07-01&to=2025-07-31
func (h *Handler) MyAppointments(c *gin.Context) {
	acct, ok := account(c)
	if !ok {
		return
	}

	var filter services.ListFilter
	if status := c.Query("status"); status != "" {
		filter.Status = models.AppointmentStatus(status)
		if !filter.Status.Valid() {
			_ = c.Error(apperr.InvalidRequest("Invalid status " + status))
			return
		}
	}
	var err error
	if filter.From, err = queryDate(c, "from"); err != nil {
		_ = c.Error(err)
		return
	}
	if filter.To, err = queryDate(c, "to"); err != nil {
		_ = c.Error(err)
		return
	}

	appointments, err := h.Appointments.ListMine(c.Request.Context(), acct, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func queryDate(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperr.InvalidRequest(fmt.Sprintf("Invalid %s date, use YYYY-MM-DD", name))
	}
	return t, nil
}

// UpdateAppointmentStatus is used by the owning doctor.
func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	doctor, ok := account(c)
	if !ok {
		return
	}
	var req UpdateAppointmentRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	apt, err := h.Appointments.UpdateStatus(c.Request.Context(), doctor, c.Param("id"), services.UpdateInput{
		Status:       req.Status,
		DoctorNotes:  req.DoctorNotes,
		VisitSummary: req.VisitSummary,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse{Message: "Appointment updated successfully", Appointment: apt})
}

// CancelAppointment is used by the owning customer.
func (h *Handler) CancelAppointment(c *gin.Context) {
	customer, ok := account(c)
	if !ok {
		return
	}
	apt, err := h.Appointments.Cancel(c.Request.Context(), customer, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse{Message: "Appointment cancelled successfully", Appointment: apt})
}

func (h *Handler) AppointmentSummaryPDF(c *gin.Context) {
	acct, ok := account(c)
	if !ok {
		return
	}
	pdf, err := h.Appointments.SummaryPDF(c.Request.Context(), acct, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	name := "visit-summary.pdf"
	if id, err := primitive.ObjectIDFromHex(c.Param("id")); err == nil {
		name = "visit-summary-" + id.Hex() + ".pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

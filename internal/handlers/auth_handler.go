package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/services"
)

type RegisterRequest struct {
	Name      string      `json:"name" binding:"required"`
	Email     string      `json:"email" binding:"required,email"`
	Password  string      `json:"password" binding:"required,min=6"`
	Role      models.Role `json:"role" binding:"omitempty,docspotrole"`
	Specialty string      `json:"specialty"`
	Location  string      `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerResponse struct {
	ID         primitive.ObjectID `json:"_id"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Role       models.Role        `json:"role"`
	IsApproved bool               `json:"isApproved"`
	Specialty  string             `json:"specialty,omitempty"`
	Location   string             `json:"location,omitempty"`
	Token      string             `json:"token"`
	Message    string             `json:"message"`
}

type loginResponse struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Role  models.Role        `json:"role"`
	Token string             `json:"token"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.Auth.Register(c.Request.Context(), services.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		Specialty: req.Specialty,
		Location:  req.Location,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	u := res.User
	c.JSON(http.StatusCreated, registerResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsApproved: u.IsApproved,
		Specialty:  u.Specialty,
		Location:   u.Location,
		Token:      res.Token,
		Message:    res.Message,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		ID:    res.User.ID,
		Name:  res.User.Name,
		Email: res.User.Email,
		Role:  res.User.Role,
		Token: res.Token,
	})
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleDoctor   Role = "doctor"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// User is an account of any role. Specialty and Location only apply to doctors.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"`
	Role       Role               `bson:"role" json:"role"`
	IsApproved bool               `bson:"isApproved" json:"isApproved"`
	Specialty  string             `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Location   string             `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsDoctor() bool { return u.Role == RoleDoctor }

// IsApprovedDoctor is the precondition for being listed and booked.
func (u *User) IsApprovedDoctor() bool { return u.Role == RoleDoctor && u.IsApproved }

// UserSummary is the subset of an account attached to the other party's appointments.
type UserSummary struct {
	ID        primitive.ObjectID `json:"_id"`
	Name      string             `json:"name,omitempty"`
	Email     string             `json:"email,omitempty"`
	Specialty string             `json:"specialty,omitempty"`
	Location  string             `json:"location,omitempty"`
}

// DoctorSummary is what a customer sees about the doctor of an appointment.
func (u *User) DoctorSummary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Specialty: u.Specialty, Location: u.Location}
}

// CustomerSummary is what a doctor sees about the patient of an appointment.
func (u *User) CustomerSummary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

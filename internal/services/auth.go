package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/models"
	"github.com/harentsoaR/docspot-api/internal/store"
	"github.com/harentsoaR/docspot-api/internal/utils"
)

const minPasswordLength = 6

const (
	msgInvalidCredentials = "Invalid email or password"
	msgPendingApproval    = "Your doctor account is pending approval. Please wait for an admin to approve."
)

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Role      models.Role
	Specialty string
	Location  string
}

// AuthResult is an account together with a freshly issued session token.
type AuthResult struct {
	User    models.User
	Token   string
	Message string
}

type AuthService struct {
	users  store.Users
	hasher utils.PasswordHasher
	tokens *utils.TokenManager
	log    *zap.Logger
	now    Clock
}

func NewAuthService(users store.Users, hasher utils.PasswordHasher, tokens *utils.TokenManager, log *zap.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log, now: time.Now}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	if _, err := s.users.ByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("User with this email already exists")
	} else if !isNotFound(err) {
		return nil, apperr.Internal("Failed to create user", err)
	}

	hashedPassword, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	now := s.now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		Name:       in.Name,
		Email:      in.Email,
		Password:   hashedPassword,
		Role:       in.Role,
		IsApproved: in.Role != models.RoleDoctor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Role == models.RoleDoctor {
		user.Specialty = strings.TrimSpace(in.Specialty)
		user.Location = strings.TrimSpace(in.Location)
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, apperr.Internal("Failed to create user", err)
	}
	s.log.Info("account registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", string(user.Role)),
		zap.Bool("approved", user.IsApproved))

	token, err := s.tokens.Generate(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, apperr.Internal("Could not generate token", err)
	}

	msg := "Registration successful."
	if user.Role == models.RoleDoctor {
		msg = "Doctor registration submitted for approval. Please wait for an admin to approve your account."
	}
	return &AuthResult{User: user, Token: token, Message: msg}, nil
}

func validateRegistration(in RegisterInput) error {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return apperr.InvalidRequest("Please provide name, email and password")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperr.InvalidRequest("Please provide a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		return apperr.InvalidRequest("Password must be at least 6 characters")
	}
	if !in.Role.Valid() {
		return apperr.InvalidRequest("Role must be one of customer, doctor or admin")
	}
	if in.Role == models.RoleDoctor && (strings.TrimSpace(in.Specialty) == "" || strings.TrimSpace(in.Location) == "") {
		return apperr.InvalidRequest("Doctors must provide a specialty and a location")
	}
	return nil
}

// Login never says whether the email or the password was wrong, but does
// report a pending doctor approval once the password has matched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.ByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, apperr.Internal("Login failed", err)
	}
	if !s.hasher.Matches(password, user.Password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if user.IsDoctor() && !user.IsApproved {
		return nil, apperr.Unauthorized(msgPendingApproval)
	}

	token, err := s.tokens.Generate(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, apperr.Internal("Could not generate token", err)
	}
	s.log.Info("login", zap.String("user_id", user.ID.Hex()), zap.String("role", string(user.Role)))
	return &AuthResult{User: *user, Token: token}, nil
}

// Authenticate verifies a bearer token and loads the account it names.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperr.Unauthorized("Not authorized, token failed")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Not authorized, token failed")
	}
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("Not authorized, user not found")
		}
		return nil, apperr.Internal("Authentication failed", err)
	}
	user.Password = ""
	return user, nil
}

package controller

import (
	"github.com/trailhead/trailhead/pkg/auth"
	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/repository"
	"github.com/trailhead/trailhead/pkg/server/router"
	"github.com/trailhead/trailhead/pkg/validation"
)

// AuthController handles signup, login, logout, and token refresh.
// Credential verification is mocked: any password is accepted for an
// existing active profile. Token issuance and validation are real.
type AuthController struct {
	users  *repository.UserRepository
	tokens *auth.TokenService
	logger logger.Logger
}

// NewAuthController creates the auth controller.
func NewAuthController(users *repository.UserRepository, tokens *auth.TokenService, log logger.Logger) *AuthController {
	return &AuthController{users: users, tokens: tokens, logger: log}
}

type signupRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	DisplayName  string                 `json:"displayName"`
	FitnessLevel domain.FitnessLevel    `json:"fitnessLevel"`
	Preferences  domain.UserPreferences `json:"preferences"`
	Location     domain.UserLocation    `json:"location"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User   *domain.UserProfile `json:"user,omitempty"`
	Tokens auth.TokenPair      `json:"tokens"`
}

// Signup creates a profile and issues a token pair.
func (ac *AuthController) Signup(c router.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}

	user := &domain.UserProfile{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		FitnessLevel: req.FitnessLevel,
		Preferences:  req.Preferences,
		Location:     req.Location,
	}
	if err := validation.Validate(user); err != nil {
		return Error(c, err)
	}

	ctx := c.Request().Context()
	existing, err := ac.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return Error(c, err)
	}
	if existing != nil {
		return Error(c, NewConflictError("an account with this email already exists", nil))
	}

	if err := ac.users.Create(ctx, user); err != nil {
		return Error(c, err)
	}

	tokens, err := ac.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Error(c, err)
	}
	ac.logger.Info("user signed up", "user_id", user.ID)
	return Created(c, authResponse{User: user, Tokens: tokens})
}

// Login issues a token pair for an existing profile. The password is not
// verified.
func (ac *AuthController) Login(c router.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}
	if req.Email == "" {
		return Error(c, NewValidationError("email is required", nil))
	}

	user, err := ac.users.FindByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return Error(c, err)
	}
	if user == nil {
		return Error(c, NewUnauthorizedError("invalid credentials"))
	}

	tokens, err := ac.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Error(c, err)
	}
	ac.logger.Info("user logged in", "user_id", user.ID)
	return Success(c, authResponse{User: user, Tokens: tokens})
}

// Logout acknowledges the logout. Tokens are stateless, so there is
// nothing to revoke server-side.
func (ac *AuthController) Logout(c router.Context) error {
	return Success(c, map[string]string{"status": "logged out"})
}

// Refresh exchanges a refresh token for a fresh token pair.
func (ac *AuthController) Refresh(c router.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}
	tokens, err := ac.tokens.Refresh(req.RefreshToken)
	if err != nil {
		return Error(c, NewUnauthorizedError("invalid refresh token"))
	}
	return Success(c, authResponse{Tokens: tokens})
}

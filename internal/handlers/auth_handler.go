package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wdmmg/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService services.AuthServicer
	userService services.UserServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthServicer, userService services.UserServicer) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Username  string `json:"username" binding:"required,username"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,max=128,password"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResponse represents the authentication response with a token pair
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	User         UserResponse `json:"user"`
}

func newAuthResponse(res *services.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		TokenType:    res.Tokens.TokenType,
		ExpiresIn:    res.Tokens.ExpiresIn,
		User: UserResponse{
			ID:        res.Profile.ID,
			Email:     res.Profile.Email,
			Username:  res.Profile.Username,
			FirstName: res.Profile.FirstName,
			LastName:  res.Profile.LastName,
		},
	}
}

// Signup handles user registration
// @Summary     Sign up
// @Description Create an account and open a session
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body SignupRequest true "Signup data"
// @Success     200 {object} AuthResponse "Account created and session issued"
// @Failure     400 {object} ErrorResponse "Invalid input or username taken"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Failure     500 {object} ErrorResponse "Account created but no session issued"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	res, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(res))
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(res))
}

// Refresh rotates a refresh token into a new pair
// @Summary     Refresh session
// @Description Exchange a refresh token for a new token pair. The presented token is consumed.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} AuthResponse "New token pair"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid refresh token"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Router      /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	res, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(res))
}

// Logout revokes the caller's refresh tokens
// @Summary     Logout
// @Description Revoke outstanding refresh tokens. Always succeeds.
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Logged out"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.authService.Logout(c.Request.Context(), userID)
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Me returns the caller's profile
// @Summary     Current user
// @Description Get the authenticated user's profile
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Router      /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:        profile.ID,
		Email:     profile.Email,
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	})
}

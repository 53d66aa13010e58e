package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/anonto42/go-blog/backend/internal/models"
	"github.com/anonto42/go-blog/backend/internal/repositories"
	"github.com/anonto42/go-blog/backend/pkg/token"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// The same message is returned whether the username is unknown or the
// password is wrong, so the endpoint cannot be used to enumerate accounts.
const invalidCredentialsMessage = "Invalid username or password"

// AuthHandler handles registration and login
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokenService   *token.Service
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, tokenService *token.Service) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokenService:   tokenService,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

// Register handles user registration with username, email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if !strings.Contains(req.Email, "@") || !strings.Contains(req.Email, ".") {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email format")
	}

	// Check if username or email already exists
	if _, err := h.userRepository.GetUserByUsername(req.Username); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Username already exists")
	}
	if _, err := h.userRepository.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := h.userRepository.CreateUser(user); err != nil {
		// Two concurrent registrations can both pass the checks above; the
		// loser is caught by the unique constraint, not reported as a 500.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusBadRequest, "Username or email already exists")
		}
		log.Printf("Failed to create user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error occurred")
	}

	accessToken, err := h.tokenService.Issue(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "User created successfully",
		"access_token": accessToken,
		"user": echo.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Login handles user authentication with username and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, invalidCredentialsMessage)
		}
		log.Printf("Failed to look up user %q: %v", req.Username, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "An error occurred during login")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, invalidCredentialsMessage)
	}

	accessToken, err := h.tokenService.Issue(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": accessToken,
		"user":         user.Profile(),
	})
}

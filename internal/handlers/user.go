package handlers

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/anonto42/go-blog/backend/internal/middleware"
	"github.com/anonto42/go-blog/backend/internal/repositories"
	"github.com/anonto42/go-blog/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// allowedExtensions is the profile picture extension allow-list.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository repositories.UserRepository
	uploadStore    storage.Store
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, uploadStore storage.Store) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		uploadStore:    uploadStore,
	}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, _ := middleware.UserIDFromContext(c)

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch profile")
	}

	return c.JSON(http.StatusOK, user.Profile())
}

// UpdateProfile updates the authenticated user's profile from multipart
// form fields. Any subset of username, email, bio and profile_picture may
// be sent; changed username/email are re-checked against all other users.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, _ := middleware.UserIDFromContext(c)

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}

	if usernames, ok := form["username"]; ok {
		newUsername := usernames[0]
		if newUsername == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Username cannot be empty")
		}
		if newUsername != user.Username {
			if existing, err := h.userRepository.GetUserByUsername(newUsername); err == nil && existing.ID != user.ID {
				return echo.NewHTTPError(http.StatusBadRequest, "Username already taken")
			}
			user.Username = newUsername
		}
	}

	if emails, ok := form["email"]; ok {
		newEmail := emails[0]
		if !strings.Contains(newEmail, "@") || !strings.Contains(newEmail, ".") {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid email format")
		}
		if newEmail != user.Email {
			if existing, err := h.userRepository.GetUserByEmail(newEmail); err == nil && existing.ID != user.ID {
				return echo.NewHTTPError(http.StatusBadRequest, "Email already taken")
			}
			user.Email = newEmail
		}
	}

	if bios, ok := form["bio"]; ok {
		user.Bio = bios[0]
	}

	oldPicture := ""
	if file, err := c.FormFile("profile_picture"); err == nil {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedExtensions[ext] {
			return echo.NewHTTPError(http.StatusBadRequest, "File type not allowed")
		}

		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read uploaded file")
		}
		defer src.Close()

		storedName, err := h.uploadStore.Save(src, file.Filename)
		if err != nil {
			log.Printf("Failed to store profile picture: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store uploaded file")
		}

		oldPicture = user.ProfilePicture
		user.ProfilePicture = storedName
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusBadRequest, "Username or email already taken")
		}
		log.Printf("Failed to update user %d: %v", user.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	// The new picture replaces the old one; only delete the old file after
	// the new reference has been persisted.
	if oldPicture != "" && oldPicture != user.ProfilePicture {
		if err := h.uploadStore.Remove(oldPicture); err != nil {
			log.Printf("Failed to remove old profile picture %q: %v", oldPicture, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user.Profile(),
	})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/go-blog/backend/internal/middleware"
	"github.com/anonto42/go-blog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
	}
}

// RegisterLikeRoutes registers like-related routes. The toggle requires
// authentication; the count is public.
func (h *LikeHandler) RegisterLikeRoutes(public, protected *echo.Group) {
	protected.POST("/posts/:id/like", h.ToggleLike)
	public.GET("/posts/:id/likes", h.GetLikesCount)
}

// ToggleLike flips the authenticated user's like on a post: liking it if
// they haven't, unliking it if they have. A single endpoint, not separate
// like/unlike operations.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID, _ := middleware.UserIDFromContext(c)

	postID, httpErr := h.resolvePostID(c)
	if httpErr != nil {
		return httpErr
	}

	liked, err := h.likeRepository.Toggle(postID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to toggle like")
	}

	likeCount, err := h.likeRepository.GetLikesCountByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to toggle like")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"is_liked":   liked,
		"like_count": likeCount,
	})
}

// GetLikesCount returns the number of likes on a post
func (h *LikeHandler) GetLikesCount(c echo.Context) error {
	postID, httpErr := h.resolvePostID(c)
	if httpErr != nil {
		return httpErr
	}

	likeCount, err := h.likeRepository.GetLikesCountByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch like count")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"post_id":    postID,
		"like_count": likeCount,
	})
}

// resolvePostID parses the :id param and verifies the post exists.
func (h *LikeHandler) resolvePostID(c echo.Context) (uint, *echo.HTTPError) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	if _, err := h.postRepository.GetPostByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return 0, echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch post")
	}

	return uint(id), nil
}

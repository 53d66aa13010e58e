package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/go-blog/backend/internal/middleware"
	"github.com/anonto42/go-blog/backend/internal/models"
	"github.com/anonto42/go-blog/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	likeRepository repositories.LikeRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, likeRepo repositories.LikeRepository) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		likeRepository: likeRepo,
	}
}

// RegisterPostRoutes registers post-related routes. Listing all posts is
// public (with optional authentication for is_liked); everything else
// requires a valid token.
func (h *PostHandler) RegisterPostRoutes(public, protected *echo.Group) {
	public.GET("/posts", h.GetPosts)
	protected.GET("/posts/mine", h.GetUserPosts)
	protected.POST("/posts", h.CreatePost)
	protected.PUT("/posts/:id", h.UpdatePost)
	protected.DELETE("/posts/:id", h.DeletePost)
}

// GetPosts returns all posts, most recent first, annotated with author
// info, like counts and (for authenticated callers) is_liked.
func (h *PostHandler) GetPosts(c echo.Context) error {
	posts, err := h.postRepository.GetAllPosts()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch posts")
	}

	userID, authenticated := middleware.UserIDFromContext(c)
	responses, err := h.enrichPosts(posts, userID, authenticated)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch posts")
	}

	return c.JSON(http.StatusOK, responses)
}

// GetUserPosts returns the authenticated user's own posts
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, _ := middleware.UserIDFromContext(c)

	if _, err := h.userRepository.GetUserByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user posts")
	}

	posts, err := h.postRepository.GetPostsByUserID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user posts")
	}

	responses, err := h.enrichPosts(posts, userID, true)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user posts")
	}

	return c.JSON(http.StatusOK, echo.Map{"posts": responses})
}

// CreatePost creates a new post owned by the authenticated user
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, _ := middleware.UserIDFromContext(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and content are required")
	}

	post := &models.Post{
		Title:   req.Title,
		Content: req.Content,
		UserID:  userID,
	}

	if err := h.postRepository.CreatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post")
	}

	// Reload with the author relationship for the response.
	created, err := h.postRepository.GetPostByID(post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post")
	}

	return c.JSON(http.StatusCreated, created.ToResponse(0, false))
}

// UpdatePost applies a partial title/content update. Only the owner may
// update a post; anyone else gets 403, not 404.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, _ := middleware.UserIDFromContext(c)

	post, httpErr := h.resolveOwnedPost(c, userID, "You can only edit your own posts")
	if httpErr != nil {
		return httpErr
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}

	if err := h.postRepository.UpdatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update post")
	}

	likeCount, err := h.likeRepository.GetLikesCountByPostID(post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update post")
	}
	likedMap, err := h.likeRepository.GetLikedPostIDs(userID, []uint{post.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update post")
	}

	return c.JSON(http.StatusOK, post.ToResponse(likeCount, likedMap[post.ID]))
}

// DeletePost deletes a post and its likes. Owner only.
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, _ := middleware.UserIDFromContext(c)

	post, httpErr := h.resolveOwnedPost(c, userID, "You can only delete your own posts")
	if httpErr != nil {
		return httpErr
	}

	if err := h.postRepository.DeletePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete post")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// resolveOwnedPost parses the :id param, loads the post and enforces that
// the caller owns it. A missing post is 404; someone else's post is 403.
func (h *PostHandler) resolveOwnedPost(c echo.Context, userID uint, forbiddenMessage string) (*models.Post, *echo.HTTPError) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch post")
	}

	if post.UserID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, forbiddenMessage)
	}
	return post, nil
}

// enrichPosts annotates posts with like counts and, when the caller is
// authenticated, their like state. Counts come from the likes table on
// every call.
func (h *PostHandler) enrichPosts(posts []models.Post, userID uint, authenticated bool) ([]models.PostResponse, error) {
	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	counts, err := h.likeRepository.GetLikesCountsByPostIDs(postIDs)
	if err != nil {
		return nil, err
	}

	likedMap := map[uint]bool{}
	if authenticated {
		likedMap, err = h.likeRepository.GetLikedPostIDs(userID, postIDs)
		if err != nil {
			return nil, err
		}
	}

	responses := make([]models.PostResponse, len(posts))
	for i, p := range posts {
		responses[i] = p.ToResponse(counts[p.ID], likedMap[p.ID])
	}
	return responses, nil
}

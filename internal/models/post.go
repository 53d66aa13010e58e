package models

import "time"

// Post is a blog post owned by exactly one user. The owner and creation
// time never change after creation.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:100;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
}

// PostAuthor is the author display info embedded in post responses.
type PostAuthor struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// PostResponse is a post annotated with author info and like state. The
// like count is always recomputed from the likes table, never stored on
// the post row.
type PostResponse struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Author    PostAuthor `json:"author"`
	LikeCount int64      `json:"like_count"`
	IsLiked   bool       `json:"is_liked"`
}

// ToResponse builds the annotated view of the post. The User association
// must be loaded.
func (p *Post) ToResponse(likeCount int64, isLiked bool) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		Author: PostAuthor{
			Username:       p.User.Username,
			ProfilePicture: p.User.ProfilePicture,
		},
		LikeCount: likeCount,
		IsLiked:   isLiked,
	}
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,max=100"`
	Content string `json:"content" validate:"required"`
}

// UpdatePostRequest defines the request body for updating an existing post.
// Empty fields are left unchanged.
type UpdatePostRequest struct {
	Title   string `json:"title,omitempty" validate:"omitempty,max=100"`
	Content string `json:"content,omitempty"`
}

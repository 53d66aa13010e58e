package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/anonto42/go-blog/backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the real schema and
// constraints. TranslateError matches the production gorm config, so
// unique-constraint violations surface as gorm.ErrDuplicatedKey here too.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A pooled second connection would see its own empty in-memory DB.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Like{}))
	return db
}

func createTestUser(t *testing.T, repo UserRepository, username, email string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: email, PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(user))
	return user
}

func createTestPost(t *testing.T, repo PostRepository, userID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Content: "content", UserID: userID}
	require.NoError(t, repo.CreatePost(post))
	return post
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)

	createTestUser(t, repo, "alice", "alice@example.com")

	err := repo.CreateUser(&models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "expected ErrDuplicatedKey, got %v", err)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)

	createTestUser(t, repo, "alice", "alice@example.com")

	err := repo.CreateUser(&models.User{Username: "bob", Email: "alice@example.com", PasswordHash: "x"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "expected ErrDuplicatedKey, got %v", err)
}

func TestGetUserByUsernameExactMatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)

	created := createTestUser(t, repo, "alice", "alice@example.com")

	found, err := repo.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.GetUserByUsername("nobody")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestToggleLike(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewPostgresUserRepository(db)
	postRepo := NewPostgresPostRepository(db)
	likeRepo := NewPostgresLikeRepository(db)

	user := createTestUser(t, userRepo, "alice", "alice@example.com")
	post := createTestPost(t, postRepo, user.ID, "hello")

	// First toggle likes the post.
	liked, err := likeRepo.Toggle(post.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	count, err := likeRepo.GetLikesCountByPostID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Second toggle unlikes it and the count returns to zero.
	liked, err = likeRepo.Toggle(post.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	count, err = likeRepo.GetLikesCountByPostID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDuplicateLikeRejectedByConstraint(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewPostgresUserRepository(db)
	postRepo := NewPostgresPostRepository(db)
	likeRepo := NewPostgresLikeRepository(db)

	user := createTestUser(t, userRepo, "alice", "alice@example.com")
	post := createTestPost(t, postRepo, user.ID, "hello")

	liked, err := likeRepo.Toggle(post.ID, user.ID)
	require.NoError(t, err)
	require.True(t, liked)

	// A raw second insert for the same pair must be stopped by the unique
	// index, not by any application-level check.
	err = db.Create(&models.Like{PostID: post.ID, UserID: user.ID}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "expected ErrDuplicatedKey, got %v", err)

	count, err := likeRepo.GetLikesCountByPostID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestToggleDistinctUsersCountIndependently(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewPostgresUserRepository(db)
	postRepo := NewPostgresPostRepository(db)
	likeRepo := NewPostgresLikeRepository(db)

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")
	bob := createTestUser(t, userRepo, "bob", "bob@example.com")
	post := createTestPost(t, postRepo, alice.ID, "hello")

	_, err := likeRepo.Toggle(post.ID, alice.ID)
	require.NoError(t, err)
	_, err = likeRepo.Toggle(post.ID, bob.ID)
	require.NoError(t, err)

	count, err := likeRepo.GetLikesCountByPostID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	liked, err := likeRepo.GetLikedPostIDs(bob.ID, []uint{post.ID})
	require.NoError(t, err)
	assert.True(t, liked[post.ID])
}

func TestDeletePostCascadesLikes(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewPostgresUserRepository(db)
	postRepo := NewPostgresPostRepository(db)
	likeRepo := NewPostgresLikeRepository(db)

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")
	bob := createTestUser(t, userRepo, "bob", "bob@example.com")
	doomed := createTestPost(t, postRepo, alice.ID, "doomed")
	kept := createTestPost(t, postRepo, alice.ID, "kept")

	for _, userID := range []uint{alice.ID, bob.ID} {
		_, err := likeRepo.Toggle(doomed.ID, userID)
		require.NoError(t, err)
		_, err = likeRepo.Toggle(kept.ID, userID)
		require.NoError(t, err)
	}

	require.NoError(t, postRepo.DeletePost(doomed))

	_, err := postRepo.GetPostByID(doomed.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var orphaned int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", doomed.ID).Count(&orphaned).Error)
	assert.Equal(t, int64(0), orphaned, "likes must be deleted with their post")

	count, err := likeRepo.GetLikesCountByPostID(kept.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "likes on other posts must survive")
}

func TestGetAllPostsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewPostgresUserRepository(db)
	postRepo := NewPostgresPostRepository(db)

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"oldest", "middle", "newest"} {
		post := &models.Post{
			Title:     title,
			Content:   "content",
			UserID:    alice.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(post).Error)
	}

	posts, err := postRepo.GetAllPosts()
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "newest", posts[0].Title)
	assert.Equal(t, "oldest", posts[2].Title)
	assert.Equal(t, "alice", posts[0].User.Username, "author must be preloaded")
}

func TestGetLikesCountsByPostIDs(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewPostgresUserRepository(db)
	postRepo := NewPostgresPostRepository(db)
	likeRepo := NewPostgresLikeRepository(db)

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")
	bob := createTestUser(t, userRepo, "bob", "bob@example.com")
	first := createTestPost(t, postRepo, alice.ID, "first")
	second := createTestPost(t, postRepo, alice.ID, "second")

	_, err := likeRepo.Toggle(first.ID, alice.ID)
	require.NoError(t, err)
	_, err = likeRepo.Toggle(first.ID, bob.ID)
	require.NoError(t, err)

	counts, err := likeRepo.GetLikesCountsByPostIDs([]uint{first.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[first.ID])
	assert.Equal(t, int64(0), counts[second.ID])

	empty, err := likeRepo.GetLikesCountsByPostIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

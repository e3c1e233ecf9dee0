package social

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/peerwave/backend/internal/apperr"
	"github.com/peerwave/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	walletAlice = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	walletBob   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	walletCarol = "0xcccccccccccccccccccccccccccccccccccccccc"
)

type EngineTestSuite struct {
	suite.Suite
	db     *gorm.DB
	engine *Engine
	ctx    context.Context
}

func (s *EngineTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(s.T(), err)

	sqlDB, err := db.DB()
	require.NoError(s.T(), err)
	// A single connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(s.T(), db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	))

	s.db = db
	s.engine = NewEngine(db)
	s.ctx = context.Background()
}

func (s *EngineTestSuite) createUser(wallet, username string) *models.User {
	user, err := s.engine.UpsertProfile(s.ctx, wallet, username, "", models.AccountStandard)
	require.NoError(s.T(), err)
	return user
}

func (s *EngineTestSuite) createPost(wallet, content string) *models.Post {
	post, err := s.engine.CreatePost(s.ctx, wallet, content, "", "")
	require.NoError(s.T(), err)
	return post
}

func (s *EngineTestSuite) TestUpsertProfileCreatesWithDefaults() {
	user := s.createUser(walletAlice, "alice")

	assert.NotEmpty(s.T(), user.ID)
	assert.Equal(s.T(), walletAlice, user.WalletAddress)
	assert.Equal(s.T(), "alice", user.Username)
	assert.Equal(s.T(), "New to Peerwave", user.Bio)
	assert.Equal(s.T(), models.AccountStandard, user.AccountType)
	assert.NotNil(s.T(), user.LastActiveAt)
}

func (s *EngineTestSuite) TestUpsertProfileCanonicalizesWallet() {
	upper := "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	user := s.createUser(upper, "alice")

	assert.Equal(s.T(), walletAlice, user.WalletAddress)

	// The lowercase form resolves to the same user.
	same, err := s.engine.Profile(s.ctx, walletAlice)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, same.ID)
}

func (s *EngineTestSuite) TestUpsertProfileIsIdempotent() {
	first := s.createUser(walletAlice, "alice")
	second := s.createUser(walletAlice, "alice")

	assert.Equal(s.T(), first.ID, second.ID)

	var count int64
	s.db.Model(&models.User{}).Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

func (s *EngineTestSuite) TestConcurrentUpsertProfileConverges() {
	var wg sync.WaitGroup
	users := make([]*models.User, 2)
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			users[i], errs[i] = s.engine.UpsertProfile(s.ctx, walletAlice, "alice", "", models.AccountStandard)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(s.T(), err, "upsert %d", i)
	}
	assert.Equal(s.T(), users[0].ID, users[1].ID)

	var count int64
	s.db.Model(&models.User{}).Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

func (s *EngineTestSuite) TestUpsertProfileUpdatesExisting() {
	first := s.createUser(walletAlice, "alice")

	updated, err := s.engine.UpsertProfile(s.ctx, walletAlice, "alice_2", "gm", models.AccountStandard)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), first.ID, updated.ID)
	assert.Equal(s.T(), "alice_2", updated.Username)
	assert.Equal(s.T(), "gm", updated.Bio)
}

func (s *EngineTestSuite) TestUpsertProfileRejectsBadInput() {
	_, err := s.engine.UpsertProfile(s.ctx, "not-a-wallet", "alice", "", "")
	s.assertCode(err, apperr.CodeValidation)

	_, err = s.engine.UpsertProfile(s.ctx, walletAlice, "ab", "", "")
	s.assertCode(err, apperr.CodeValidation)

	_, err = s.engine.UpsertProfile(s.ctx, walletAlice, "has spaces", "", "")
	s.assertCode(err, apperr.CodeValidation)
}

func (s *EngineTestSuite) TestCreatePostSanitizesContent() {
	s.createUser(walletAlice, "alice")

	post, err := s.engine.CreatePost(s.ctx, walletAlice, "<script>alert(1)</script>hello", "", "")
	require.NoError(s.T(), err)
	assert.NotContains(s.T(), post.Content, "<script>")
	assert.Contains(s.T(), post.Content, "hello")
}

func (s *EngineTestSuite) TestCreatePostRejectsEmptyContent() {
	s.createUser(walletAlice, "alice")

	_, err := s.engine.CreatePost(s.ctx, walletAlice, "   ", "", "")
	s.assertCode(err, apperr.CodeValidation)
}

func (s *EngineTestSuite) TestCreatePostClearsMediaTypeWithoutURL() {
	s.createUser(walletAlice, "alice")

	post, err := s.engine.CreatePost(s.ctx, walletAlice, "no media here", "", models.MediaImage)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), post.MediaType)

	post, err = s.engine.CreatePost(s.ctx, walletAlice, "with media",
		"https://cdn.example.com/a.png", models.MediaImage)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.MediaImage, post.MediaType)
}

func (s *EngineTestSuite) TestCreatePostUnknownUser() {
	_, err := s.engine.CreatePost(s.ctx, walletAlice, "hello", "", "")
	s.assertCode(err, apperr.CodeNotFound)
}

func (s *EngineTestSuite) TestToggleLikeLikesThenUnlikes() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	post := s.createPost(walletAlice, "first post")

	liked, err := s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, liked.LikeCount)

	unliked, err := s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, unliked.LikeCount)

	var likes int64
	s.db.Model(&models.Like{}).Count(&likes)
	assert.Equal(s.T(), int64(0), likes)
}

func (s *EngineTestSuite) TestToggleLikeNotifiesAuthor() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	post := s.createPost(walletAlice, "first post")

	_, err := s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)

	notifications, err := s.engine.Notifications(s.ctx, walletAlice, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), notifications, 1)
	assert.Equal(s.T(), models.NotificationLike, notifications[0].Type)
	assert.Equal(s.T(), "bob", notifications[0].Sender.Username)
	require.NotNil(s.T(), notifications[0].PostID)
	assert.Equal(s.T(), post.ID, *notifications[0].PostID)
	assert.False(s.T(), notifications[0].Read)
}

func (s *EngineTestSuite) TestToggleLikeOwnPostNoNotification() {
	s.createUser(walletAlice, "alice")
	post := s.createPost(walletAlice, "my own post")

	liked, err := s.engine.ToggleLike(s.ctx, walletAlice, post.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, liked.LikeCount)

	notifications, err := s.engine.Notifications(s.ctx, walletAlice, 0)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), notifications)
}

func (s *EngineTestSuite) TestUnlikeKeepsNotification() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	post := s.createPost(walletAlice, "first post")

	_, err := s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)
	_, err = s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)

	notifications, err := s.engine.Notifications(s.ctx, walletAlice, 0)
	require.NoError(s.T(), err)
	assert.Len(s.T(), notifications, 1)
}

func (s *EngineTestSuite) TestDuplicateLikeRejectedByIndex() {
	alice := s.createUser(walletAlice, "alice")
	post := s.createPost(walletAlice, "first post")

	first := models.Like{UserID: alice.ID, PostID: post.ID}
	require.NoError(s.T(), s.db.Create(&first).Error)

	second := models.Like{UserID: alice.ID, PostID: post.ID}
	err := s.db.Create(&second).Error
	require.Error(s.T(), err)
	assert.True(s.T(), isDuplicateKey(err))
}

func (s *EngineTestSuite) TestLikeInsertDoesNothingOnConflict() {
	alice := s.createUser(walletAlice, "alice")
	post := s.createPost(walletAlice, "first post")

	first := models.Like{UserID: alice.ID, PostID: post.ID}
	require.NoError(s.T(), s.db.Create(&first).Error)

	// The toggle relies on a conflicting insert being a clean no-op rather
	// than a statement error that would poison the transaction.
	dup := models.Like{UserID: alice.ID, PostID: post.ID}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dup)
	require.NoError(s.T(), res.Error)
	assert.Equal(s.T(), int64(0), res.RowsAffected)

	var rows int64
	s.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&rows)
	assert.Equal(s.T(), int64(1), rows)
}

func (s *EngineTestSuite) TestConcurrentToggleLikeBothSucceed() {
	s.createUser(walletAlice, "alice")
	post := s.createPost(walletAlice, "first post")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.engine.ToggleLike(s.ctx, walletAlice, post.ID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(s.T(), err, "toggle %d", i)
	}

	var rows int64
	s.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&rows)
	assert.LessOrEqual(s.T(), rows, int64(1))

	var got models.Post
	require.NoError(s.T(), s.db.First(&got, "id = ?", post.ID).Error)
	assert.Equal(s.T(), rows, int64(got.LikeCount))
}

func (s *EngineTestSuite) TestToggleLikeUnknownPost() {
	s.createUser(walletAlice, "alice")

	_, err := s.engine.ToggleLike(s.ctx, walletAlice, "missing-post-id")
	s.assertCode(err, apperr.CodeNotFound)
}

func (s *EngineTestSuite) TestAddCommentIncrementsCountAndNotifies() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	post := s.createPost(walletAlice, "first post")

	updated, err := s.engine.AddComment(s.ctx, walletBob, post.ID, "nice one", "")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, updated.CommentCount)
	require.Len(s.T(), updated.Comments, 1)
	assert.Equal(s.T(), "nice one", updated.Comments[0].Content)
	assert.Equal(s.T(), "bob", updated.Comments[0].User.Username)

	notifications, err := s.engine.Notifications(s.ctx, walletAlice, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), notifications, 1)
	assert.Equal(s.T(), models.NotificationComment, notifications[0].Type)
}

func (s *EngineTestSuite) TestAddCommentOwnPostNoNotification() {
	s.createUser(walletAlice, "alice")
	post := s.createPost(walletAlice, "first post")

	_, err := s.engine.AddComment(s.ctx, walletAlice, post.ID, "replying to myself", "")
	require.NoError(s.T(), err)

	notifications, err := s.engine.Notifications(s.ctx, walletAlice, 0)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), notifications)
}

func (s *EngineTestSuite) TestDeletePostCascades() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	post := s.createPost(walletAlice, "short-lived")

	_, err := s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)
	_, err = s.engine.AddComment(s.ctx, walletBob, post.ID, "goodbye", "")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.engine.DeletePost(s.ctx, walletAlice, post.ID))

	var posts, likes, comments, notifications int64
	s.db.Model(&models.Post{}).Count(&posts)
	s.db.Model(&models.Like{}).Count(&likes)
	s.db.Model(&models.Comment{}).Count(&comments)
	s.db.Model(&models.Notification{}).Count(&notifications)
	assert.Zero(s.T(), posts)
	assert.Zero(s.T(), likes)
	assert.Zero(s.T(), comments)
	assert.Zero(s.T(), notifications)
}

func (s *EngineTestSuite) TestDeletePostAuthorOnly() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	post := s.createPost(walletAlice, "mine")

	err := s.engine.DeletePost(s.ctx, walletBob, post.ID)
	s.assertCode(err, apperr.CodeForbidden)

	// Post untouched.
	var count int64
	s.db.Model(&models.Post{}).Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

func (s *EngineTestSuite) TestDeleteCommentAuthorOnly() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	post := s.createPost(walletAlice, "first post")

	updated, err := s.engine.AddComment(s.ctx, walletBob, post.ID, "to be removed", "")
	require.NoError(s.T(), err)
	commentID := updated.Comments[0].ID

	err = s.engine.DeleteComment(s.ctx, walletAlice, commentID)
	s.assertCode(err, apperr.CodeForbidden)

	require.NoError(s.T(), s.engine.DeleteComment(s.ctx, walletBob, commentID))

	fresh, err := s.engine.loadPost(s.ctx, post.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, fresh.CommentCount)
	assert.Empty(s.T(), fresh.Comments)
}

func (s *EngineTestSuite) TestMarkNotificationRead() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	post := s.createPost(walletAlice, "first post")

	_, err := s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)

	notifications, err := s.engine.Notifications(s.ctx, walletAlice, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), notifications, 1)

	require.NoError(s.T(),
		s.engine.MarkNotificationRead(s.ctx, walletAlice, notifications[0].ID))

	notifications, err = s.engine.Notifications(s.ctx, walletAlice, 0)
	require.NoError(s.T(), err)
	assert.True(s.T(), notifications[0].Read)

	// Marking again is a no-op, not an error.
	require.NoError(s.T(),
		s.engine.MarkNotificationRead(s.ctx, walletAlice, notifications[0].ID))
}

func (s *EngineTestSuite) TestMarkNotificationReadRecipientScoped() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	post := s.createPost(walletAlice, "first post")

	_, err := s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)

	notifications, err := s.engine.Notifications(s.ctx, walletAlice, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), notifications, 1)

	// Bob is the sender, not the recipient; the ID must not resolve for him.
	err = s.engine.MarkNotificationRead(s.ctx, walletBob, notifications[0].ID)
	s.assertCode(err, apperr.CodeNotFound)
}

func (s *EngineTestSuite) TestMarkAllRead() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	s.createUser(walletCarol, "carol")
	post := s.createPost(walletAlice, "popular post")

	_, err := s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)
	_, err = s.engine.AddComment(s.ctx, walletCarol, post.ID, "wow", "")
	require.NoError(s.T(), err)

	updated, err := s.engine.MarkAllRead(s.ctx, walletAlice)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), updated)

	// Second pass finds nothing unread.
	updated, err = s.engine.MarkAllRead(s.ctx, walletAlice)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), updated)
}

func (s *EngineTestSuite) TestNotificationsNewestFirst() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	post := s.createPost(walletAlice, "first post")

	_, err := s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)
	time.Sleep(10 * time.Millisecond)
	_, err = s.engine.AddComment(s.ctx, walletBob, post.ID, "and a comment", "")
	require.NoError(s.T(), err)

	notifications, err := s.engine.Notifications(s.ctx, walletAlice, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), notifications, 2)
	assert.Equal(s.T(), models.NotificationComment, notifications[0].Type)
	assert.Equal(s.T(), models.NotificationLike, notifications[1].Type)
}

func (s *EngineTestSuite) TestLikedPostsNewestLikeFirst() {
	s.createUser(walletAlice, "alice")
	s.createUser(walletBob, "bob")
	first := s.createPost(walletAlice, "older post")
	second := s.createPost(walletAlice, "newer post")

	_, err := s.engine.ToggleLike(s.ctx, walletBob, first.ID)
	require.NoError(s.T(), err)
	time.Sleep(10 * time.Millisecond)
	_, err = s.engine.ToggleLike(s.ctx, walletBob, second.ID)
	require.NoError(s.T(), err)

	liked, err := s.engine.LikedPosts(s.ctx, walletBob)
	require.NoError(s.T(), err)
	require.Len(s.T(), liked, 2)
	assert.Equal(s.T(), second.ID, liked[0].ID)
	assert.Equal(s.T(), first.ID, liked[1].ID)
}

func (s *EngineTestSuite) TestSetProfileImage() {
	s.createUser(walletAlice, "alice")

	_, err := s.engine.SetProfileImage(s.ctx, walletAlice, "profile",
		"https://cdn.example.com/p.png")
	require.NoError(s.T(), err)

	fresh, err := s.engine.Profile(s.ctx, walletAlice)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "https://cdn.example.com/p.png", fresh.ProfilePicture)

	_, err = s.engine.SetProfileImage(s.ctx, walletAlice, "banner",
		"https://cdn.example.com/b.png")
	require.NoError(s.T(), err)

	fresh, err = s.engine.Profile(s.ctx, walletAlice)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "https://cdn.example.com/b.png", fresh.BannerPicture)

	_, err = s.engine.SetProfileImage(s.ctx, walletAlice, "avatar", "url")
	s.assertCode(err, apperr.CodeValidation)
}

func (s *EngineTestSuite) TestRecentPostsPagination() {
	s.createUser(walletAlice, "alice")
	for i := 0; i < 5; i++ {
		s.createPost(walletAlice, fmt.Sprintf("post number %d", i))
	}

	page, err := s.engine.RecentPosts(s.ctx, 1, 2)
	require.NoError(s.T(), err)
	assert.Len(s.T(), page, 2)

	page, err = s.engine.RecentPosts(s.ctx, 3, 2)
	require.NoError(s.T(), err)
	assert.Len(s.T(), page, 1)

	// Out-of-range values normalize instead of erroring.
	page, err = s.engine.RecentPosts(s.ctx, -1, 1000)
	require.NoError(s.T(), err)
	assert.Len(s.T(), page, 5)
}

func (s *EngineTestSuite) TestCleanupGuests() {
	stale := time.Now().UTC().Add(-48 * time.Hour)

	// Guest past retention, with a like on a surviving post.
	guest, err := s.engine.UpsertProfile(s.ctx, walletBob, "guest_bob", "", models.AccountGuest)
	require.NoError(s.T(), err)
	s.createUser(walletAlice, "alice")
	post := s.createPost(walletAlice, "surviving post")
	_, err = s.engine.ToggleLike(s.ctx, walletBob, post.ID)
	require.NoError(s.T(), err)
	_, err = s.engine.AddComment(s.ctx, walletBob, post.ID, "guest comment", "")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.db.Model(&models.User{}).
		Where("id = ?", guest.ID).
		Update("last_active_at", stale).Error)

	// Fresh guest stays.
	_, err = s.engine.UpsertProfile(s.ctx, walletCarol, "guest_carol", "", models.AccountGuest)
	require.NoError(s.T(), err)

	deleted, err := s.engine.CleanupGuests(s.ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), deleted)

	_, err = s.engine.Profile(s.ctx, walletBob)
	s.assertCode(err, apperr.CodeNotFound)

	_, err = s.engine.Profile(s.ctx, walletCarol)
	require.NoError(s.T(), err)

	// The surviving post's counters no longer include the guest's activity.
	fresh, err := s.engine.loadPost(s.ctx, post.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, fresh.LikeCount)
	assert.Equal(s.T(), 0, fresh.CommentCount)

	var likes, comments, notifications int64
	s.db.Model(&models.Like{}).Count(&likes)
	s.db.Model(&models.Comment{}).Count(&comments)
	s.db.Model(&models.Notification{}).Count(&notifications)
	assert.Zero(s.T(), likes)
	assert.Zero(s.T(), comments)
	assert.Zero(s.T(), notifications)
}

func (s *EngineTestSuite) TestCleanupIgnoresStandardAccounts() {
	stale := time.Now().UTC().Add(-48 * time.Hour)

	user := s.createUser(walletAlice, "alice")
	require.NoError(s.T(), s.db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("last_active_at", stale).Error)

	deleted, err := s.engine.CleanupGuests(s.ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(s.T(), err)
	assert.Zero(s.T(), deleted)
}

func (s *EngineTestSuite) assertCode(err error, code apperr.Code) {
	require.Error(s.T(), err)
	assert.Equal(s.T(), code, apperr.From(err).Code)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

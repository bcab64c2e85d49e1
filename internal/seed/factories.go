// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"strings"

	"fbclone/internal/models"
	"fbclone/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

var (
	feelings   = []string{"happy", "blessed", "excited", "tired", "grateful", "relaxed"}
	activities = []string{"watching a movie", "eating lunch", "travelling", "reading", "at the gym"}
	fonts      = []string{"sans-serif", "serif", "monospace", "cursive"}
	gradients  = []string{
		"linear-gradient(45deg, #f09433, #bc1888)",
		"linear-gradient(45deg, #4facfe, #00f2fe)",
		"linear-gradient(45deg, #43e97b, #38f9d7)",
	}
)

// Factory builds domain entities and persists them through the repositories,
// so reaction counters and friendship pairs stay consistent.
type Factory struct {
	users         repository.UserRepository
	posts         repository.PostRepository
	reactions     repository.ReactionRepository
	comments      repository.CommentRepository
	friends       repository.FriendRepository
	stories       repository.StoryRepository
	notifications repository.NotificationRepository

	fake         *gofakeit.Faker
	passwordHash string
}

// NewFactory binds a Factory to db. seed makes generated content reproducible;
// zero picks a random seed. skipBcrypt stores a fixed hash so large runs stay fast.
func NewFactory(db *gorm.DB, seed int64, skipBcrypt bool) (*Factory, error) {
	hash := "$2a$10$seeded.accounts.cannot.log.in.without.bcrypt"
	if !skipBcrypt {
		h, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		hash = string(h)
	}

	return &Factory{
		users:         repository.NewUserRepository(db),
		posts:         repository.NewPostRepository(db),
		reactions:     repository.NewReactionRepository(db),
		comments:      repository.NewCommentRepository(db),
		friends:       repository.NewFriendRepository(db),
		stories:       repository.NewStoryRepository(db),
		notifications: repository.NewNotificationRepository(db),
		fake:          gofakeit.New(seed),
		passwordHash:  hash,
	}, nil
}

// CreateUser inserts an account. Empty fields are generated.
func (f *Factory) CreateUser(ctx context.Context, username, email string) (*models.User, error) {
	if username == "" {
		username = strings.ToLower(f.fake.Username()) + fmt.Sprint(f.fake.Number(100, 999))
	}
	if email == "" {
		email = username + "@" + f.fake.DomainName()
	}
	user := &models.User{
		Username: username,
		Email:    strings.ToLower(email),
		Password: f.passwordHash,
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUserWithPassword inserts an account whose password is hashed from password.
func (f *Factory) CreateUserWithPassword(ctx context.Context, username, email, password string) (*models.User, error) {
	if password == "" {
		return f.CreateUser(ctx, username, email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", username, err)
	}
	user := &models.User{Username: username, Email: strings.ToLower(email), Password: string(hash)}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Befriend creates an edge from sender to receiver and accepts it unless pending is set.
func (f *Factory) Befriend(ctx context.Context, sender, receiver *models.User, pending bool) (bool, error) {
	created, err := f.friends.Create(ctx, sender.ID, receiver.ID)
	if err != nil || !created || pending {
		return created, err
	}
	return f.friends.Accept(ctx, receiver.ID, sender.ID)
}

// CreatePost inserts a post by author. Empty text is generated.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, text string, tagged ...uint) (*models.Post, error) {
	if text == "" {
		text = f.fake.Sentence(f.fake.Number(6, 18))
	}
	post := &models.Post{
		CreatorID: author.ID,
		Text:      text,
		Tagged:    tagged,
	}
	if post.Tagged == nil {
		post.Tagged = []uint{}
	}
	if f.fake.Bool() {
		feeling := f.fake.RandomString(feelings)
		post.Feeling = &feeling
	} else if f.fake.Number(0, 3) == 0 {
		activity := f.fake.RandomString(activities)
		post.Activity = &activity
	}
	if err := f.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// React applies kind for user on post through the counter-maintaining path.
func (f *Factory) React(ctx context.Context, user *models.User, post *models.Post, kind models.ReactionKind) error {
	_, _, err := f.reactions.React(ctx, post.ID, user.ID, kind)
	return err
}

// RandomReaction picks a kind, weighted towards LIKE.
func (f *Factory) RandomReaction() models.ReactionKind {
	if f.fake.Number(0, 2) == 0 {
		return models.ReactionLike
	}
	return models.ReactionKinds[f.fake.Number(0, len(models.ReactionKinds)-1)]
}

// CreateComment inserts a comment. Empty text is generated.
func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post, text string) (*models.Comment, error) {
	if text == "" {
		text = f.fake.Sentence(f.fake.Number(3, 12))
	}
	comment := &models.Comment{Text: text, CreatorID: author.ID, PostID: post.ID}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateStory inserts a text story. Empty text is generated.
func (f *Factory) CreateStory(ctx context.Context, author *models.User, text string) (*models.Story, error) {
	if text == "" {
		text = f.fake.Phrase()
	}
	font := f.fake.RandomString(fonts)
	gradient := f.fake.RandomString(gradients)
	story := &models.Story{
		UserID:   author.ID,
		Text:     &text,
		Font:     &font,
		Gradient: &gradient,
		Time:     models.DefaultStoryTime,
	}
	if err := f.stories.Create(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// Notify records that trigger acted on receiver, optionally about post.
func (f *Factory) Notify(ctx context.Context, trigger, receiver *models.User, kind models.NotificationType, post *models.Post) (bool, error) {
	n := &models.Notification{
		ReceiverID: receiver.ID,
		TriggerID:  trigger.ID,
		Type:       kind,
		Info:       notificationInfo(trigger, kind),
		Link:       "#",
	}
	if post != nil {
		n.PostID = &post.ID
		n.Link = fmt.Sprintf("/posts/%d", post.ID)
	}
	return f.notifications.Create(ctx, n)
}

func notificationInfo(trigger *models.User, kind models.NotificationType) string {
	switch kind {
	case models.NotificationReaction:
		return trigger.Username + " reacted to your post"
	case models.NotificationComment:
		return trigger.Username + " commented on your post"
	case models.NotificationFriendReq:
		return trigger.Username + " sent you a friend request"
	case models.NotificationFriendAccept:
		return trigger.Username + " accepted your friend request"
	}
	return trigger.Username + " mentioned you"
}

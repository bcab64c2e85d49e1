package seed

import (
	"context"
	"fmt"

	"fbclone/internal/middleware"
	"fbclone/internal/models"

	"gorm.io/gorm"
)

// Options configures a random seeding run.
type Options struct {
	Users           int
	PostsPerUser    int
	FriendsPerUser  int
	CommentsPerPost int
	// Seed makes the generated content reproducible. Zero is random.
	Seed       int64
	SkipBcrypt bool
}

// DefaultOptions is a small but fully connected demo graph.
func DefaultOptions() Options {
	return Options{
		Users:           25,
		PostsPerUser:    4,
		FriendsPerUser:  5,
		CommentsPerPost: 2,
	}
}

// Result counts what a run inserted.
type Result struct {
	Users         int
	Friendships   int
	Posts         int
	Reactions     int
	Comments      int
	Stories       int
	Notifications int
}

func (r Result) String() string {
	return fmt.Sprintf("users=%d friendships=%d posts=%d reactions=%d comments=%d stories=%d notifications=%d",
		r.Users, r.Friendships, r.Posts, r.Reactions, r.Comments, r.Stories, r.Notifications)
}

// Seeder fills a database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	factory, err := NewFactory(db, opts.Seed, opts.SkipBcrypt)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: factory, opts: opts}, nil
}

// tables lists every seeded table, children first.
var tables = []string{"notifications", "stories", "comments", "reactions", "friend_requests", "posts", "users"}

// ClearAll removes every row the seeder could have written.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Exec("TRUNCATE TABLE notifications, stories, comments, reactions, friend_requests, posts, users RESTART IDENTITY CASCADE").Error
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run generates users, a friendship mesh and engagement on their posts.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	log := middleware.Logger

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		u, err := s.factory.CreateUser(ctx, "", "")
		if err != nil {
			return res, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	res.Users = len(users)
	log.InfoContext(ctx, "seeded users", "count", res.Users)

	// Each user befriends the next FriendsPerUser users around a ring, so
	// friends-of-friends always exist for suggestions.
	for i, u := range users {
		for k := 1; k <= s.opts.FriendsPerUser && k < len(users); k++ {
			other := users[(i+k)%len(users)]
			pending := s.factory.fake.Number(0, 4) == 0
			ok, err := s.factory.Befriend(ctx, u, other, pending)
			if err != nil {
				return res, fmt.Errorf("befriend %d->%d: %w", u.ID, other.ID, err)
			}
			if !ok {
				continue
			}
			res.Friendships++
			kind := models.NotificationFriendAccept
			trigger, receiver := other, u
			if pending {
				kind, trigger, receiver = models.NotificationFriendReq, u, other
			}
			if created, err := s.factory.Notify(ctx, trigger, receiver, kind, nil); err != nil {
				return res, err
			} else if created {
				res.Notifications++
			}
		}
	}
	log.InfoContext(ctx, "seeded friendships", "count", res.Friendships)

	for i, author := range users {
		for p := 0; p < s.opts.PostsPerUser; p++ {
			var tagged []uint
			if len(users) > 1 && s.factory.fake.Number(0, 3) == 0 {
				tagged = []uint{users[(i+1)%len(users)].ID}
			}
			post, err := s.factory.CreatePost(ctx, author, "", tagged...)
			if err != nil {
				return res, fmt.Errorf("create post: %w", err)
			}
			res.Posts++

			if err := s.engage(ctx, &res, users, author, post); err != nil {
				return res, err
			}
		}

		if s.factory.fake.Bool() {
			if _, err := s.factory.CreateStory(ctx, author, ""); err != nil {
				return res, fmt.Errorf("create story: %w", err)
			}
			res.Stories++
		}
	}

	log.InfoContext(ctx, "seeding complete", "result", res.String())
	return res, nil
}

// engage adds reactions and comments from other users on post.
func (s *Seeder) engage(ctx context.Context, res *Result, users []*models.User, author *models.User, post *models.Post) error {
	f := s.factory
	for _, u := range users {
		if u.ID == author.ID || f.fake.Number(0, 2) != 0 {
			continue
		}
		if err := f.React(ctx, u, post, f.RandomReaction()); err != nil {
			return fmt.Errorf("react: %w", err)
		}
		res.Reactions++
		if created, err := f.Notify(ctx, u, author, models.NotificationReaction, post); err != nil {
			return err
		} else if created {
			res.Notifications++
		}
	}

	for c := 0; c < s.opts.CommentsPerPost && len(users) > 1; c++ {
		commenter := users[f.fake.Number(0, len(users)-1)]
		if _, err := f.CreateComment(ctx, commenter, post, ""); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		res.Comments++
		if created, err := f.Notify(ctx, commenter, author, models.NotificationComment, post); err != nil {
			return err
		} else if created {
			res.Notifications++
		}
	}
	return nil
}

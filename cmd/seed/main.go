// Command main runs the database seeder.
package main

import (
	"context"
	"flag"
	"log"

	"fbclone/internal/config"
	"fbclone/internal/database"
	"fbclone/internal/middleware"
	"fbclone/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	users := flag.Int("users", defaults.Users, "Number of users to create")
	posts := flag.Int("posts", defaults.PostsPerUser, "Posts per user")
	friends := flag.Int("friends", defaults.FriendsPerUser, "Friend edges started by each user")
	comments := flag.Int("comments", defaults.CommentsPerPost, "Comments per post")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	scenario := flag.String("scenario", "", "YAML scenario file to load instead of random data")
	clean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt; generated accounts cannot log in")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.SetLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{
		Users:           *users,
		PostsPerUser:    *posts,
		FriendsPerUser:  *friends,
		CommentsPerPost: *comments,
		Seed:            *randSeed,
		SkipBcrypt:      *fast,
	})
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	ctx := context.Background()
	if *clean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	var res seed.Result
	if *scenario != "" {
		sc, err := seed.LoadScenarioFile(*scenario)
		if err != nil {
			log.Fatalf("Failed to load scenario: %v", err)
		}
		res, err = s.ApplyScenario(ctx, sc)
		if err != nil {
			log.Fatalf("Scenario seeding failed: %v", err)
		}
	} else {
		res, err = s.Run(ctx)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	log.Printf("Seeded %s", res)
	if !*fast {
		log.Printf("Generated accounts use the password %q", seed.DefaultPassword)
	}
}

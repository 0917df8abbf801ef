// Package main provides a tool to seed the database with sample catalog data.
//
// This creates test users, a starter catalog of books, and a spread of
// reviews so list, sort, and rating features have data to work with.
//
// Usage:
//
//	DB_PATH=~/bookden/db go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/bookdenapp/bookden-server/internal/auth"
	"github.com/bookdenapp/bookden-server/internal/domain"
	"github.com/bookdenapp/bookden-server/internal/id"
	"github.com/bookdenapp/bookden-server/internal/store"
)

// seedUsers are the accounts created by the tool. All share the password
// "testpass123".
var seedUsers = []struct {
	email     string
	firstName string
	lastName  string
}{
	{"alex@example.com", "Alex", "Rivera"},
	{"jordan@example.com", "Jordan", "Chen"},
	{"sam@example.com", "Sam", "Taylor"},
	{"casey@example.com", "Casey", "Morgan"},
	{"riley@example.com", "Riley", "Kim"},
}

// seedBooks is the starter catalog.
var seedBooks = []struct {
	title  string
	author string
	genre  string
	year   int
}{
	{"The Name of the Wind", "Patrick Rothfuss", "Fantasy", 2007},
	{"Mistborn: The Final Empire", "Brandon Sanderson", "Fantasy", 2006},
	{"Dune", "Frank Herbert", "Science Fiction", 1965},
	{"Hyperion", "Dan Simmons", "Science Fiction", 1989},
	{"The Hobbit", "J.R.R. Tolkien", "Fantasy", 1937},
	{"Neuromancer", "William Gibson", "Science Fiction", 1984},
	{"The Big Sleep", "Raymond Chandler", "Mystery", 1939},
	{"Gone Girl", "Gillian Flynn", "Mystery", 2012},
	{"Piranesi", "Susanna Clarke", "Fantasy", 2020},
	{"Project Hail Mary", "Andy Weir", "Science Fiction", 2021},
	{"The Thursday Murder Club", "Richard Osman", "Mystery", 2020},
	{"A Memory Called Empire", "Arkady Martine", "Science Fiction", 2019},
}

var reviewTexts = []string{
	"Couldn't put it down.",
	"A slow start but a strong finish.",
	"The prose carries it even when the plot wanders.",
	"Exactly what I needed this month.",
	"Not for me, but I can see why people love it.",
	"",
}

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/bookden/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	users := createSeedUsers(ctx, s)
	if len(users) == 0 {
		log.Fatal("No users available, nothing to seed")
	}

	books := createSeedBooks(ctx, s, rng, users)

	createSeedReviews(ctx, s, rng, users, books)

	fmt.Println("\nSeeding complete!")
}

func createSeedUsers(ctx context.Context, s *store.Store) []*domain.User {
	fmt.Println("\n=== Creating Users ===")

	passwordHash, err := auth.HashPassword("testpass123")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	var users []*domain.User
	for _, su := range seedUsers {
		// Reuse accounts from previous runs.
		if existing, err := s.GetUserByEmail(ctx, su.email); err == nil {
			fmt.Printf("  User %s already exists, reusing\n", su.email)
			users = append(users, existing)
			continue
		}

		user := &domain.User{
			Email:        su.email,
			PasswordHash: passwordHash,
			FirstName:    su.firstName,
			LastName:     su.lastName,
		}
		user.ID = id.MustGenerate("user")
		user.InitTimestamps()

		if err := s.CreateUser(ctx, user); err != nil {
			log.Printf("  Failed to create user %s: %v", su.email, err)
			continue
		}

		fmt.Printf("  Created user: %s %s (%s)\n", su.firstName, su.lastName, su.email)
		users = append(users, user)
	}

	return users
}

func createSeedBooks(ctx context.Context, s *store.Store, rng *rand.Rand, users []*domain.User) []*domain.Book {
	fmt.Println("\n=== Creating Books ===")

	var books []*domain.Book
	for _, sb := range seedBooks {
		owner := users[rng.Intn(len(users))]

		book := &domain.Book{
			Title:         sb.title,
			Author:        sb.author,
			Genre:         sb.genre,
			PublishedYear: sb.year,
			AddedBy:       owner.ID,
		}
		book.ID = id.MustGenerate("book")
		book.InitTimestamps()

		if err := s.CreateBook(ctx, book); err != nil {
			log.Printf("  Failed to create book %q: %v", sb.title, err)
			continue
		}

		fmt.Printf("  Added %q (%s, %d) for %s\n", sb.title, sb.genre, sb.year, owner.Name())
		books = append(books, book)
	}

	return books
}

func createSeedReviews(ctx context.Context, s *store.Store, rng *rand.Rand, users []*domain.User, books []*domain.Book) {
	fmt.Println("\n=== Creating Reviews ===")

	created := 0
	for _, book := range books {
		// Each book gets reviews from a random subset of users.
		for _, user := range users {
			if rng.Float32() > 0.6 {
				continue
			}

			review := &domain.Review{
				BookID:     book.ID,
				UserID:     user.ID,
				Rating:     1 + rng.Intn(5),
				ReviewText: reviewTexts[rng.Intn(len(reviewTexts))],
			}
			review.ID = id.MustGenerate("review")
			review.InitTimestamps()

			if err := s.CreateReview(ctx, review); err != nil {
				// One review per user per book; duplicates from reruns are fine.
				continue
			}
			created++
		}
	}

	fmt.Printf("  Created %d reviews across %d books\n", created, len(books))
}

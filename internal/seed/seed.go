// Package seed fills a database with fake authors, groups, posts, comments and follows.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"yatube/internal/http-api/models"
	"yatube/internal/http-api/repository"
	"yatube/internal/middleware/auth"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options say how much data to generate.
type Options struct {
	Users        int
	Groups       int
	PostsPerUser int
	// Password is shared by every generated account
	Password string
	// Seed makes the run reproducible; 0 picks a random one
	Seed uint64
}

// Result counts what was created.
type Result struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
}

type Seeder struct {
	users    repository.UserRepository
	groups   repository.GroupRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	logger   *zap.Logger
	now      func() time.Time
}

func New(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{
		users:    repository.NewUserRepository(db),
		groups:   repository.NewGroupRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
		logger:   logger,
		now:      time.Now,
	}
}

// Run generates the data described by opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Users < 1 {
		return nil, fmt.Errorf("at least one user is required")
	}
	if opts.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	faker := gofakeit.New(opts.Seed)
	result := &Result{}

	// hashed once for every account
	hashed, err := auth.HashPassword(opts.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	users, err := s.createUsers(ctx, faker, opts.Users, hashed)
	if err != nil {
		return nil, err
	}
	result.Users = len(users)

	groups, err := s.createGroups(ctx, faker, opts.Groups)
	if err != nil {
		return nil, err
	}
	result.Groups = len(groups)

	since := s.now().AddDate(0, -6, 0)
	for _, author := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			post := &models.Post{
				Text:     paragraph(faker),
				AuthorID: author.ID,
				PubDate:  faker.DateRange(since, s.now()),
			}
			if len(groups) > 0 && faker.Bool() {
				post.GroupID = &groups[faker.Number(0, len(groups)-1)].ID
			}
			if err := s.posts.Create(ctx, post); err != nil {
				return nil, err
			}
			result.Posts++

			for j := faker.Number(0, 3); j > 0; j-- {
				comment := &models.Comment{
					PostID:   post.ID,
					AuthorID: users[faker.Number(0, len(users)-1)].ID,
					Text:     faker.Phrase(),
				}
				if err := s.comments.Create(ctx, comment); err != nil {
					return nil, err
				}
				result.Comments++
			}
		}
	}

	if len(users) > 1 {
		for _, user := range users {
			followed := map[string]bool{}
			for j := faker.Number(1, 3); j > 0; j-- {
				author := users[faker.Number(0, len(users)-1)]
				if author.ID == user.ID || followed[author.ID] {
					continue
				}
				if err := s.follows.Add(ctx, user.ID, author.ID); err != nil {
					return nil, err
				}
				followed[author.ID] = true
				result.Follows++
			}
		}
	}

	s.logger.Info("Database seeded",
		zap.Int("users", result.Users),
		zap.Int("groups", result.Groups),
		zap.Int("posts", result.Posts),
		zap.Int("comments", result.Comments),
		zap.Int("follows", result.Follows),
	)
	return result, nil
}

func (s *Seeder) createUsers(ctx context.Context, faker *gofakeit.Faker, n int, hashed string) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for len(users) < n {
		first, last := faker.FirstName(), faker.LastName()
		username := fmt.Sprintf("%s_%s", slugify(first), faker.Numerify("######"))
		if _, err := s.users.FindByUsername(ctx, username); err == nil {
			continue
		}

		user := models.User{
			Username:  username,
			Email:     fmt.Sprintf("%s@example.com", username),
			FirstName: first,
			LastName:  last,
			Password:  hashed,
			IsActive:  true,
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createGroups(ctx context.Context, faker *gofakeit.Faker, n int) ([]models.Group, error) {
	groups := make([]models.Group, 0, n)
	for len(groups) < n {
		word := faker.Noun()
		slug := fmt.Sprintf("%s-%s", slugify(word), faker.Numerify("###"))
		if _, err := s.groups.GetBySlug(ctx, slug); err == nil {
			continue
		}

		group := models.Group{
			Title:       strings.ToUpper(word[:1]) + word[1:],
			Slug:        slug,
			Description: faker.HackerPhrase(),
		}
		if err := s.groups.Create(ctx, &group); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func paragraph(faker *gofakeit.Faker) string {
	sentences := make([]string, faker.Number(1, 4))
	for i := range sentences {
		sentences[i] = faker.HackerPhrase()
	}
	return strings.Join(sentences, " ")
}

// slugify keeps the ASCII letters and digits of s, lowercased.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}

// Package seed bootstraps an empty catalog with demo accounts and the
// default tag vocabulary.
package seed

import (
	"context"
	"fmt"

	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
	"datacatalog/internal/core/tx"
	"datacatalog/internal/domain/auth"
	"datacatalog/internal/domain/product"
	"datacatalog/internal/domain/users"
	"datacatalog/pkg/logger"
)

// DefaultPassword is the password of the seeded accounts.
const DefaultPassword = "Password123!"

// DefaultTags is the initial tag vocabulary.
var DefaultTags = []string{
	"Agua Potable",
	"Saneamiento",
	"Tarifas",
	"Calidad",
	"Inversiones",
	"Comercial",
	"Operacional",
	"Financiero",
}

// DefaultUsers are created on an empty database.
var DefaultUsers = []users.CreateInput{
	{Email: "admin@example.com", Name: "Administrador", Password: DefaultPassword, Role: security.RoleAdmin},
	{Email: "user@example.com", Name: "Usuario", Password: DefaultPassword, Role: security.RoleUser},
}

// Result reports what Run did.
type Result struct {
	Skipped bool
	Users   []*auth.User
	Tags    []product.Tag
}

// Seeder writes the bootstrap data in one transaction.
type Seeder struct {
	userRepo  auth.UserRepository
	users     *users.Service
	tags      product.TagRepository
	txManager tx.Manager
}

// New creates a seeder.
func New(userRepo auth.UserRepository, tags product.TagRepository, txManager tx.Manager, bcryptCost int) *Seeder {
	return &Seeder{
		userRepo:  userRepo,
		users:     users.NewService(userRepo, nil, bcryptCost),
		tags:      tags,
		txManager: txManager,
	}
}

// Operator is the actor used for changes made from the command line.
func Operator() *security.Actor {
	return security.NewActor(id.Nil(), security.RoleAdmin)
}

// Run seeds users and tags unless any user already exists.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := s.userRepo.Count(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if n > 0 {
			res.Skipped = true
			return nil
		}

		for _, in := range DefaultUsers {
			u, err := s.users.Create(ctx, Operator(), in)
			if err != nil {
				return fmt.Errorf("create %s: %w", in.Email, err)
			}
			res.Users = append(res.Users, u)
		}

		res.Tags, err = s.tags.Upsert(ctx, DefaultTags)
		if err != nil {
			return fmt.Errorf("create tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if res.Skipped {
		logger.Info(ctx, "seed skipped, users already exist")
	} else {
		logger.Info(ctx, "seed completed", "users", len(res.Users), "tags", len(res.Tags))
	}
	return res, nil
}

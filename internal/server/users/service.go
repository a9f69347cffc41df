// Package users contains the user-management domain: models, the
// persistence collaborator, and the service orchestrating registration,
// login, lookup, and paginated listing.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/apetrovs/databoard/internal/common"
	"github.com/apetrovs/databoard/internal/server/auth"
	"github.com/apetrovs/databoard/internal/server/config"
	"github.com/apetrovs/databoard/internal/server/pagination"
	"github.com/apetrovs/databoard/internal/server/validation"
)

// RegisterInput carries the fields of a registration request. Addresses
// are optional and persisted together with the user.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	BirthDate string
	Addresses []AddressInput
}

type AddressInput struct {
	CEP          string
	Street       string
	StreetNumber int
	Complement   string
	Neighborhood string
	City         string
	State        string
}

type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// ListInput leaves offset and limit optional; nil selects the defaults.
type ListInput struct {
	Offset *int
	Limit  *int
}

type LoginResult struct {
	User  *User
	Token string
}

// UserPage is one page of the user listing with its window metadata.
type UserPage struct {
	Users    []User
	Count    int
	PageInfo pagination.PageInfo
}

type Service struct {
	repo               Repository
	jwtSecret          []byte
	tokenValidity      time.Duration
	rememberMeValidity time.Duration
	bcryptCost         int
}

func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:               repo,
		jwtSecret:          []byte(cfg.SecretKey),
		tokenValidity:      cfg.TokenValidityDuration,
		rememberMeValidity: cfg.RememberMeValidityDuration,
		bcryptCost:         cfg.BcryptCost,
	}
}

// Register creates a new user. The caller must present a valid token.
// Validations run in fixed order (password, e-mail uniqueness, e-mail
// syntax, birth date) and the first failure wins. The user and its
// addresses are persisted as one atomic unit; a duplicate e-mail at
// insert time surfaces as the same ErrEmailTaken the pre-check yields.
func (s *Service) Register(ctx context.Context, token string, in RegisterInput) (*User, error) {

	if _, err := auth.GetUserIDFromToken(token, s.jwtSecret); err != nil {
		return nil, err
	}

	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmailUniqueness(ctx, in.Email, s.repo.ExistsByEmail); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmailSyntax(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidateBirthDate(in.BirthDate, time.Now()); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	birthDate, err := validation.ParseBirthDate(in.BirthDate)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		BirthDate:    birthDate,
	}
	for _, a := range in.Addresses {
		user.Addresses = append(user.Addresses, Address{
			CEP:          a.CEP,
			Street:       a.Street,
			StreetNumber: a.StreetNumber,
			Complement:   a.Complement,
			Neighborhood: a.Neighborhood,
			City:         a.City,
			State:        a.State,
		})
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

// Login verifies the credentials and issues a token valid for 4 hours,
// or 7 days when rememberMe is set (both configurable).
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {

	user, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, common.ErrWrongPassword
	}

	validity := s.tokenValidity
	if in.RememberMe {
		validity = s.rememberMeValidity
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, validity)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}

	return &LoginResult{User: user, Token: token}, nil
}

// GetUser returns the user with the given id, addresses included.
func (s *Service) GetUser(ctx context.Context, token string, id int64) (*User, error) {

	if _, err := auth.GetUserIDFromToken(token, s.jwtSecret); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	return user, nil
}

// ListUsers returns one page of users ordered by name ascending together
// with the total count and the page-window flags.
func (s *Service) ListUsers(ctx context.Context, token string, in ListInput) (*UserPage, error) {

	if _, err := auth.GetUserIDFromToken(token, s.jwtSecret); err != nil {
		return nil, err
	}

	offset, limit := pagination.Normalize(in.Offset, in.Limit)

	page, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	return &UserPage{
		Users:    page,
		Count:    total,
		PageInfo: pagination.ComputeWindow(offset, limit, total),
	}, nil
}

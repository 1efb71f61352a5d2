package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/internal/modules/account/dto"
	"anoa.com/campushub/internal/modules/account/repository"
	"anoa.com/campushub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	PlaceholderUsername = "public_user"
	PlaceholderEmail    = "public@example.com"
	placeholderPassword = "public123"
)

var (
	ErrUsernameTaken = fmt.Errorf("username already exists: %w", apperror.ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", apperror.ErrConflict)
)

type AccountService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*entity.Account, error)
	Authenticate(ctx context.Context, username, password string) (*entity.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
	ResolveOwner(ctx context.Context, userID string) (*entity.Account, error)
}

type accountService struct {
	repo repository.AccountRepository
	cost int
}

func NewAccountService(repo repository.AccountRepository) AccountService {
	return &accountService{repo: repo, cost: bcrypt.DefaultCost}
}

func (s *accountService) Register(ctx context.Context, req dto.RegisterRequest) (*entity.Account, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", apperror.ErrValidation)
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &entity.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return account, nil
}

func (s *accountService) Authenticate(ctx context.Context, username, password string) (*entity.Account, error) {
	account, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return account, nil
}

func (s *accountService) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return account, nil
}

// ResolveOwner picks the account that owns an event created through the
// public API. A blank userID falls back to the oldest account, creating the
// placeholder account when none exists yet.
func (s *accountService) ResolveOwner(ctx context.Context, userID string) (*entity.Account, error) {
	userID = strings.TrimSpace(userID)
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return nil, fmt.Errorf("invalid user_id: %w", apperror.ErrValidation)
		}
		account, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("user_id does not reference an existing account: %w", apperror.ErrValidation)
			}
			return nil, err
		}
		return account, nil
	}

	account, err := s.repo.FindFirst(ctx)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(placeholderPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	placeholder := &entity.Account{
		Username:     PlaceholderUsername,
		Email:        PlaceholderEmail,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, placeholder); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.repo.FindFirst(ctx)
		}
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("account_id", placeholder.ID.String()).Msg("created placeholder account for public api")
	return placeholder, nil
}

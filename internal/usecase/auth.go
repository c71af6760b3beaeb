package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/domain/repository"
	pkgAuth "github.com/polkiloo/uniformorders/internal/pkg/auth"
)

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy}
}

// Register creates a new student account and returns auth token.
func (u *AuthUseCase) Register(ctx context.Context, login, password string) (*model.User, string, error) {
	usr, err := u.create(ctx, login, password, model.RoleStudent)
	if err != nil {
		return nil, "", err
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// ParseToken extracts the authenticated principal from provided token.
func (u *AuthUseCase) ParseToken(token string) (model.Principal, error) {
	if token == "" {
		return model.Principal{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// CreateUser lets a super admin create accounts of any role.
func (u *AuthUseCase) CreateUser(ctx context.Context, actor model.Principal, login, password string, role model.Role) (*model.User, error) {
	if actor.Role != model.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: only super admins may create users", domainErrors.ErrForbidden)
	}
	if !role.Valid() {
		return nil, domainErrors.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}
	return u.create(ctx, login, password, role)
}

// EnsureAdmin creates the bootstrap super admin unless the login is taken.
func (u *AuthUseCase) EnsureAdmin(ctx context.Context, login, password string) (*model.User, error) {
	existing, err := u.users.GetByLogin(ctx, strings.TrimSpace(login))
	if err == nil {
		if existing.Role != model.RoleSuperAdmin {
			return nil, fmt.Errorf("bootstrap admin %q exists with role %s", existing.Login, existing.Role)
		}
		return existing, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}

	usr, err := u.create(ctx, login, password, model.RoleSuperAdmin)
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		return u.users.GetByLogin(ctx, strings.TrimSpace(login))
	}
	return usr, err
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

func (u *AuthUseCase) create(ctx context.Context, login, password string, role model.Role) (*model.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(password)
	if errors.Is(err, pkgAuth.ErrPasswordTooLong) {
		return nil, domainErrors.NewValidationError(err.Error())
	}
	if err != nil {
		return nil, err
	}

	return u.users.Create(ctx, login, hash, role)
}

func (u *AuthUseCase) issue(usr *model.User) (string, error) {
	return u.tokens.IssueToken(model.Principal{UserID: usr.ID, Role: usr.Role})
}

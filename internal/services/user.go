package services

import (
	"context"
	"errors"

	"github.com/clinic-records/apiserver/internal/store"
	"github.com/clinic-records/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, id int, patch types.UserPatch) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

// dummyHash is compared against when the username does not exist so that
// unknown and known usernames take the same time to reject.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("clinic-records-dummy"), bcrypt.DefaultCost)

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
	cost int
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

// Register stores a new user with a salted hash of password.
func (s *UserService) Register(ctx context.Context, username, password, role string, email *string) (types.User, error) {
	hashed, err := s.hash(password)
	if err != nil {
		return types.User{}, err
	}
	return s.repo.Create(ctx, types.User{
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
		Email:        email,
	})
}

// ValidateCredential reports whether secret matches the stored credential of username.
func (s *UserService) ValidateCredential(ctx context.Context, username, secret string) (bool, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
			return false, nil
		}
		return false, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Update applies patch to the user. A non-nil password replaces the stored hash.
func (s *UserService) Update(ctx context.Context, id int, patch types.UserPatch, password *string) (int64, error) {
	if password != nil {
		hashed, err := s.hash(*password)
		if err != nil {
			return 0, err
		}
		patch.PasswordHash = &hashed
	}
	if patch.Empty() {
		return 0, store.ErrEmptyUpdate
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *UserService) Delete(ctx context.Context, id int) (int64, error) {
	return s.repo.Delete(ctx, id)
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

package services

import (
	"context"
	"errors"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/adapters/persistence/repositories"
	"perpus-backend/internal/core/domain"
	"perpus-backend/internal/pkg/lending"
	"perpus-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// UserService handles member profile and statistics
type UserService struct {
	userRepo repositories.UserRepository
	loanRepo *repositories.LoanRepository
	fineRepo *repositories.FineRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	loanRepo *repositories.LoanRepository,
	fineRepo *repositories.FineRepository,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		loanRepo: loanRepo,
		fineRepo: fineRepo,
	}
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordInput represents password change input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UserStats represents a member's loan statistics
type UserStats struct {
	ActiveLoans    int64 `json:"active_loans"`
	CompletedLoans int64 `json:"completed_loans"`
	LateReturns    int64 `json:"late_returns"`
	UnpaidFines    int64 `json:"unpaid_fines"`
}

// GetProfile gets a member's profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateProfile updates a member's name and email
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	taken, err := s.userRepo.ExistsByEmailExcept(ctx, input.Email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	user.Name = input.Name
	user.Email = input.Email
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// ChangePassword verifies the old password and stores a new hash
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return domain.ErrInvalidPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}

// Stats computes a member's loan statistics
func (s *UserService) Stats(ctx context.Context, userID uint) (*UserStats, error) {
	stats := &UserStats{}
	var err error

	stats.ActiveLoans, err = s.loanRepo.CountByStatuses(ctx, userID, lending.ActiveStatuses)
	if err != nil {
		return nil, err
	}

	stats.CompletedLoans, err = s.loanRepo.CountByStatuses(ctx, userID, []string{lending.StatusReturned})
	if err != nil {
		return nil, err
	}

	stats.LateReturns, err = s.loanRepo.CountByStatuses(ctx, userID, []string{lending.StatusReturnedLate})
	if err != nil {
		return nil, err
	}

	stats.UnpaidFines, err = s.fineRepo.TotalUnpaidByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

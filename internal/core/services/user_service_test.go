package services

import (
	"context"
	"testing"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/adapters/persistence/repositories"
	"perpus-backend/internal/core/domain"
	"perpus-backend/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewUserService(
		repositories.NewUserRepository(db),
		repositories.NewLoanRepository(db),
		repositories.NewFineRepository(db),
	)
	return svc, db
}

func seedUserWithPassword(t *testing.T, db *gorm.DB, email, plain string) *models.User {
	t.Helper()
	hashed, err := password.Hash(plain)
	require.NoError(t, err)
	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: hashed,
		Role:     string(domain.RoleUser),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestGetProfile(t *testing.T) {
	svc, db := newUserService(t)
	user := seedUser(t, db, "budi@example.com")

	profile, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", profile.Email)

	_, err = svc.GetProfile(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, db := newUserService(t)
	user := seedUser(t, db, "budi@example.com")

	profile, err := svc.UpdateProfile(context.Background(), user.ID, &UpdateProfileInput{
		Name:  "Budi Santoso",
		Email: "budi.santoso@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", profile.Name)
	assert.Equal(t, "budi.santoso@example.com", profile.Email)
}

func TestUpdateProfileKeepOwnEmail(t *testing.T) {
	svc, db := newUserService(t)
	user := seedUser(t, db, "budi@example.com")

	// Keeping your own email is not a conflict
	_, err := svc.UpdateProfile(context.Background(), user.ID, &UpdateProfileInput{
		Name:  "Budi Santoso",
		Email: "budi@example.com",
	})
	require.NoError(t, err)
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	svc, db := newUserService(t)
	user := seedUser(t, db, "budi@example.com")
	seedUser(t, db, "siti@example.com")

	_, err := svc.UpdateProfile(context.Background(), user.ID, &UpdateProfileInput{
		Name:  "Budi",
		Email: "siti@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestChangePassword(t *testing.T) {
	svc, db := newUserService(t)
	user := seedUserWithPassword(t, db, "budi@example.com", "old-secret")

	err := svc.ChangePassword(context.Background(), user.ID, &ChangePasswordInput{
		OldPassword: "old-secret",
		NewPassword: "new-secret",
	})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, password.Verify("new-secret", stored.Password))
	assert.False(t, password.Verify("old-secret", stored.Password))
}

func TestChangePasswordWrongOld(t *testing.T) {
	svc, db := newUserService(t)
	user := seedUserWithPassword(t, db, "budi@example.com", "old-secret")

	err := svc.ChangePassword(context.Background(), user.ID, &ChangePasswordInput{
		OldPassword: "wrong",
		NewPassword: "new-secret",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
}

func TestStats(t *testing.T) {
	userSvc, db := newUserService(t)
	loanSvc := NewLoanService(db)
	user := seedUser(t, db, "budi@example.com")

	active := seedBook(t, db, "Active Book", 1)
	onTime := seedBook(t, db, "On Time Book", 1)
	late := seedBook(t, db, "Late Book", 1)

	// One active loan
	_, err := loanSvc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: active.ID})
	require.NoError(t, err)

	// One on-time return
	loan, err := loanSvc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: onTime.ID})
	require.NoError(t, err)
	_, err = loanSvc.Return(context.Background(), user.ID, loan.ID)
	require.NoError(t, err)

	// One late return with a 2000 fine
	loan, err = loanSvc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: late.ID})
	require.NoError(t, err)
	backdateLoan(t, db, loan.ID, 2)
	_, err = loanSvc.Return(context.Background(), user.ID, loan.ID)
	require.NoError(t, err)

	stats, err := userSvc.Stats(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.ActiveLoans)
	assert.Equal(t, int64(1), stats.CompletedLoans)
	assert.Equal(t, int64(1), stats.LateReturns)
	assert.Equal(t, int64(2000), stats.UnpaidFines)
}

func TestStatsEmpty(t *testing.T) {
	svc, db := newUserService(t)
	user := seedUser(t, db, "budi@example.com")

	stats, err := svc.Stats(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.ActiveLoans)
	assert.Equal(t, int64(0), stats.UnpaidFines)
}

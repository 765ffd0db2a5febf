package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"barpos_backend/internal/models"
	"barpos_backend/internal/repositories"
	"barpos_backend/pkg/utils"
)

func newAuthServiceForTest(t *testing.T) (AuthService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewAuthService(repositories.NewUserRepository(db), db), mock, func() { db.Close() }
}

func userRow(t *testing.T, name, pin, role string) *sqlmock.Rows {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "pin_hash", "role", "is_manager", "is_active",
		"avatar_url", "created_at", "updated_at",
	}).AddRow(int64(3), name, "", string(hash), role, false, true, nil, now, now)
}

func TestLogin(t *testing.T) {
	svc, mock, closeDB := newAuthServiceForTest(t)
	defer closeDB()

	mock.ExpectQuery(`FROM users WHERE name = \$1 AND is_active = TRUE`).
		WithArgs("dana").
		WillReturnRows(userRow(t, "dana", "4821", models.RoleServer))

	resp, err := svc.Login(LoginRequest{Name: "dana", PIN: "4821"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Empty(t, resp.User.PinHash, "hash must never leave the service")

	claims, err := utils.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)
	assert.Equal(t, models.RoleServer, claims.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPIN(t *testing.T) {
	svc, mock, closeDB := newAuthServiceForTest(t)
	defer closeDB()

	mock.ExpectQuery(`FROM users WHERE name = \$1 AND is_active = TRUE`).
		WithArgs("dana").
		WillReturnRows(userRow(t, "dana", "4821", models.RoleServer))

	_, err := svc.Login(LoginRequest{Name: "dana", PIN: "0000"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, mock, closeDB := newAuthServiceForTest(t)
	defer closeDB()

	mock.ExpectQuery(`FROM users WHERE name = \$1 AND is_active = TRUE`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Login(LoginRequest{Name: "ghost", PIN: "4821"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, mock, closeDB := newAuthServiceForTest(t)
	defer closeDB()

	refreshToken, err := utils.GenerateRefreshToken(3)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(userRow(t, "dana", "4821", models.RoleServer))

	resp, err := svc.Refresh(refreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, closeDB := newAuthServiceForTest(t)
	defer closeDB()

	// An access token carries the wrong issuer and must never pass at the
	// refresh endpoint, even though its signature is valid.
	accessToken, err := utils.GenerateAccessToken(3, "dana", models.RoleServer)
	require.NoError(t, err)

	_, err = svc.Refresh(accessToken)

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterStaffPINRules(t *testing.T) {
	svc, _, closeDB := newAuthServiceForTest(t)
	defer closeDB()

	for _, pin := range []string{"123", "123456789", "12ab", ""} {
		_, err := svc.RegisterStaff(RegisterStaffRequest{Name: "dana", PIN: pin, Role: models.RoleServer})
		assert.ErrorIs(t, err, ErrInvalidPIN, "pin %q should be rejected", pin)
	}
}

func TestRegisterStaffUnknownRole(t *testing.T) {
	svc, _, closeDB := newAuthServiceForTest(t)
	defer closeDB()

	_, err := svc.RegisterStaff(RegisterStaffRequest{Name: "dana", PIN: "4821", Role: "owner"})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterStaffDerivesManagerFlag(t *testing.T) {
	svc, mock, closeDB := newAuthServiceForTest(t)
	defer closeDB()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("sam", "", sqlmock.AnyArg(), models.RoleManager, true, true,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))

	user, err := svc.RegisterStaff(RegisterStaffRequest{Name: "sam", PIN: "991144", Role: models.RoleManager})

	require.NoError(t, err)
	assert.True(t, user.IsManager)
	assert.True(t, user.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

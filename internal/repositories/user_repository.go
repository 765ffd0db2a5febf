package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barpos_backend/internal/models"

	"github.com/lib/pq"
)

// UserRepository defines the interface for staff profile database operations.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, pinHash string) (int64, error)
	FindUserByName(name string) (*models.User, error) // includes PinHash for login verification
	FindUserByID(userID int64) (*models.User, error)
	GetActiveUsers() ([]models.User, error)
	DeactivateUser(executor SQLExecutor, userID int64) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, pin_hash, role, is_manager, is_active, avatar_url, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var avatarURL sql.NullString
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PinHash, &user.Role,
		&user.IsManager, &user.IsActive, &avatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if avatarURL.Valid {
		url := avatarURL.String
		user.AvatarURL = &url
	}
	return user, nil
}

func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User, pinHash string) (int64, error) {
	query := `INSERT INTO users (name, email, pin_hash, role, is_manager, is_active, avatar_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	currentTime := time.Now()

	err := executor.QueryRow(query,
		user.Name, user.Email, pinHash, user.Role, user.IsManager, true,
		user.AvatarURL, currentTime, currentTime,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: user name '%s' already exists (constraint: %s)", ErrDuplicateKey, user.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	user.IsActive = true
	return user.ID, nil
}

func (r *userRepository) FindUserByName(name string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name = $1 AND is_active = TRUE LIMIT 1`
	user, err := scanUser(r.db.QueryRow(query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by name '%s': %v", ErrDatabaseError, name, err)
	}
	return user, nil
}

func (r *userRepository) FindUserByID(userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}

func (r *userRepository) GetActiveUsers() ([]models.User, error) {
	users := []models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = TRUE ORDER BY name ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying active users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		var avatarURL sql.NullString
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.PinHash, &user.Role,
			&user.IsManager, &user.IsActive, &avatarURL, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		if avatarURL.Valid {
			url := avatarURL.String
			user.AvatarURL = &url
		}
		user.PinHash = "" // never expose hashes on listing paths
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating users: %v", ErrDatabaseError, err)
	}
	return users, nil
}

func (r *userRepository) DeactivateUser(executor SQLExecutor, userID int64) error {
	query := `UPDATE users SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := executor.Exec(query, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("%w: deactivating user ID %d: %v", ErrDatabaseError, userID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

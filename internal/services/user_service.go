package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/itemdesk-be/internal/database"
	"github.com/isdelr/itemdesk-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// MaxUserResults bounds the admin user listing.
const MaxUserResults = 50

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, input NewUser) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) error
	ListUsers(ctx context.Context, search string) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (models.User, error)
	DeleteUser(ctx context.Context, caller models.Caller, id string) error
}

// NewUser carries the fields needed to register an account.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// UserService provides business logic for user management.
type UserService struct {
	db         *database.DB
	bcryptCost int
}

// NewUserService creates a new UserService.
func NewUserService(db *database.DB, bcryptCost int) *UserService {
	return &UserService{db: db, bcryptCost: bcryptCost}
}

const userColumns = "id, name, email, password_hash, role, created_at, updated_at"

func scanUser(scanner interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	err := scanner.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	if !models.ValidID(id) {
		return models.User{}, models.NewError(models.ErrNotFound, "User not found")
	}
	user, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.NewError(models.ErrNotFound, "User not found")
		}
		return models.User{}, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", normalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.NewError(models.ErrNotFound, "User not found")
		}
		return models.User{}, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// CreateUser registers a new account. Emails are compared case-insensitively.
func (s *UserService) CreateUser(ctx context.Context, input NewUser) (models.User, error) {
	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return models.User{}, models.NewError(models.ErrInvalidInput, "Invalid role")
	}

	email := normalizeEmail(input.Email)
	if _, err := s.GetUserByEmail(ctx, email); err == nil {
		return models.User{}, models.NewError(models.ErrConflict, "Email already in use")
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := s.hashSecret(input.Password)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, models.NewError(models.ErrConflict, "Email already in use")
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials. Unknown emails and wrong
// passwords produce the same error.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.User{}, models.NewError(models.ErrInvalidCredential, "Invalid credentials")
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, models.NewError(models.ErrInvalidCredential, "Invalid credentials")
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// UpdatePassword verifies the current password, then hashes and sets a new password for a user.
func (s *UserService) UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	var current string
	err := s.db.QueryRowContext(ctx, "SELECT password_hash FROM users WHERE id = ?", id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewError(models.ErrNotFound, "User not found")
		}
		return fmt.Errorf("query password hash: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(current), []byte(currentPassword)); err != nil {
		return models.NewError(models.ErrInvalidCredential, "Invalid credentials")
	}

	hash, err := s.hashSecret(newPassword)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, "UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?", hash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ListUsers returns up to MaxUserResults users, newest first, optionally
// filtered by a case-insensitive substring of name or email.
func (s *UserService) ListUsers(ctx context.Context, search string) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	var args []any
	if term := strings.TrimSpace(search); term != "" {
		pattern := containsPattern(term)
		query += " WHERE " + containsClause(s.db.Lower, "name", "email")
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, MaxUserResults)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.PasswordHash = ""
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateRole sets the role of the target user.
func (s *UserService) UpdateRole(ctx context.Context, id string, role models.Role) (models.User, error) {
	if !models.ValidID(id) {
		return models.User{}, models.NewError(models.ErrInvalidInput, "Invalid user id")
	}
	if !role.Valid() {
		return models.User{}, models.NewError(models.ErrInvalidInput, "Invalid role")
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	user.Role = role
	user.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, "UPDATE users SET role = ?, updated_at = ? WHERE id = ?", string(user.Role), user.UpdatedAt, id)
	if err != nil {
		return models.User{}, fmt.Errorf("update role: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// DeleteUser removes a user and every item they own. The items go first so a
// failure in between never leaves items pointing at a missing owner.
func (s *UserService) DeleteUser(ctx context.Context, caller models.Caller, id string) error {
	if !models.ValidID(id) {
		return models.NewError(models.ErrInvalidInput, "Invalid user id")
	}
	if id == caller.ID {
		return models.NewError(models.ErrInvalidInput, "You cannot delete your own account")
	}

	if _, err := s.GetUserByID(ctx, id); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE owner_id = ?", id); err != nil {
		return fmt.Errorf("delete user items: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// hashSecret runs on every write that sets or changes a password, and only then.
func (s *UserService) hashSecret(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

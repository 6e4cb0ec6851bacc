package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"hookstash/internal/platform/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = "usr_" + uuid.NewString()
	}
	now := time.Now().Unix()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO users (id, username, email, first_name, last_name, is_staff, is_superuser, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.IsStaff, user.IsSuperuser, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return r.getOne(`SELECT id, username, email, first_name, last_name, is_staff, is_superuser, created_at, updated_at FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getOne(`SELECT id, username, email, first_name, last_name, is_staff, is_superuser, created_at, updated_at FROM users WHERE username = ?`, username)
}

func (r *UserRepository) Update(user *models.User) error {
	user.UpdatedAt = time.Now().Unix()
	_, err := r.db.Exec(`
		UPDATE users
		SET email = ?, first_name = ?, last_name = ?, is_staff = ?, is_superuser = ?, updated_at = ?
		WHERE id = ?
	`, user.Email, user.FirstName, user.LastName, user.IsStaff, user.IsSuperuser, user.UpdatedAt, user.ID)
	return err
}

func (r *UserRepository) getOne(query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(query, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
		&user.IsStaff, &user.IsSuperuser, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

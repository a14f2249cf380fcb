package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
)

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "active", "last_login", "created_at", "updated_at"}).
		AddRow("u1", "faculty@example.edu", "hash", "Faculty One", "faculty", true, nil, time.Now(), time.Now())
	mock.ExpectQuery("FROM users WHERE email = \\$1").WithArgs("faculty@example.edu").WillReturnRows(rows)
	mock.ExpectQuery("FROM users WHERE email = \\$1").WithArgs("nobody@example.edu").WillReturnError(sql.ErrNoRows)

	user, err := repo.FindByEmail(context.Background(), "faculty@example.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, user.Role)
	assert.Nil(t, user.LastLogin)

	_, err = repo.FindByEmail(context.Background(), "nobody@example.edu")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(`(?s)INSERT INTO users.*ON CONFLICT \(email\)`).
		WithArgs(sqlmock.AnyArg(), "admin@example.edu", "hash", "Admin", "admin", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "admin@example.edu", PasswordHash: "hash", FullName: "Admin", Role: models.RoleAdmin, Active: true}
	require.NoError(t, repo.Upsert(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	ts := time.Now().UTC()
	mock.ExpectExec("UPDATE users SET last_login").WithArgs("u1", ts, ts).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), "u1", ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}

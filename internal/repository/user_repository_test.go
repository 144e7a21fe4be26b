package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campus-vault/campusvault-api/internal/models"
)

func userRows(users ...models.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "college", "department", "employee_id", "active", "last_login", "created_at", "updated_at"})
	for _, u := range users {
		rows.AddRow(u.ID, u.Email, u.PasswordHash, u.FullName, u.Role, u.College, u.Department, u.EmployeeID, u.Active, u.LastLogin, u.CreatedAt, u.UpdatedAt)
	}
	return rows
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	stored := models.User{ID: "user-1", Email: "asha@example.edu", FullName: "Asha", Role: models.RoleStudent, College: "NIT Trichy", Department: "CSE", Active: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, college, department, employee_id, active")).
		WithArgs("asha@example.edu").
		WillReturnRows(userRows(stored))

	user, err := repo.FindByEmail(context.Background(), "asha@example.edu")
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, models.RoleStudent, user.Role)
	require.Equal(t, "NIT Trichy", user.College)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	employeeID := "EMP-42"
	user := &models.User{
		Email:        "rao@example.edu",
		PasswordHash: "hash",
		FullName:     "Dr. Rao",
		Role:         models.RoleFaculty,
		College:      "NIT Trichy",
		Department:   "ECE",
		EmployeeID:   &employeeID,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotEmpty(t, user.ID)
	require.False(t, user.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	userID := "user-1"
	log := &models.AuditLog{
		UserID:   &userID,
		Action:   models.AuditActionResourceUpload,
		Resource: "notes",
	}
	require.NoError(t, repo.CreateAuditLog(context.Background(), log))
	require.NotEmpty(t, log.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/cursohub/cursohub-api/internal/models"
)

func TestAccountRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "full_name", "email_confirmed", "confirmed_at", "active", "last_login", "created_at", "updated_at",
	}).AddRow("acc-1", "ada@example.com", "hash", "Ada Lovelace", true, time.Now(), true, nil, time.Now(), time.Now())

	mock.ExpectQuery("SELECT id, email, password_hash").
		WithArgs("ada@example.com").
		WillReturnRows(rows)

	account, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, "acc-1", account.ID)
	require.True(t, account.EmailConfirmed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT id, email, password_hash").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO accounts").
		WillReturnResult(sqlmock.NewResult(0, 1))

	account := &models.Account{Email: "ada@example.com", PasswordHash: "hash", FullName: "Ada Lovelace", Active: true}
	err := repo.Create(context.Background(), account)
	require.NoError(t, err)
	require.NotEmpty(t, account.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryRevokeAccountRefreshTokens(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE account_id = $1 AND revoked = FALSE")).
		WithArgs("acc-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.RevokeAccountRefreshTokens(context.Background(), "acc-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryFindVerificationToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	rows := sqlmock.NewRows([]string{"id", "account_id", "token_hash", "expires_at", "consumed_at", "created_at"}).
		AddRow("vt-1", "acc-1", "hash", time.Now().Add(time.Hour), nil, time.Now())

	mock.ExpectQuery("SELECT id, account_id, token_hash").
		WithArgs("hash").
		WillReturnRows(rows)

	token, err := repo.FindVerificationToken(context.Background(), "hash")
	require.NoError(t, err)
	require.Equal(t, "acc-1", token.AccountID)
	require.Nil(t, token.ConsumedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

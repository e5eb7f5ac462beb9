// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the auth repositories.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [AccountRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/dberr"
)

// accountColumns is the shared projection for hydrating [Account] rows.
const accountColumns = `
	id, username, email, fullname, passwordhash,
	avatarurl, COALESCE(coverimageurl, ''), COALESCE(refreshtoken, ''),
	createdat, updatedat`

// # Account Repository

// PostgresAccountRepository implements the AccountRepository interface using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
Create persists a new account record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided. Unique violations on username or email surface as Conflict.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate identity, or connectivity errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, fullname, passwordhash, avatarurl, coverimageurl, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Username,
		account.Email,
		account.FullName,
		account.PasswordHash,
		account.AvatarURL,
		account.CoverImageURL,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	return nil
}

/*
FindByID retrieves an account record by its unique ID.

Description: Primary key resolution for accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE id = $1`
	return repository.findOne(context, query, id)
}

/*
FindByUsername retrieves an account record by its canonical username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByUsername(context context.Context, username string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE username = $1`
	return repository.findOne(context, query, username)
}

/*
FindByEmail retrieves an account record by its unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE email = $1`
	return repository.findOne(context, query, email)
}

/*
FindByLogin retrieves the account whose username OR email matches login.

Description: Single-query flexible lookup supporting login-by-either-identity.

Parameters:
  - context: context.Context
  - login: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByLogin(context context.Context, login string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE username = $1 OR email = $1`
	return repository.findOne(context, query, login)
}

// findOne executes a single-row account query and hydrates the entity.
func (repository *PostgresAccountRepository) findOne(context context.Context, query string, args ...any) (*Account, error) {
	account := &Account{}
	err := repository.pool.QueryRow(context, query, args...).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.PasswordHash,
		&account.AvatarURL,
		&account.CoverImageURL,
		&account.RefreshToken,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_failed: %w", err)
	}

	return account, nil
}

/*
SaveRefreshToken overwrites the account's single refresh-token slot.

Description: The platform tracks exactly one live session per account; a new
login or rotation simply replaces the previous token.

Parameters:
  - context: context.Context
  - accountID: string
  - token: string

Returns:
  - error: apperr.NotFound if the account row is gone, or execution errors
*/
func (repository *PostgresAccountRepository) SaveRefreshToken(context context.Context, accountID, token string) error {
	const query = "UPDATE users.account SET refreshtoken = $2, updatedat = $3 WHERE id = $1"

	tag, err := repository.pool.Exec(context, query, accountID, token, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_save_refresh_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

/*
ClearRefreshToken empties the account's refresh-token slot.

Description: Idempotent by design. Clearing a missing account or an already
empty slot both succeed, making logout safe to repeat.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Execution errors only
*/
func (repository *PostgresAccountRepository) ClearRefreshToken(context context.Context, accountID string) error {
	const query = "UPDATE users.account SET refreshtoken = NULL, updatedat = $2 WHERE id = $1"

	if _, err := repository.pool.Exec(context, query, accountID, time.Now()); err != nil {
		return fmt.Errorf("postgres_account_repo_clear_refresh_failed: %w", err)
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific account.

Parameters:
  - context: context.Context
  - accountID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, accountID, newHash string) error {
	const query = "UPDATE users.account SET passwordhash = $2, updatedat = $3 WHERE id = $1"

	_, err := repository.pool.Exec(context, query, accountID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_password_failed: %w", err)
	}

	return nil
}

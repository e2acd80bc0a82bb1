// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	appctx "shopdesk/internal/core/context"
	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/domain/auth"
	"shopdesk/internal/infrastructure/storage/postgres"
)

const usersTable = "users"

// Compile-time check.
var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo persists users.
type UserRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewUserRepo creates a user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[auth.User](),
	}
}

func (r *UserRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *UserRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(usersTable)
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.builder().
		Insert(usersTable).
		SetMap(postgres.StructToMap(user))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": userID}).
		Where(squirrel.Eq{"deleted_at": nil}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(usersTable, userID.String())
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"deleted_at": nil}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(usersTable, email)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// Update modifies an existing user with optimistic locking.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	data := postgres.StructToMap(user)
	delete(data, "id")
	delete(data, "version")
	delete(data, "created_at")

	// The caller pre-increments version; expect the previous value.
	q := r.builder().
		Update(usersTable).
		SetMap(data).
		Where(squirrel.Eq{"id": user.ID}).
		Where(squirrel.Eq{"version": user.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(usersTable, user.ID)
	}
	return nil
}

// ListWorkers returns the workers of an admin's shop.
func (r *UserRepo) ListWorkers(ctx context.Context, adminID id.ID) ([]auth.User, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"role": appctx.RoleWorker}).
		Where(squirrel.Eq{"admin_id": adminID}).
		Where(squirrel.Eq{"deleted_at": nil}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var users []auth.User
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &users, sql, args...); err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	return users, nil
}

// ListAdmins returns all shop admins.
func (r *UserRepo) ListAdmins(ctx context.Context) ([]auth.User, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"role": appctx.RoleAdmin}).
		Where(squirrel.Eq{"deleted_at": nil}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var users []auth.User
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &users, sql, args...); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return users, nil
}

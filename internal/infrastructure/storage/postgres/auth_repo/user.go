package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"planora/internal/core/apperror"
	"planora/internal/core/id"
	"planora/internal/core/tenant"
	"planora/internal/domain"
	"planora/internal/domain/user"
	"planora/internal/infrastructure/storage/postgres"
)

var userColumns = []string{
	"id", "name", "email", "password_hash", "role", "entrepreneur_id",
	"is_active", "last_login_at", "failed_login_attempts", "locked_until",
	"version", "created_at", "updated_at",
}

// UserRepo implements user.Repository.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

func (r *UserRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *UserRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// scopedSelect builds a SELECT limited to the caller's tenant. A user row
// belongs to a tenant when its entrepreneur_id points at the tenant root,
// or when the row is the root itself (entrepreneurs carry a NULL pointer).
func (r *UserRepo) scopedSelect(scope tenant.Scope) squirrel.SelectBuilder {
	q := r.builder().Select(userColumns...).From("users")
	if scope.Unbounded {
		return q
	}
	return q.Where(squirrel.Or{
		squirrel.Eq{"entrepreneur_id": scope.EntrepreneurID},
		squirrel.Eq{"id": scope.EntrepreneurID},
	})
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, role, entrepreneur_id,
			is_active, failed_login_attempts, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier(ctx).Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.EntrepreneurID,
		u.IsActive, u.FailedLoginAttempts, u.Version, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("user", "email", u.Email).WithCause(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves user by ID without tenant filtering.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*user.User, error) {
	q := r.builder().Select(userColumns...).From("users").
		Where(squirrel.Eq{"id": userID})

	return r.findOne(ctx, q, userID.String())
}

// GetScoped retrieves user by ID within the caller's tenant scope.
func (r *UserRepo) GetScoped(ctx context.Context, scope tenant.Scope, userID id.ID) (*user.User, error) {
	q := r.scopedSelect(scope).Where(squirrel.Eq{"id": userID})

	return r.findOne(ctx, q, userID.String())
}

// GetByEmail retrieves user by exact email match.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	q := r.builder().Select(userColumns...).From("users").
		Where(squirrel.Eq{"email": email})

	return r.findOne(ctx, q, email)
}

// Update updates user data with optimistic locking.
func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			name = $2,
			email = $3,
			password_hash = $4,
			is_active = $5,
			last_login_at = $6,
			failed_login_attempts = $7,
			locked_until = $8,
			version = version + 1,
			updated_at = $9
		WHERE id = $1 AND version = $10
	`

	result, err := r.querier(ctx).Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.IsActive,
		u.LastLoginAt, u.FailedLoginAttempts, u.LockedUntil,
		u.UpdatedAt, u.Version,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", u.ID)
	}

	u.Version++
	return nil
}

// Delete removes a user.
func (r *UserRepo) Delete(ctx context.Context, userID id.ID) error {
	result, err := r.querier(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewConflict("cannot delete: user is referenced by other data").
				WithDetail("id", userID.String()).
				WithCause(err)
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID.String())
	}

	return nil
}

// List retrieves users within scope with filtering.
func (r *UserRepo) List(ctx context.Context, scope tenant.Scope, filter domain.ListFilter) (domain.ListResult[*user.User], error) {
	result := domain.ListResult[*user.User]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.scopedSelect(scope)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}
	if filter.Role != nil {
		q = q.Where(squirrel.Eq{"role": filter.Role.String()})
	}
	if filter.IsActive != nil {
		q = q.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}
	if filter.EntrepreneurID != nil {
		q = q.Where(squirrel.Eq{"entrepreneur_id": *filter.EntrepreneurID})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count users: %w", err)
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list users: %w", err)
	}

	return result, nil
}

// ExistsByEmail checks if email is taken.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	err := r.querier(ctx).QueryRow(ctx,
		`SELECT 1 FROM users WHERE email = $1 LIMIT 1`, email).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}

	return true, nil
}

func (r *UserRepo) findOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*user.User, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u user.User
	if err := pgxscan.Get(ctx, r.querier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &u, nil
}

// Ensure interface compliance
var _ user.Repository = (*UserRepo)(nil)

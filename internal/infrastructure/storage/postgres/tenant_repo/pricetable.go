package tenant_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"planora/internal/core/apperror"
	"planora/internal/core/id"
	"planora/internal/domain/pricetable"
	"planora/internal/infrastructure/storage/postgres"
)

const priceTableTable = "price_tables"

var priceTableColumns = postgres.ExtractDBColumns[pricetable.PriceTable]()

// PriceTableRepo implements pricetable.Repository. Price tables are
// platform-global: no tenant column, no scope filtering.
type PriceTableRepo struct {
	txManager *postgres.TxManager
}

// NewPriceTableRepo creates a new price table repository.
func NewPriceTableRepo(txManager *postgres.TxManager) *PriceTableRepo {
	return &PriceTableRepo{txManager: txManager}
}

func (r *PriceTableRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *PriceTableRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new price table.
func (r *PriceTableRepo) Create(ctx context.Context, table *pricetable.PriceTable) error {
	data := postgres.StructToMap(table)

	q := r.builder().
		Insert(priceTableTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("price table", "name", table.Name).WithCause(err)
		}
		return fmt.Errorf("insert price table: %w", err)
	}

	return nil
}

// GetByID retrieves a table by ID.
func (r *PriceTableRepo) GetByID(ctx context.Context, tableID id.ID) (*pricetable.PriceTable, error) {
	q := r.builder().
		Select(priceTableColumns...).
		From(priceTableTable).
		Where(squirrel.Eq{"id": tableID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var table pricetable.PriceTable
	if err := pgxscan.Get(ctx, r.querier(ctx), &table, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("price table", tableID.String())
		}
		return nil, fmt.Errorf("get price table: %w", err)
	}

	return &table, nil
}

// Update modifies a table with optimistic locking.
func (r *PriceTableRepo) Update(ctx context.Context, table *pricetable.PriceTable) error {
	data := postgres.StructToMap(table)
	delete(data, "id")
	delete(data, "version")

	q := r.builder().
		Update(priceTableTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": table.ID}).
		Where(squirrel.Eq{"version": table.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update price table: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("price table", table.ID)
	}

	table.Version++
	return nil
}

// Delete removes a table. Referential checks against active plans happen
// in the service; a stray FK violation still maps to a conflict.
func (r *PriceTableRepo) Delete(ctx context.Context, tableID id.ID) error {
	result, err := r.querier(ctx).Exec(ctx,
		`DELETE FROM price_tables WHERE id = $1`, tableID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewConflict("cannot delete: price table is referenced by plans").
				WithDetail("id", tableID.String()).
				WithCause(err)
		}
		return fmt.Errorf("delete price table: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("price table", tableID.String())
	}

	return nil
}

// List retrieves tables ordered by display_order ascending.
func (r *PriceTableRepo) List(ctx context.Context, filter pricetable.ListFilter) ([]*pricetable.PriceTable, error) {
	q := r.builder().
		Select(priceTableColumns...).
		From(priceTableTable).
		OrderBy("display_order ASC", "created_at ASC")

	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var tables []*pricetable.PriceTable
	if err := pgxscan.Select(ctx, r.querier(ctx), &tables, sql, args...); err != nil {
		return nil, fmt.Errorf("list price tables: %w", err)
	}

	return tables, nil
}

// Ensure interface compliance
var _ pricetable.Repository = (*PriceTableRepo)(nil)

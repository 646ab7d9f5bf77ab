package tenant_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"planora/internal/core/apperror"
	"planora/internal/core/id"
	"planora/internal/domain/plan"
	"planora/internal/domain/pricetable"
	"planora/internal/infrastructure/storage/postgres"
)

const planTable = "plans"

var planColumns = postgres.ExtractDBColumns[plan.Plan]()

// PlanRepo implements plan.Repository.
//
// Plans carry their own visibility boundary (the owning customer) instead
// of the shared tenant scope: entrepreneurs do not see the plans of their
// customers, only super-admins and the customer itself do.
type PlanRepo struct {
	txManager *postgres.TxManager
}

// NewPlanRepo creates a new plan repository.
func NewPlanRepo(txManager *postgres.TxManager) *PlanRepo {
	return &PlanRepo{txManager: txManager}
}

func (r *PlanRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *PlanRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *PlanRepo) visibleSelect(vis plan.Visibility) squirrel.SelectBuilder {
	q := r.builder().Select(planColumns...).From(planTable)
	if vis.All {
		return q
	}
	return q.Where(squirrel.Eq{"customer_id": vis.CustomerID})
}

// Create inserts a new plan.
func (r *PlanRepo) Create(ctx context.Context, p *plan.Plan) error {
	data := postgres.StructToMap(p)

	q := r.builder().
		Insert(planTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	return nil
}

// GetByID retrieves a plan within the visibility boundary.
func (r *PlanRepo) GetByID(ctx context.Context, vis plan.Visibility, planID id.ID) (*plan.Plan, error) {
	q := r.visibleSelect(vis).
		Where(squirrel.Eq{"id": planID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p plan.Plan
	if err := pgxscan.Get(ctx, r.querier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("plan", planID.String())
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}

	return &p, nil
}

// GetByPayHash retrieves a plan by its gateway transaction reference.
func (r *PlanRepo) GetByPayHash(ctx context.Context, payHash string) (*plan.Plan, error) {
	if payHash == "" {
		return nil, apperror.NewValidation("payHash is required")
	}

	q := r.builder().
		Select(planColumns...).
		From(planTable).
		Where(squirrel.Eq{"pay_hash": payHash}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p plan.Plan
	if err := pgxscan.Get(ctx, r.querier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("plan", payHash)
		}
		return nil, fmt.Errorf("get plan by pay hash: %w", err)
	}

	return &p, nil
}

// Update modifies a plan with optimistic locking.
func (r *PlanRepo) Update(ctx context.Context, p *plan.Plan) error {
	data := postgres.StructToMap(p)
	delete(data, "id")
	delete(data, "version")
	delete(data, "entrepreneur_id")
	delete(data, "customer_id")

	q := r.builder().
		Update(planTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"version": p.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("plan", p.ID)
	}

	p.Version++
	return nil
}

// Purge physically removes a plan.
func (r *PlanRepo) Purge(ctx context.Context, planID id.ID) error {
	result, err := r.querier(ctx).Exec(ctx, `DELETE FROM plans WHERE id = $1`, planID)
	if err != nil {
		return fmt.Errorf("purge plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("plan", planID.String())
	}

	return nil
}

// List retrieves plans within the visibility boundary.
func (r *PlanRepo) List(ctx context.Context, vis plan.Visibility, filter plan.ListFilter) ([]*plan.Plan, int64, error) {
	q := r.visibleSelect(vis)

	if filter.PayStatus != nil {
		q = q.Where(squirrel.Eq{"pay_status": *filter.PayStatus})
	}
	if filter.IsActive != nil {
		q = q.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.querier(ctx)
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count plans: %w", err)
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
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var plans []*plan.Plan
	if err := pgxscan.Select(ctx, querier, &plans, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list plans: %w", err)
	}

	return plans, total, nil
}

// ListDue returns active plans whose pending payment or paid subscription
// deadline has passed as of now. Ordered oldest first so repeated sweeps
// with a batch limit make progress.
func (r *PlanRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*plan.Plan, error) {
	q := r.builder().
		Select(planColumns...).
		From(planTable).
		Where(squirrel.Eq{"lifecycle": plan.LifecycleActive}).
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"pay_status": plan.StatusPaid},
				squirrel.NotEq{"plan_expiration_date": nil},
				squirrel.Lt{"plan_expiration_date": now},
			},
			squirrel.And{
				squirrel.Eq{"pay_status": plan.StatusPending},
				squirrel.NotEq{"pay_expiration": nil},
				squirrel.Lt{"pay_expiration": now},
			},
		}).
		OrderBy("created_at ASC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var plans []*plan.Plan
	if err := pgxscan.Select(ctx, r.querier(ctx), &plans, sql, args...); err != nil {
		return nil, fmt.Errorf("list due plans: %w", err)
	}

	return plans, nil
}

// CountActiveByPriceTable reports active plans referencing a table.
func (r *PlanRepo) CountActiveByPriceTable(ctx context.Context, tableID id.ID) (int, error) {
	q := r.builder().
		Select("COUNT(*)").
		From(planTable).
		Where(squirrel.Eq{"price_table_id": tableID}).
		Where(squirrel.Eq{"lifecycle": plan.LifecycleActive}).
		Where(squirrel.Eq{"is_active": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count plans: %w", err)
	}

	return count, nil
}

// Ensure interface compliance
var (
	_ plan.Repository        = (*PlanRepo)(nil)
	_ pricetable.PlanCounter = (*PlanRepo)(nil)
)

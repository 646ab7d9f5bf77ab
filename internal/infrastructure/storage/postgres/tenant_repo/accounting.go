package tenant_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"planora/internal/core/tenant"
	"planora/internal/domain/accounting"
	"planora/internal/infrastructure/storage/postgres"
)

const accountingTable = "accounting_entries"

// AccountingRepo implements accounting.Repository.
type AccountingRepo struct {
	*BaseTenantRepo[*accounting.Entry]
}

// NewAccountingRepo creates a new accounting repository.
func NewAccountingRepo(txManager *postgres.TxManager) *AccountingRepo {
	return &AccountingRepo{
		BaseTenantRepo: NewBaseTenantRepo[*accounting.Entry](
			txManager,
			accountingTable,
			postgres.ExtractDBColumns[accounting.Entry](),
			func() *accounting.Entry { return &accounting.Entry{} },
		),
	}
}

// Summarize totals income and expense between from and to (inclusive).
// Aggregation runs in SQL; amounts come back as NUMERIC and stay exact.
func (r *AccountingRepo) Summarize(ctx context.Context, scope tenant.Scope, from, to time.Time) (accounting.Summary, error) {
	q := r.Builder().
		Select(
			fmt.Sprintf("COALESCE(SUM(amount) FILTER (WHERE kind = '%s'), 0) AS income", accounting.KindIncome),
			fmt.Sprintf("COALESCE(SUM(amount) FILTER (WHERE kind = '%s'), 0) AS expense", accounting.KindExpense),
		).
		From(accountingTable).
		Where(squirrel.GtOrEq{"entry_date": from}).
		Where(squirrel.LtOrEq{"entry_date": to})

	if !scope.Unbounded {
		q = q.Where(squirrel.Eq{"entrepreneur_id": scope.EntrepreneurID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return accounting.Summary{}, fmt.Errorf("build summary query: %w", err)
	}

	var income, expense decimal.Decimal
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&income, &expense); err != nil {
		return accounting.Summary{}, fmt.Errorf("summarize entries: %w", err)
	}

	return accounting.Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}, nil
}

// Ensure interface compliance
var _ accounting.Repository = (*AccountingRepo)(nil)

package pricetable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
)

type fakeRepo struct {
	tables map[id.ID]*PriceTable
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tables: map[id.ID]*PriceTable{}}
}

func (r *fakeRepo) Create(_ context.Context, table *PriceTable) error {
	r.tables[table.ID] = table
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, tableID id.ID) (*PriceTable, error) {
	table, ok := r.tables[tableID]
	if !ok {
		return nil, apperror.NewNotFound("price_table", tableID.String())
	}
	return table, nil
}

func (r *fakeRepo) Update(_ context.Context, table *PriceTable) error {
	r.tables[table.ID] = table
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, tableID id.ID) error {
	delete(r.tables, tableID)
	return nil
}

func (r *fakeRepo) List(_ context.Context, filter ListFilter) ([]*PriceTable, error) {
	var out []*PriceTable
	for _, table := range r.tables {
		if filter.ActiveOnly && !table.IsActive {
			continue
		}
		out = append(out, table)
	}
	return out, nil
}

type fakeCounter struct {
	counts map[id.ID]int
}

func (c *fakeCounter) CountActiveByPriceTable(_ context.Context, tableID id.ID) (int, error) {
	return c.counts[tableID], nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func adminCtx() context.Context {
	return appctx.WithIdentity(context.Background(), &appctx.Identity{
		UserID: id.New(),
		Role:   role.SuperAdmin,
	})
}

func entrepreneurCtx() context.Context {
	return appctx.WithIdentity(context.Background(), &appctx.Identity{
		UserID: id.New(),
		Role:   role.Entrepreneur,
	})
}

func newTestService() (*Service, *fakeRepo, *fakeCounter) {
	repo := newFakeRepo()
	counter := &fakeCounter{counts: map[id.ID]int{}}
	svc := NewService(repo, counter, passthroughTx{})
	return svc, repo, counter
}

func TestCreate_RequiresSuperAdmin(t *testing.T) {
	svc, _, _ := newTestService()
	table := NewPriceTable("Premium", "99.99", "899.88")

	err := svc.Create(entrepreneurCtx(), table)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	assert.NoError(t, svc.Create(adminCtx(), table))
}

func TestPublicListing_HidesInactive(t *testing.T) {
	svc, repo, _ := newTestService()

	active := NewPriceTable("Active", "10.00", "100.00")
	inactive := NewPriceTable("Hidden", "20.00", "200.00")
	inactive.IsActive = false
	repo.tables[active.ID] = active
	repo.tables[inactive.ID] = inactive

	// No identity at all: public endpoint.
	tables, err := svc.ListPublic(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "Active", tables[0].Name)

	// Inactive table answers not found, identical to absence.
	_, err = svc.GetPublic(context.Background(), inactive.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	got, err := svc.GetPublic(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)
}

func TestDelete_RejectedWhenPlansReference(t *testing.T) {
	svc, repo, counter := newTestService()

	table := NewPriceTable("Premium", "99.99", "899.88")
	repo.tables[table.ID] = table
	counter.counts[table.ID] = 3

	err := svc.Delete(adminCtx(), table.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePriceTableInUse, appErr.Code)

	// Still there.
	_, err = repo.GetByID(context.Background(), table.ID)
	assert.NoError(t, err)
}

func TestDelete_Unreferenced(t *testing.T) {
	svc, repo, _ := newTestService()

	table := NewPriceTable("Premium", "99.99", "899.88")
	repo.tables[table.ID] = table

	require.NoError(t, svc.Delete(adminCtx(), table.ID))
	_, err := repo.GetByID(context.Background(), table.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestListAll_RequiresSuperAdmin(t *testing.T) {
	svc, repo, _ := newTestService()
	inactive := NewPriceTable("Hidden", "20.00", "200.00")
	inactive.IsActive = false
	repo.tables[inactive.ID] = inactive

	_, err := svc.ListAll(entrepreneurCtx(), 50, 0)
	assert.Error(t, err)

	tables, err := svc.ListAll(adminCtx(), 50, 0)
	require.NoError(t, err)
	assert.Len(t, tables, 1)
}

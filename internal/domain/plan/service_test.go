package plan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
	"planora/internal/core/security"
	"planora/internal/core/tenant"
	"planora/internal/domain"
	"planora/internal/domain/audit"
	"planora/internal/domain/pricetable"
	"planora/internal/domain/user"
)

// --- fakes ---

type fakePlanRepo struct {
	plans map[id.ID]*Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: map[id.ID]*Plan{}}
}

func (r *fakePlanRepo) visible(vis Visibility, p *Plan) bool {
	return vis.All || p.CustomerID == vis.CustomerID
}

func (r *fakePlanRepo) Create(_ context.Context, p *Plan) error {
	r.plans[p.ID] = p
	return nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, vis Visibility, planID id.ID) (*Plan, error) {
	p, ok := r.plans[planID]
	if !ok || !r.visible(vis, p) {
		return nil, apperror.NewNotFound("plan", planID.String())
	}
	return p, nil
}

func (r *fakePlanRepo) GetByPayHash(_ context.Context, payHash string) (*Plan, error) {
	for _, p := range r.plans {
		if p.PayHash == payHash {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("plan", payHash)
}

func (r *fakePlanRepo) Update(_ context.Context, p *Plan) error {
	if _, ok := r.plans[p.ID]; !ok {
		return apperror.NewNotFound("plan", p.ID.String())
	}
	r.plans[p.ID] = p
	return nil
}

func (r *fakePlanRepo) Purge(_ context.Context, planID id.ID) error {
	delete(r.plans, planID)
	return nil
}

func (r *fakePlanRepo) List(_ context.Context, vis Visibility, _ ListFilter) ([]*Plan, int64, error) {
	var out []*Plan
	for _, p := range r.plans {
		if r.visible(vis, p) {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePlanRepo) ListDue(_ context.Context, now time.Time, _ int) ([]*Plan, error) {
	var out []*Plan
	for _, p := range r.plans {
		if p.Lifecycle != LifecycleActive {
			continue
		}
		if p.PaymentOverdue(now) || p.SubscriptionOverdue(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) CountActiveByPriceTable(_ context.Context, tableID id.ID) (int, error) {
	n := 0
	for _, p := range r.plans {
		if p.PriceTableID == tableID && p.IsActive {
			n++
		}
	}
	return n, nil
}

type fakeTableRepo struct {
	tables map[id.ID]*pricetable.PriceTable
}

func (r *fakeTableRepo) Create(_ context.Context, t *pricetable.PriceTable) error {
	r.tables[t.ID] = t
	return nil
}

func (r *fakeTableRepo) GetByID(_ context.Context, tableID id.ID) (*pricetable.PriceTable, error) {
	t, ok := r.tables[tableID]
	if !ok {
		return nil, apperror.NewNotFound("price_table", tableID.String())
	}
	return t, nil
}

func (r *fakeTableRepo) Update(_ context.Context, t *pricetable.PriceTable) error {
	r.tables[t.ID] = t
	return nil
}

func (r *fakeTableRepo) Delete(_ context.Context, tableID id.ID) error {
	delete(r.tables, tableID)
	return nil
}

func (r *fakeTableRepo) List(_ context.Context, _ pricetable.ListFilter) ([]*pricetable.PriceTable, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users map[id.ID]*user.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID id.ID) (*user.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

func (r *fakeUserRepo) GetScoped(_ context.Context, scope tenant.Scope, userID id.ID) (*user.User, error) {
	u, ok := r.users[userID]
	if !ok || !(scope.Unbounded || scope.Allows(u.TenantRoot())) {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID id.ID) error {
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ tenant.Scope, _ domain.ListFilter) (domain.ListResult[*user.User], error) {
	return domain.ListResult[*user.User]{}, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type recordingAuditor struct {
	entries []audit.Entry
}

func (a *recordingAuditor) Record(_ context.Context, entry audit.Entry) error {
	a.entries = append(a.entries, entry)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- fixtures ---

type fixture struct {
	svc        *Service
	plans      *fakePlanRepo
	tables     *fakeTableRepo
	users      *fakeUserRepo
	auditor    *recordingAuditor
	table      *pricetable.PriceTable
	owner      *user.User
	customer   *user.User
	adminCtx   context.Context
	ownerCtx   context.Context
	custCtx    context.Context
	anotherCtx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	plans := newFakePlanRepo()
	tables := &fakeTableRepo{tables: map[id.ID]*pricetable.PriceTable{}}
	users := &fakeUserRepo{users: map[id.ID]*user.User{}}
	auditor := &recordingAuditor{}

	svc := NewService(plans, tables, users, passthroughTx{}, auditor, nil)

	table := pricetable.NewPriceTable("Premium", "99.99", "899.88")
	tables.tables[table.ID] = table

	owner := user.NewUser("Joana", "joana@example.com", "hash", role.Entrepreneur)
	users.users[owner.ID] = owner

	customer := user.NewUser("Carlos", "carlos@example.com", "hash", role.Customer)
	customer.EntrepreneurID = &owner.ID
	users.users[customer.ID] = customer

	return &fixture{
		svc:      svc,
		plans:    plans,
		tables:   tables,
		users:    users,
		auditor:  auditor,
		table:    table,
		owner:    owner,
		customer: customer,
		adminCtx: appctx.WithIdentity(context.Background(), &appctx.Identity{
			UserID: id.New(), Role: role.SuperAdmin,
		}),
		ownerCtx: appctx.WithIdentity(context.Background(), &appctx.Identity{
			UserID: owner.ID, Role: role.Entrepreneur,
		}),
		custCtx: appctx.WithIdentity(context.Background(), &appctx.Identity{
			UserID: customer.ID, Role: role.Customer, EntrepreneurID: &owner.ID,
		}),
		anotherCtx: appctx.WithIdentity(context.Background(), &appctx.Identity{
			UserID: id.New(), Role: role.Entrepreneur,
		}),
	}
}

// --- tests ---

func TestCreate_DerivesAmountFromPlanType(t *testing.T) {
	f := newFixture(t)

	p3, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.NoError(t, err)
	assert.Equal(t, "99.99", p3.Amount)
	assert.Equal(t, StatusPending, p3.PayStatus)
	assert.Equal(t, f.owner.ID, p3.OwnerTenant())
	assert.Equal(t, LifecycleActive, p3.Lifecycle)

	p12, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan12x,
	})
	require.NoError(t, err)
	// exact string copy, no float round-trip
	assert.Equal(t, "899.88", p12.Amount)
}

func TestCreate_AmountOverrideIsAudited(t *testing.T) {
	f := newFixture(t)
	override := "49.90"

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
		Amount:       &override,
	})
	require.NoError(t, err)
	assert.Equal(t, "49.90", p.Amount)

	require.Len(t, f.auditor.entries, 1)
	entry := f.auditor.entries[0]
	assert.Equal(t, "amount_override", entry.Action)
	assert.Equal(t, "99.99", entry.Changes["derived"])
	assert.Equal(t, "49.90", entry.Changes["explicit"])
	assert.Equal(t, f.owner.ID, entry.ActorID)
}

func TestCreate_OverrideMatchingDerivedIsNotAnOverride(t *testing.T) {
	f := newFixture(t)
	same := "99.99"

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
		Amount:       &same,
	})
	require.NoError(t, err)
	assert.Equal(t, "99.99", p.Amount)
	assert.Empty(t, f.auditor.entries)
}

func TestCreate_OverrideGatedByFlag(t *testing.T) {
	f := newFixture(t)
	flags, err := security.NewCELFlags()
	require.NoError(t, err)
	f.svc.flags = flags

	// no flag row stored: overrides work out of the box
	override := "49.90"
	_, err = f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
		Amount:       &override,
	})
	require.NoError(t, err)

	// an explicit row disables the behavior
	require.NoError(t, flags.Replace([]security.Flag{
		{Name: security.FlagAmountOverride, Enabled: false},
	}))
	_, err = f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
		Amount:       &override,
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestCreate_RejectsForeignCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.anotherCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.Error(t, err)
	// foreign customer is indistinguishable from a missing one
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_RejectsNonCustomerTarget(t *testing.T) {
	f := newFixture(t)
	collab := user.NewUser("Ana", "ana@example.com", "hash", role.Collaborator)
	collab.EntrepreneurID = &f.owner.ID
	f.users.users[collab.ID] = collab

	_, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   collab.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreate_RejectsInactiveTable(t *testing.T) {
	f := newFixture(t)
	f.table.IsActive = false

	_, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan12x,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestCreate_CustomerForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.custCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestVisibility_CustomerSeesOnlyOwnPlans(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.NoError(t, err)

	// the customer sees their plan
	got, err := f.svc.GetByID(f.custCtx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	plans, _, err := f.svc.List(f.custCtx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	// the entrepreneur who created it is not implicitly granted visibility
	_, err = f.svc.GetByID(f.ownerCtx, p.ID)
	assert.True(t, apperror.IsNotFound(err))

	plans, _, err = f.svc.List(f.ownerCtx, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, plans)

	// super-admin sees all
	plans, _, err = f.svc.List(f.adminCtx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestUpdate_IdenticalPayloadOnlyTouches(t *testing.T) {
	f := newFixture(t)
	deadline := time.Now().Add(48 * time.Hour).UTC()

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:    f.customer.ID,
		PriceTableID:  f.table.ID,
		PlanType:      pricetable.Plan3x,
		PayExpiration: &deadline,
		PayLink:       "https://pay.example.com/x",
	})
	require.NoError(t, err)

	link := "https://pay.example.com/x"
	first, err := f.svc.Update(f.custCtx, p.ID, UpdateRequest{
		PayExpiration: &deadline,
		PayLink:       &link,
	})
	require.NoError(t, err)

	before := first.UpdatedAt
	time.Sleep(time.Millisecond)

	second, err := f.svc.Update(f.custCtx, p.ID, UpdateRequest{
		PayExpiration: &deadline,
		PayLink:       &link,
	})
	require.NoError(t, err)

	assert.Equal(t, first.PayLink, second.PayLink)
	assert.Equal(t, first.PayStatus, second.PayStatus)
	assert.Equal(t, first.Amount, second.Amount)
	assert.True(t, second.UpdatedAt.After(before))
}

func TestCorrectStatus_SuperAdminOnlyAndAudited(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.NoError(t, err)
	require.NoError(t, p.MarkFailed())
	require.NoError(t, f.plans.Update(context.Background(), p))

	_, err = f.svc.CorrectStatus(f.custCtx, p.ID, StatusPending, nil)
	require.Error(t, err)

	got, err := f.svc.CorrectStatus(f.adminCtx, p.ID, StatusPending, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.PayStatus)

	require.Len(t, f.auditor.entries, 1)
	entry := f.auditor.entries[0]
	assert.Equal(t, "status_correction", entry.Action)
	assert.Equal(t, "failed", entry.Changes["from"])
	assert.Equal(t, "pending", entry.Changes["to"])
}

func TestMarkPaid_SuperAdminOnly(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.NoError(t, err)

	_, err = f.svc.MarkPaid(f.ownerCtx, p.ID, time.Now(), "tx-1")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	got, err := f.svc.MarkPaid(f.adminCtx, p.ID, time.Now(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.PayStatus)

	_, err = f.svc.MarkFailed(f.ownerCtx, p.ID)
	require.Error(t, err)
}

func TestHandleGatewayCallback(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.NoError(t, err)
	p.PayHash = "tx-abc"
	require.NoError(t, f.plans.Update(context.Background(), p))

	got, err := f.svc.HandleGatewayCallback(context.Background(), "tx-abc", true, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.PayStatus)
	assert.NotNil(t, got.PayDate)

	_, err = f.svc.HandleGatewayCallback(context.Background(), "tx-missing", true, time.Now())
	assert.True(t, apperror.IsNotFound(err))
}

func TestRetire_SoftDelete(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Retire(f.custCtx, p.ID))

	stored := f.plans.plans[p.ID]
	assert.Equal(t, LifecycleRetired, stored.Lifecycle)
	assert.False(t, stored.IsActive)
	assert.Equal(t, StatusPending, stored.PayStatus)

	// retiring again is a no-op
	require.NoError(t, f.svc.Retire(f.custCtx, p.ID))
}

func TestPurge_SuperAdminOnly(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.NoError(t, err)

	err = f.svc.Purge(f.custCtx, p.ID)
	require.Error(t, err)

	require.NoError(t, f.svc.Purge(f.adminCtx, p.ID))
	_, ok := f.plans.plans[p.ID]
	assert.False(t, ok)

	require.Len(t, f.auditor.entries, 1)
	assert.Equal(t, "purge", f.auditor.entries[0].Action)
}

func TestExpireSweep(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	past := now.Add(-time.Hour)

	paid, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:         f.customer.ID,
		PriceTableID:       f.table.ID,
		PlanType:           pricetable.Plan12x,
		PlanExpirationDate: &past,
	})
	require.NoError(t, err)
	require.NoError(t, paid.MarkPaid(past.Add(-24*time.Hour), ""))
	require.NoError(t, f.plans.Update(context.Background(), paid))

	pending, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:    f.customer.ID,
		PriceTableID:  f.table.ID,
		PlanType:      pricetable.Plan3x,
		PayExpiration: &past,
	})
	require.NoError(t, err)

	fresh, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:   f.customer.ID,
		PriceTableID: f.table.ID,
		PlanType:     pricetable.Plan3x,
	})
	require.NoError(t, err)

	res, err := f.svc.ExpireSweep(context.Background(), now, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expired)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Skipped)

	assert.Equal(t, StatusExpired, f.plans.plans[paid.ID].PayStatus)
	assert.False(t, f.plans.plans[paid.ID].IsActive)
	assert.Equal(t, StatusFailed, f.plans.plans[pending.ID].PayStatus)
	assert.Equal(t, StatusPending, f.plans.plans[fresh.ID].PayStatus)

	// one audit entry per transition
	assert.Len(t, f.auditor.entries, 2)
}

func TestExpireSweep_RunsWithoutFlagRows(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	past := now.Add(-time.Hour)

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:    f.customer.ID,
		PriceTableID:  f.table.ID,
		PlanType:      pricetable.Plan3x,
		PayExpiration: &past,
	})
	require.NoError(t, err)

	// provider with no stored rows: the sweep is on by default
	flags, err := security.NewCELFlags()
	require.NoError(t, err)
	f.svc.flags = flags

	res, err := f.svc.ExpireSweep(context.Background(), now, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, StatusFailed, f.plans.plans[p.ID].PayStatus)
}

func TestExpireSweep_FlagStagedPerTenant(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	past := now.Add(-time.Hour)

	p, err := f.svc.Create(f.ownerCtx, CreateRequest{
		CustomerID:    f.customer.ID,
		PriceTableID:  f.table.ID,
		PlanType:      pricetable.Plan3x,
		PayExpiration: &past,
	})
	require.NoError(t, err)

	flags, err := security.NewCELFlags()
	require.NoError(t, err)
	// enabled for a different tenant only
	require.NoError(t, flags.Replace([]security.Flag{
		{
			Name:      security.FlagExpirationSweep,
			Enabled:   true,
			Condition: "user_id == '" + id.New().String() + "'",
		},
	}))
	f.svc.flags = flags

	res, err := f.svc.ExpireSweep(context.Background(), now, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, StatusPending, f.plans.plans[p.ID].PayStatus)

	// open the flag for this tenant
	require.NoError(t, flags.Replace([]security.Flag{
		{
			Name:      security.FlagExpirationSweep,
			Enabled:   true,
			Condition: "user_id == '" + f.owner.ID.String() + "'",
		},
	}))

	res, err = f.svc.ExpireSweep(context.Background(), now, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, StatusFailed, f.plans.plans[p.ID].PayStatus)
}

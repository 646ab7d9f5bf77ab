package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "planora/internal/core/numerator"
)

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*int64); ok {
			*p = r.val
		}
	}
	return nil
}

// fakeQuerier counts DB round trips and hands out monotonically growing
// sequence values, mimicking the UPSERT ... RETURNING contract.
type fakeQuerier struct {
	calls   int
	current int64
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.calls++
	increment := int64(1)
	if len(args) > 1 {
		if v, ok := args[1].(int64); ok {
			increment = v
		}
	}
	q.current += increment
	return fakeRow{val: q.current}
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &fakeQuerier{}
	svc := New(q)

	cfg := corenumerator.DefaultConfig("TKT")
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	n1, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "TKT-2026-00001", n1)

	n2, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "TKT-2026-00002", n2)

	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_CachedAllocatesRanges(t *testing.T) {
	q := &fakeQuerier{}
	svc := New(q)

	cfg := corenumerator.DefaultConfig("ORD")
	opts := &corenumerator.Options{
		Strategy:  corenumerator.StrategyCached,
		RangeSize: 3,
	}
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 4; i++ {
		n, err := svc.GetNextNumber(context.Background(), cfg, opts, period)
		require.NoError(t, err)
		assert.Contains(t, n, "ORD-2026-")
	}

	// 4 numbers with a range of 3 means exactly two DB round trips.
	assert.Equal(t, 2, q.calls)
}

func TestFormatNumber(t *testing.T) {
	svc := New(&fakeQuerier{})
	period := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

	withYear := corenumerator.DefaultConfig("INV")
	assert.Equal(t, "INV-2026-00042", svc.formatNumber(withYear, period, 42))

	noYear := corenumerator.Config{Prefix: "X", PadWidth: 3}
	assert.Equal(t, "X-007", svc.formatNumber(noYear, period, 7))
}

func TestBuildKey(t *testing.T) {
	svc := New(&fakeQuerier{})
	period := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		resetPeriod string
		want        string
	}{
		{"year", "TKT_2026"},
		{"month", "TKT_2026_07"},
		{"never", "TKT"},
	}

	for _, tt := range tests {
		cfg := corenumerator.Config{Prefix: "TKT", ResetPeriod: tt.resetPeriod}
		assert.Equal(t, tt.want, svc.buildKey(cfg, period))
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("TKT-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("X-007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
	assert.Equal(t, int64(-1), ParseNumber("TKT-"))
	assert.Equal(t, int64(-1), ParseNumber("TKT-2026-abc"))
}

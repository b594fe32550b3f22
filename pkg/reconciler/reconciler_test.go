package reconciler_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agentstation/ordermatch/pkg/catalogs"
	pkgerrors "github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/ledger"
	"github.com/agentstation/ordermatch/pkg/ledger/memory"
	"github.com/agentstation/ordermatch/pkg/logging"
	"github.com/agentstation/ordermatch/pkg/match"
	"github.com/agentstation/ordermatch/pkg/reconciler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalogs.Catalog {
	return catalogs.New(
		catalogs.NewTable("가전",
			[]string{"상품명", "입고가계", "공급가(V+) 배송비 포함", "운영사"},
			[][]string{{"쿨 냉장고", "50000", "75000", "ABC상사"}},
		),
		catalogs.NewTable("가전_품절",
			[]string{"상품명", "매입", "공급가", "업체"},
			[][]string{{"품절 특가 세일 냉장고", "40000", "60000", "XYZ"}},
		),
	)
}

func testLedger() *memory.Ledger {
	return memory.New(
		[]string{"주문번호", "상품명"},
		[]string{"1001", "쿨 냉장고"},
		[]string{"1002", "품절 특가 세일 냉장고"},
		[]string{"1003", "없는 상품"},
	)
}

func decide(t *testing.T, l *memory.Ledger) []match.Decision {
	t.Helper()
	cat := testCatalog()
	var ds []match.Decision
	for row := 2; row <= 4; row++ {
		ds = append(ds, match.Decide(context.Background(), row, l.Cell(row, 2), cat))
	}
	return ds
}

func newWriter(t *testing.T, l ledger.Ledger, opts ...reconciler.Option) reconciler.Writer {
	t.Helper()
	opts = append([]reconciler.Option{reconciler.WithLogger(logging.NewNopLogger())}, opts...)
	w, err := reconciler.New(l, opts...)
	require.NoError(t, err)
	return w
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	l := testLedger()
	w := newWriter(t, l)

	n, err := w.Commit(ctx, decide(t, l))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	header, err := l.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"주문번호", "상품명",
		"매칭상품_상품명", "매칭_매입", "매칭_매출", "매칭_매입(업체)", "매칭_탭", "매칭방식",
	}, header)

	assert.Equal(t, "쿨 냉장고", l.Cell(2, 3))
	assert.Equal(t, "50000", l.Cell(2, 4))
	assert.Equal(t, "75000", l.Cell(2, 5))
	assert.Equal(t, "ABC상사", l.Cell(2, 6))
	assert.Equal(t, "가전", l.Cell(2, 7))
	assert.Equal(t, "100%일치", l.Cell(2, 8))

	assert.Equal(t, "가전_품절", l.Cell(3, 7))
	assert.Equal(t, "", l.Cell(4, 3))

	assert.Equal(t, 1, l.CallCount("write_cells"))
	assert.Equal(t, 1, l.CallCount("apply_formats"))
	assert.Equal(t, 1, l.CallCount("set_header"))
}

func TestCommitAtMostOnce(t *testing.T) {
	ctx := context.Background()
	l := testLedger()
	w := newWriter(t, l)
	ds := decide(t, l)

	n, err := w.Commit(ctx, ds)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// A manual decision for an already matched row must not overwrite it.
	manual := match.Manual(2, match.Candidate{Table: "기타", Name: "다른 냉장고"})
	n, err = w.Commit(ctx, append(ds, manual))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Equal(t, "쿨 냉장고", l.Cell(2, 3))
	assert.Equal(t, 1, l.CallCount("write_cells"))
	assert.Equal(t, 1, l.CallCount("set_header"))
}

func TestCommitSoldOutFormatting(t *testing.T) {
	ctx := context.Background()
	l := testLedger()
	w := newWriter(t, l)

	result, err := w.Reconcile(ctx, decide(t, l))
	require.NoError(t, err)
	assert.Equal(t, []int{3}, result.SoldOut)

	formats := l.Formats()
	require.Len(t, formats, 2)

	assert.Equal(t, ledger.Format{Row: 3, StartColumn: 1, EndColumn: 8, Background: ledger.LightRed}, formats[0])

	tab := formats[1]
	assert.Equal(t, 3, tab.Row)
	assert.Equal(t, 7, tab.StartColumn)
	assert.Equal(t, 7, tab.EndColumn)
	assert.Equal(t, ledger.Red, tab.Background)
	require.NotNil(t, tab.Foreground)
	assert.Equal(t, ledger.White, *tab.Foreground)
	assert.True(t, tab.Bold)
}

func TestCommitWriteFailure(t *testing.T) {
	ctx := context.Background()
	l := memory.New(
		append([]string{"상품명"}, ledger.ResultColumns()...),
		[]string{"쿨 냉장고"},
	)
	l.WriteErr = errors.New("quota exceeded")
	w := newWriter(t, l)

	n, err := w.Commit(ctx, []match.Decision{match.Decide(ctx, 2, "쿨 냉장고", testCatalog())})
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, pkgerrors.IsCommitFailure(err))

	var commitErr *pkgerrors.CommitError
	require.True(t, errors.As(err, &commitErr))
	assert.Equal(t, []int{2}, commitErr.Rows)
	assert.ErrorIs(t, err, l.WriteErr)
	assert.Equal(t, 0, l.CallCount("apply_formats"))

	// Retrying after the store recovers commits the row exactly once.
	l.WriteErr = nil
	n, err = w.Commit(ctx, []match.Decision{match.Decide(ctx, 2, "쿨 냉장고", testCatalog())})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCommitFormattingFailure(t *testing.T) {
	ctx := context.Background()
	l := testLedger()
	l.FormatErr = errors.New("bad range")

	tl := logging.NewTestLogger(t)
	w := newWriter(t, l, reconciler.WithLogger(tl.Logger))

	result, err := w.Reconcile(ctx, decide(t, l))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count())
	require.Error(t, result.FormattingErr)
	assert.True(t, errors.Is(result.FormattingErr, pkgerrors.ErrFormattingFailed))
	assert.True(t, tl.Contains("Sold-out formatting failed"))
	assert.Contains(t, result.Summary(), "formatting failed")
}

func TestCommitReadFailure(t *testing.T) {
	l := testLedger()
	l.ReadErr = errors.New("offline")
	w := newWriter(t, l)

	n, err := w.Commit(context.Background(), decide(t, l))
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, l.CallCount("write_cells"))
}

func TestReconcileLogsSkippedRows(t *testing.T) {
	ctx := context.Background()
	l := testLedger()
	_, err := newWriter(t, l).Commit(ctx, decide(t, l))
	require.NoError(t, err)

	tl := logging.NewTestLogger(t)
	w := newWriter(t, l, reconciler.WithLogger(tl.Logger))
	result, err := w.Reconcile(ctx, decide(t, l))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, result.Skipped)

	var skipped []string
	for _, line := range tl.Lines() {
		if strings.Contains(line, "Row already matched") {
			skipped = append(skipped, line)
		}
	}
	require.Len(t, skipped, 2)
	assert.Contains(t, skipped[0], `"row":2`)
	assert.Contains(t, skipped[1], `"row":3`)
}

func TestCommitIgnoresInvalidDecisions(t *testing.T) {
	ctx := context.Background()
	l := testLedger()
	w := newWriter(t, l)
	good := match.Decide(ctx, 2, "쿨 냉장고", testCatalog())

	result, err := w.Reconcile(ctx, []match.Decision{
		{Row: 3, Method: match.MethodNone},
		{Row: 1, Candidate: good.Candidate, Method: match.MethodExactName},
		good,
		{Row: 2, Candidate: good.Candidate, Method: match.MethodManual},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, result.Committed)
	assert.ElementsMatch(t, []int{3, 1, 2}, result.Ignored)
	assert.Equal(t, "100%일치", l.Cell(2, 8))
	assert.Equal(t, "매칭상품_상품명", l.Cell(1, 3))
}

func TestCommitNothingToDo(t *testing.T) {
	l := testLedger()
	w := newWriter(t, l)

	n, err := w.Commit(context.Background(), []match.Decision{{Row: 2, Method: match.MethodNone}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, l.CallCount("header"))
}

func TestCommitDryRun(t *testing.T) {
	ctx := context.Background()
	l := testLedger()
	w := newWriter(t, l, reconciler.WithDryRun(true))

	result, err := w.Reconcile(ctx, decide(t, l))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count())
	assert.True(t, result.HeaderExtended)
	assert.Contains(t, result.Summary(), "Dry run")

	assert.Equal(t, 0, l.CallCount("set_header"))
	assert.Equal(t, 0, l.CallCount("write_cells"))
}

func TestMatchLogEntries(t *testing.T) {
	ctx := context.Background()
	l := testLedger()
	w := newWriter(t, l)

	result, err := w.Reconcile(ctx, decide(t, l))
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, reconciler.Entry{
		Row: 2, Product: "쿨 냉장고", Table: "가전", Method: match.MethodExactName, SupplyTier: "exact",
	}, result.Entries[0])
}

func TestNewValidation(t *testing.T) {
	_, err := reconciler.New(nil)
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = reconciler.New(testLedger(), reconciler.WithSoldOutMarker(""))
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestCustomSoldOutMarker(t *testing.T) {
	l := testLedger()
	w := newWriter(t, l, reconciler.WithSoldOutMarker("가전"))

	result, err := w.Reconcile(context.Background(), decide(t, l))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, result.SoldOut)
}

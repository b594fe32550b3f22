package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agentstation/ordermatch/pkg/ledger"
	"github.com/agentstation/ordermatch/pkg/ledger/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	ctx := context.Background()
	l := memory.New([]string{"상품명"}, []string{"냉장고"}, []string{"세탁기"})

	header, err := l.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"상품명"}, header)

	require.NoError(t, l.SetHeader(ctx, []string{"상품명", "매칭방식"}))
	require.NoError(t, l.WriteCells(ctx, []ledger.CellUpdate{{Row: 3, Column: 2, Value: "100%일치"}}))

	rows, err := l.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"세탁기", "100%일치"}, rows[1])
	assert.Equal(t, "100%일치", l.Cell(3, 2))
	assert.Equal(t, "", l.Cell(2, 2))

	t.Run("write beyond last row grows grid", func(t *testing.T) {
		require.NoError(t, l.WriteCells(ctx, []ledger.CellUpdate{{Row: 5, Column: 1, Value: "x"}}))
		assert.Equal(t, "x", l.Cell(5, 1))
	})

	t.Run("invalid batch writes nothing", func(t *testing.T) {
		err := l.WriteCells(ctx, []ledger.CellUpdate{
			{Row: 2, Column: 1, Value: "changed"},
			{Row: 0, Column: 1, Value: "bad"},
		})
		assert.Error(t, err)
		assert.Equal(t, "냉장고", l.Cell(2, 1))
	})
}

func TestLedgerFailureInjection(t *testing.T) {
	ctx := context.Background()
	l := memory.New([]string{"상품명"})
	boom := errors.New("boom")

	l.FormatErr = boom
	assert.ErrorIs(t, l.ApplyFormats(ctx, []ledger.Format{{Row: 2}}), boom)
	assert.Empty(t, l.Formats())

	l.WriteErr = boom
	assert.ErrorIs(t, l.WriteCells(ctx, nil), boom)

	l.ReadErr = boom
	_, err := l.Rows(ctx)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1, l.CallCount("write_cells"))
	assert.Equal(t, 1, l.CallCount("apply_formats"))
}

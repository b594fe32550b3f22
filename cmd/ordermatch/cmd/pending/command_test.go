package pending_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordermatch/cmd/ordermatch/cmd/pending"
	"github.com/agentstation/ordermatch/internal/appcontext"
	pkgerrors "github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/ledger"
	"github.com/agentstation/ordermatch/pkg/ledger/memory"
	"github.com/agentstation/ordermatch/pkg/orders"
)

func testLedger() *memory.Ledger {
	return memory.New(
		[]string{"주문번호", "상품명", ledger.ColumnMatchedName},
		[]string{"1001", "쿨 냉장고", "쿨 냉장고"},
		[]string{"1002", "삼성 세탁기", ""},
		[]string{"1003", "", ""},
		[]string{"1004", "  LG 건조기 ", ""},
	)
}

func run(t *testing.T, l ledger.Ledger, format string, args ...string) (string, error) {
	t.Helper()
	app := &appcontext.Mock{
		LedgerFunc: func(context.Context) (ledger.Ledger, error) { return l, nil },
		Format:     format,
	}
	cmd := pending.NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPending(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []int
	}{
		{name: "pending only", want: []int{3, 5}},
		{name: "all lines", args: []string{"--all"}, want: []int{2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, testLedger(), "json", tt.args...)
			require.NoError(t, err)

			var lines []orders.Line
			require.NoError(t, json.Unmarshal([]byte(out), &lines))
			rows := make([]int, 0, len(lines))
			for _, l := range lines {
				rows = append(rows, l.Row)
			}
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestPendingTable(t *testing.T) {
	out, err := run(t, testLedger(), "table")
	require.NoError(t, err)
	assert.Contains(t, out, "삼성 세탁기")
	assert.Contains(t, out, "LG 건조기")
	assert.NotContains(t, out, "1001")
}

func TestPendingMissingOrderColumn(t *testing.T) {
	l := memory.New([]string{"주문번호", "비고"}, []string{"1", "x"})

	_, err := run(t, l, "json")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidationError(err))
}

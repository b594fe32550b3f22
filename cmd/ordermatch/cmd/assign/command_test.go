package assign_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordermatch/cmd/ordermatch/cmd/assign"
	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/pkg/catalogs"
	pkgerrors "github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/ledger"
	"github.com/agentstation/ordermatch/pkg/ledger/memory"
)

func testCatalog() *catalogs.Catalog {
	return catalogs.New(
		catalogs.NewTable("가전",
			[]string{"상품명", "입고가계", "공급가(V+) 배송비 포함", "운영사"},
			[][]string{
				{"쿨 냉장고 화이트", "52000", "78000", "ABC상사"},
				{"쿨 냉장고 실버", "53000", "79000", "ABC상사"},
			},
		),
		catalogs.NewTable("가전_품절",
			[]string{"상품명", "매입", "공급가", "업체"},
			[][]string{{"쿨 냉장고 블랙", "40000", "60000", "XYZ"}},
		),
	)
}

func setup() (*memory.Ledger, *appcontext.Mock) {
	l := memory.New(
		[]string{"주문번호", "상품명"},
		[]string{"1001", "쿨 냉장고"},
		[]string{"1002", "삼성 세탁기"},
	)
	return l, &appcontext.Mock{
		CatalogFunc: func(context.Context) (*catalogs.Catalog, error) { return testCatalog(), nil },
		LedgerFunc:  func(context.Context) (ledger.Ledger, error) { return l, nil },
		Format:      "table",
	}
}

func run(t *testing.T, app appcontext.Interface, args ...string) (string, error) {
	t.Helper()
	cmd := assign.NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAssign(t *testing.T) {
	tests := []struct {
		name        string
		pick        string
		wantProduct string
		wantTable   string
		wantSoldOut bool
	}{
		{name: "first candidate", pick: "1", wantProduct: "쿨 냉장고 화이트", wantTable: "가전"},
		{name: "second candidate", pick: "2", wantProduct: "쿨 냉장고 실버", wantTable: "가전"},
		{name: "sold-out candidate", pick: "3", wantProduct: "쿨 냉장고 블랙", wantTable: "가전_품절", wantSoldOut: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, app := setup()

			out, err := run(t, app, "--row", "2", "--pick", tt.pick)
			require.NoError(t, err)
			assert.Contains(t, out, "Committed 1 rows")

			assert.Equal(t, tt.wantProduct, l.Cell(2, 3))
			assert.Equal(t, tt.wantTable, l.Cell(2, 7))
			assert.Equal(t, "수동매칭", l.Cell(2, 8))
			assert.Equal(t, tt.wantSoldOut, len(l.Formats()) > 0)
		})
	}
}

func TestAssignQueryOverride(t *testing.T) {
	l, app := setup()

	_, err := run(t, app, "--row", "3", "--query", "냉장고 블랙", "--pick", "1")
	require.NoError(t, err)
	assert.Equal(t, "쿨 냉장고 블랙", l.Cell(3, 3))
}

func TestAssignAlreadyMatched(t *testing.T) {
	l, app := setup()

	_, err := run(t, app, "--row", "2", "--pick", "1")
	require.NoError(t, err)

	out, err := run(t, app, "--row", "2", "--pick", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "1 already matched")
	assert.Equal(t, "쿨 냉장고 화이트", l.Cell(2, 3))
}

func TestAssignDryRun(t *testing.T) {
	l, app := setup()

	out, err := run(t, app, "--row", "2", "--pick", "1", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run")
	assert.Zero(t, l.CallCount("write_cells"))
}

func TestAssignErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{name: "pick out of range", args: []string{"--row", "2", "--pick", "9"}, check: pkgerrors.IsValidationError},
		{name: "pick zero", args: []string{"--row", "2", "--pick", "0"}, check: pkgerrors.IsValidationError},
		{name: "no candidates", args: []string{"--row", "3", "--pick", "1"}, check: pkgerrors.IsValidationError},
		{name: "bad row", args: []string{"--row", "abc", "--pick", "1"}, check: pkgerrors.IsValidationError},
		{name: "missing row", args: []string{"--row", "7", "--pick", "1"}, check: pkgerrors.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, app := setup()
			_, err := run(t, app, tt.args...)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.Zero(t, l.CallCount("write_cells"))
		})
	}
}

func TestAssignRequiresFlags(t *testing.T) {
	_, app := setup()
	_, err := run(t, app, "--row", "2")
	assert.Error(t, err)
}

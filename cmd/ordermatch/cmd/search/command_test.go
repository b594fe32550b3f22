package search_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordermatch/cmd/ordermatch/cmd/search"
	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/pkg/catalogs"
	pkgerrors "github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/ledger"
	"github.com/agentstation/ordermatch/pkg/ledger/memory"
)

func testCatalog() *catalogs.Catalog {
	return catalogs.New(
		catalogs.NewTable("가전",
			[]string{"상품명", "모델명", "입고가계", "공급가(V+) 배송비 포함", "운영사"},
			[][]string{
				{"쿨 냉장고", "RF-500", "50000", "75000", "ABC상사"},
				{"삼성 세탁기", "WM-10", "300000", "350000", "삼성"},
			},
		),
	)
}

func newMock(format string) *appcontext.Mock {
	l := memory.New(
		[]string{"주문번호", "상품명"},
		[]string{"1001", "쿨 냉장고"},
	)
	return &appcontext.Mock{
		CatalogFunc: func(context.Context) (*catalogs.Catalog, error) { return testCatalog(), nil },
		LedgerFunc:  func(context.Context) (ledger.Ledger, error) { return l, nil },
		Format:      format,
	}
}

// candidate mirrors the JSON shape of match.Candidate.
type candidate struct {
	Table      string  `json:"table"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

func run(t *testing.T, app appcontext.Interface, args ...string) (string, error) {
	t.Helper()
	cmd := search.NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		want  []string
		score float64
	}{
		{name: "text argument", args: []string{"쿨 냉장고"}, want: []string{"쿨 냉장고"}, score: 100},
		{name: "ledger row", args: []string{"--row", "2"}, want: []string{"쿨 냉장고"}, score: 100},
		{name: "zero threshold lists everything", args: []string{"냉장고", "--threshold", "0"}, want: []string{"쿨 냉장고", "삼성 세탁기"}, score: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, newMock("json"), tt.args...)
			require.NoError(t, err)

			var got []candidate
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			names := make([]string, 0, len(got))
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, tt.score, got[0].Similarity)
		})
	}
}

func TestSearchTop(t *testing.T) {
	out, err := run(t, newMock("json"), "냉장고", "--threshold", "0", "--top", "1")
	require.NoError(t, err)

	var got []candidate
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 1)
}

func TestSearchWideTable(t *testing.T) {
	out, err := run(t, newMock("table"), "쿨 냉장고", "--wide")
	require.NoError(t, err)
	assert.Contains(t, out, "RF-500")
	assert.Contains(t, out, "ABC상사")
	assert.Contains(t, out, "25000")
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{name: "no query", args: nil, check: pkgerrors.IsValidationError},
		{name: "text and row", args: []string{"x", "--row", "2"}, check: pkgerrors.IsValidationError},
		{name: "header row", args: []string{"--row", "1"}, check: pkgerrors.IsValidationError},
		{name: "unknown row", args: []string{"--row", "9"}, check: pkgerrors.IsNotFound},
		{name: "threshold out of range", args: []string{"x", "--threshold", "101"}, check: pkgerrors.IsValidationError},
		{name: "negative top", args: []string{"x", "--top=-1"}, check: pkgerrors.IsValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, newMock("json"), tt.args...)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

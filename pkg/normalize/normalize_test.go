package normalize_test

import (
	"testing"

	"github.com/agentstation/ordermatch/pkg/normalize"
	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n", ""},
		{"ascii case fold", "  Cool-Fridge X100 ", "coolfridgex100"},
		{"hangul kept", "쿨 냉장고", "쿨냉장고"},
		{"punctuation stripped", "공급가(V+) 배송비 포함", "공급가v배송비포함"},
		{"jamo composed", "\u1100\u1161\u11a8", "각"},
		{"non target script dropped", "냉장고 ÉCO 冷蔵庫", "냉장고co"},
		{"digits", "[SAMSUNG] RF-85 2024", "samsungrf852024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.String(tt.in))
		})
	}
}

func TestStringIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"쿨 냉장고",
		"  LG 오브제 컬렉션 (화이트) ",
		"공급가(V+) 배송비 포함",
		"\u1100\u1161\u11a8 ABC-123",
		"매칭_매입(업체)",
	}
	for _, in := range inputs {
		once := normalize.String(in)
		assert.Equal(t, once, normalize.String(once), "input %q", in)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, normalize.Equal("Product Name", "product_name"))
	assert.True(t, normalize.Equal("상품 명", "상품명"))
	assert.False(t, normalize.Equal("상품명", "제품명"))
}

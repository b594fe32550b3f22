package ledger

// Result columns appended to the ledger header by reconciliation.
const (
	ColumnMatchedName   = "매칭상품_상품명"
	ColumnPurchasePrice = "매칭_매입"
	ColumnSupplyPrice   = "매칭_매출"
	ColumnVendor        = "매칭_매입(업체)"
	ColumnTable         = "매칭_탭"
	ColumnMethod        = "매칭방식"
)

// ResultColumns returns the result columns in the order they are appended.
func ResultColumns() []string {
	return []string{
		ColumnMatchedName,
		ColumnPurchasePrice,
		ColumnSupplyPrice,
		ColumnVendor,
		ColumnTable,
		ColumnMethod,
	}
}

// EnsureColumns returns header extended with every name it lacks, appended in
// the given order, and whether anything was added. Existing positions never change.
func EnsureColumns(header []string, names ...string) ([]string, bool) {
	out := make([]string, len(header), len(header)+len(names))
	copy(out, header)
	changed := false
	for _, n := range names {
		if ColumnIndex(out, n) == 0 {
			out = append(out, n)
			changed = true
		}
	}
	return out, changed
}

package columns

// Field is a logical catalog field and the header aliases that may supply it.
type Field struct {
	Key     string
	Aliases []string
	Fuzzy   bool
}

// Resolve resolves f against schema, using the fuzzy tier only if f opts in.
func (f Field) Resolve(schema []string) Resolution {
	return Resolve(schema, f.Aliases, f.Fuzzy)
}

// Logical catalog fields.
var (
	ProductName = Field{
		Key:     "product_name",
		Aliases: []string{"상품명", "제품명", "Product", "Product Name"},
	}
	Model = Field{
		Key:     "model",
		Aliases: []string{"모델명", "모델", "Model", "Model Name"},
	}
	PurchasePrice = Field{
		Key:     "purchase_price",
		Aliases: []string{"입고가계", "매입"},
	}
	SupplyPrice = Field{
		Key:     "supply_price",
		Aliases: []string{"공급가(V+) 배송비 포함", "공급가", "매출"},
		Fuzzy:   true,
	}
	Vendor = Field{
		Key:     "vendor",
		Aliases: []string{"운영사", "공급사", "업체"},
	}
	Image = Field{
		Key:     "image",
		Aliases: []string{"대표 1", "이미지", "Image"},
	}
	Option = Field{
		Key:     "option",
		Aliases: []string{"옵션", "Option", "규격"},
	}
)

// Fields lists every logical field in display order.
func Fields() []Field {
	return []Field{ProductName, Model, PurchasePrice, SupplyPrice, Vendor, Image, Option}
}

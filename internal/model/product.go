package model

// Product is a store document describing one sellable item. Price is in
// cents.
type Product struct {
	ID       string `json:"_id"`
	Type     string `json:"_type"`
	Title    string `json:"title"`
	SKU      string `json:"sku"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
}

const ProductDocType = "product"

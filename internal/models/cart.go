package models

// CartItem represents one line item in the cart
type CartItem struct {
	ProductID string `json:"productId"` // Catalog product id
	VariantID string `json:"variantId"` // Variant (pack size) id
	Quantity  int    `json:"quantity"`  // Units of this variant
}

// CartPreferences holds user-set delivery preferences
type CartPreferences struct {
	Instructions string  `json:"instructions"` // Free-text delivery instructions
	Tip          float64 `json:"tip"`          // Rider tip amount
	NeedBag      bool    `json:"needBag"`      // Whether a carry bag is requested
}

// VariantPrice is the price pair for one product variant
type VariantPrice struct {
	MRP   float64 `json:"mrp"`   // Printed maximum retail price
	Price float64 `json:"price"` // Selling price
}

// CartTotals is the derived pricing breakdown for the current cart.
// It is recomputed from line items on demand and never stored.
type CartTotals struct {
	ItemTotalMRP     float64 `json:"itemTotalMrp"`     // Sum of MRP x quantity
	ItemTotalSelling float64 `json:"itemTotalSelling"` // Sum of selling price x quantity
	DiscountOnMRP    float64 `json:"discountOnMrp"`    // MRP total minus selling total
	DeliveryFee      float64 `json:"deliveryFee"`      // Flat fee, waived above the free-delivery threshold
	HandlingFee      float64 `json:"handlingFee"`      // Flat fee, waived during no-fee promotions
	Tip              float64 `json:"tip"`              // Rider tip
	ToPay            float64 `json:"toPay"`            // Selling total plus fees plus tip
	TotalSavings     float64 `json:"totalSavings"`     // MRP discount plus waived fees
	ItemCount        int     `json:"itemCount"`        // Total units across line items
}

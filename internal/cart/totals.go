package cart

import "zipto/internal/models"

const (
	// FreeDeliveryThreshold is the selling subtotal above which
	// delivery is free.
	FreeDeliveryThreshold = 99.0

	deliveryFeeAmount = 30.0
	handlingFeeAmount = 10.0
)

// PriceKey builds the lookup key for a product variant's price pair.
func PriceKey(productID, variantID string) string {
	return productID + "_" + variantID
}

// CalculateTotals derives the pricing breakdown for a set of line
// items. Items whose variant is missing from the price table contribute
// nothing, including to the item count. Fee savings only count fees
// that would otherwise have applied.
func CalculateTotals(items []models.CartItem, prices map[string]models.VariantPrice, preferences models.CartPreferences, noFeesActive bool) models.CartTotals {
	var totals models.CartTotals

	for _, item := range items {
		price, found := prices[PriceKey(item.ProductID, item.VariantID)]
		if !found {
			continue
		}
		quantity := float64(item.Quantity)
		totals.ItemTotalMRP += price.MRP * quantity
		totals.ItemTotalSelling += price.Price * quantity
		totals.ItemCount += item.Quantity
	}

	totals.DiscountOnMRP = totals.ItemTotalMRP - totals.ItemTotalSelling

	if totals.ItemTotalSelling < FreeDeliveryThreshold {
		totals.DeliveryFee = deliveryFeeAmount
	}
	if !noFeesActive {
		totals.HandlingFee = handlingFeeAmount
	}
	totals.Tip = preferences.Tip
	totals.ToPay = totals.ItemTotalSelling + totals.DeliveryFee + totals.HandlingFee + totals.Tip

	var deliverySavings, handlingSavings float64
	if totals.ItemTotalSelling >= FreeDeliveryThreshold {
		deliverySavings = deliveryFeeAmount
	}
	if noFeesActive {
		handlingSavings = handlingFeeAmount
	}
	totals.TotalSavings = totals.DiscountOnMRP + deliverySavings + handlingSavings

	return totals
}

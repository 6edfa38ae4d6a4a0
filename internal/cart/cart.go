package cart

import (
	"sync"

	"zipto/internal/models"
)

// Cart holds the line items and delivery preferences for one shopper.
// All methods are safe for concurrent use.
type Cart struct {
	mu           sync.Mutex
	items        []models.CartItem
	preferences  models.CartPreferences
	noFeesActive bool
}

func New(noFeesActive bool) *Cart {
	return &Cart{
		preferences:  defaultPreferences(),
		noFeesActive: noFeesActive,
	}
}

func defaultPreferences() models.CartPreferences {
	return models.CartPreferences{NeedBag: true}
}

// AddItem adds one unit of a variant, merging into an existing line.
func (c *Cart) AddItem(productID, variantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].VariantID == variantID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, models.CartItem{ProductID: productID, VariantID: variantID, Quantity: 1})
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the
// line.
func (c *Cart) UpdateQuantity(productID, variantID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(productID, variantID)
		return
	}
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].VariantID == variantID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// RemoveItem drops a line entirely regardless of quantity.
func (c *Cart) RemoveItem(productID, variantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID, variantID)
}

func (c *Cart) removeLocked(productID, variantID string) {
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ProductID == productID && item.VariantID == variantID {
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept
}

// Clear empties the cart and resets preferences to their defaults.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.preferences = defaultPreferences()
}

// ItemQuantity returns the quantity of one variant, zero if absent.
func (c *Cart) ItemQuantity(productID, variantID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range c.items {
		if item.ProductID == productID && item.VariantID == variantID {
			return item.Quantity
		}
	}
	return 0
}

// Items returns a copy of the current line items.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartItem(nil), c.items...)
}

func (c *Cart) Preferences() models.CartPreferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preferences
}

func (c *Cart) SetInstructions(instructions string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preferences.Instructions = instructions
}

func (c *Cart) SetTip(tip float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preferences.Tip = tip
}

func (c *Cart) SetNeedBag(needBag bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preferences.NeedBag = needBag
}

// Totals computes the pricing breakdown against the given price table.
func (c *Cart) Totals(prices map[string]models.VariantPrice) models.CartTotals {
	c.mu.Lock()
	items := append([]models.CartItem(nil), c.items...)
	preferences := c.preferences
	noFees := c.noFeesActive
	c.mu.Unlock()

	return CalculateTotals(items, prices, preferences, noFees)
}

// Summary condenses the cart into the context block sent with chat
// messages.
func (c *Cart) Summary(prices map[string]models.VariantPrice) models.CartSummary {
	totals := c.Totals(prices)
	return models.CartSummary{
		ItemCount: totals.ItemCount,
		Total:     totals.ToPay,
	}
}

package cart

import (
	"sync"

	"github.com/GhadiSaab/savedfeast-client/internal/models"
)

// Cart aggregates line items in memory, one per meal id, preserving
// insertion order. It is purely client-side state with no persistence.
type Cart struct {
	mu    sync.Mutex
	items []models.CartItem
}

func New() *Cart {
	return &Cart{}
}

// Add increments the quantity when the meal is already in the cart,
// otherwise appends a new line with quantity 1.
func (c *Cart) Add(meal models.Meal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == meal.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, models.CartItem{
		ID:         meal.ID,
		Name:       meal.Title,
		Price:      meal.CurrentPrice,
		Quantity:   1,
		Image:      meal.Image,
		Restaurant: meal.RestaurantName,
	})
}

// Remove drops the line for the given meal id. Absent ids are a no-op.
func (c *Cart) Remove(id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

func (c *Cart) removeLocked(id uint) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity for the given meal id. A quantity of
// zero or less removes the line. Absent ids are a no-op. There is no upper
// bound; the server enforces stock on order creation.
func (c *Cart) UpdateQuantity(id uint, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(id)
		return
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = uint(quantity)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Total is the sum of price×quantity over all lines.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for i := range c.items {
		total += c.items[i].Price * float64(c.items[i].Quantity)
	}
	return total
}

// ItemCount is the sum of quantities, not the number of lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for i := range c.items {
		count += int(c.items[i].Quantity)
	}
	return count
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

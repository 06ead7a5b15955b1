package models

import "time"

type User struct {
	ID        uint     `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Address   string   `json:"address,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

type Meal struct {
	ID             uint     `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	CurrentPrice   float64  `json:"current_price"`
	OriginalPrice  *float64 `json:"original_price,omitempty"`
	Quantity       int      `json:"quantity"`
	Image          string   `json:"image,omitempty"`
	RestaurantName string   `json:"restaurant_name,omitempty"`
	Category       string   `json:"category,omitempty"`
	IsFavorite     bool     `json:"is_favorite"`
}

type MealFilters struct {
	Categories  []string `json:"categories"`
	Restaurants []string `json:"restaurants"`
	MaxPrice    float64  `json:"max_price"`
}

type CartItem struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   uint    `json:"quantity"`
	Image      string  `json:"image,omitempty"`
	Restaurant string  `json:"restaurant,omitempty"`
}

type OrderStatus string

const (
	OrderStatusPending               OrderStatus = "PENDING"
	OrderStatusAccepted              OrderStatus = "ACCEPTED"
	OrderStatusReadyForPickup        OrderStatus = "READY_FOR_PICKUP"
	OrderStatusCompleted             OrderStatus = "COMPLETED"
	OrderStatusCancelledByCustomer   OrderStatus = "CANCELLED_BY_CUSTOMER"
	OrderStatusCancelledByRestaurant OrderStatus = "CANCELLED_BY_RESTAURANT"
	OrderStatusExpired               OrderStatus = "EXPIRED"
)

// Terminal reports whether no further transition can follow the status.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelledByCustomer, OrderStatusCancelledByRestaurant, OrderStatusExpired:
		return true
	}
	return false
}

type Order struct {
	ID                uint         `json:"id"`
	UserID            uint         `json:"user_id"`
	TotalAmount       float64      `json:"total_amount"`
	Status            OrderStatus  `json:"status"`
	PickupTime        *time.Time   `json:"pickup_time,omitempty"`
	PickupWindowStart *time.Time   `json:"pickup_window_start,omitempty"`
	PickupWindowEnd   *time.Time   `json:"pickup_window_end,omitempty"`
	Notes             string       `json:"notes,omitempty"`
	PaymentMethod     string       `json:"payment_method,omitempty"`
	PickupCode        string       `json:"pickup_code,omitempty"`
	CreatedAt         *time.Time   `json:"created_at,omitempty"`
	AcceptedAt        *time.Time   `json:"accepted_at,omitempty"`
	ReadyAt           *time.Time   `json:"ready_at,omitempty"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	CancelledAt       *time.Time   `json:"cancelled_at,omitempty"`
	ExpiredAt         *time.Time   `json:"expired_at,omitempty"`
	Items             []OrderItem  `json:"items,omitempty"`
	Events            []OrderEvent `json:"events,omitempty"`
}

// OrderItem carries the meal snapshot taken at order creation. Price is the
// unit price at that moment and does not follow later meal price changes.
type OrderItem struct {
	ID       uint         `json:"id"`
	MealID   uint         `json:"meal_id"`
	Meal     MealSnapshot `json:"meal"`
	Quantity uint         `json:"quantity"`
	Price    float64      `json:"price"`
}

type MealSnapshot struct {
	ID             uint    `json:"id"`
	Title          string  `json:"title"`
	Price          float64 `json:"price"`
	Image          string  `json:"image,omitempty"`
	RestaurantName string  `json:"restaurant_name,omitempty"`
}

type OrderEvent struct {
	ID        uint        `json:"id"`
	OrderID   uint        `json:"order_id"`
	Status    OrderStatus `json:"status"`
	Note      string      `json:"note,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type ClaimCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Page[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

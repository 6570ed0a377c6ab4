// Package warehouse holds the target-side demo types. Values are meant to
// be created through their constructors, which validate and derive fields.
package warehouse

import (
	"errors"
	"strings"
	"time"
)

// MaxTags is the number of tags an order keeps.
const MaxTags = 4

// Address represents a shipping address.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// NewAddress normalizes the country code.
func NewAddress(street, city, postalCode, country string) Address {
	return Address{
		Street:     street,
		City:       city,
		PostalCode: postalCode,
		Country:    strings.ToUpper(country),
	}
}

// Customer represents a store customer.
type Customer struct {
	ID      uint     `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Address *Address `json:"address,omitempty"`
	Active  bool     `json:"active"`
}

// NewCustomer requires an email address.
func NewCustomer(id uint, name, email string, address *Address, active bool) (*Customer, error) {
	if email == "" {
		return nil, errors.New("customer email is required")
	}

	return &Customer{
		ID:      id,
		Name:    name,
		Email:   strings.ToLower(email),
		Address: address,
		Active:  active,
	}, nil
}

// NewGuestCustomer creates an inactive customer known only by email.
func NewGuestCustomer(email string) (*Customer, error) {
	return NewCustomer(0, "", email, nil, false)
}

// Product represents a sellable item.
type Product struct {
	ID    uint   `json:"id"`
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price int64  `json:"price"` // in cents
	Stock *int   `json:"stock,omitempty"`
}

// NewProduct creates a product; a nil stock means untracked inventory.
func NewProduct(id uint, sku, name string, price int64, stock *int) Product {
	return Product{ID: id, SKU: sku, Name: name, Price: price, Stock: stock}
}

// OrderItem is a line item within an order.
type OrderItem struct {
	ProductID  uint  `json:"product_id"`
	Quantity   int   `json:"quantity"`
	UnitPrice  int64 `json:"unit_price"`  // price at time of purchase (in cents)
	TotalPrice int64 `json:"total_price"` // UnitPrice * Quantity
}

// NewOrderItem derives the total price.
func NewOrderItem(productID uint, quantity int, unitPrice int64) OrderItem {
	return OrderItem{
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice * int64(quantity),
	}
}

// Order represents a customer's purchase.
type Order struct {
	ID          uint            `json:"id"`
	CustomerID  uint            `json:"customer_id"`
	Status      string          `json:"status"` // e.g. "pending", "paid", "shipped", "cancelled"
	TotalAmount int64           `json:"total_amount"`
	Items       []OrderItem     `json:"items"`
	Tags        [MaxTags]string `json:"tags"`
	PlacedAt    time.Time       `json:"placed_at"`
}

// NewOrder lowercases the status and rejects orders without items.
func NewOrder(
	id, customerID uint,
	status string,
	totalAmount int64,
	items []OrderItem,
	tags [MaxTags]string,
	placedAt time.Time,
) (*Order, error) {
	if len(items) == 0 {
		return nil, errors.New("order has no items")
	}

	return &Order{
		ID:          id,
		CustomerID:  customerID,
		Status:      strings.ToLower(status),
		TotalAmount: totalAmount,
		Items:       items,
		Tags:        tags,
		PlacedAt:    placedAt,
	}, nil
}

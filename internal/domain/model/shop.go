package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Barber is a staff profile. Email is the join key to production events.
type Barber struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	Unit           string          `json:"unit,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
	ProfilePicture string          `json:"profilePicture,omitempty"`
	Achievements   []string        `json:"achievements"`
}

// DefaultBarberName is given to barbers created at sign-up.
const DefaultBarberName = "New Barber"

// Product is an inventory item sold over the counter.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Stock     int             `json:"stock"`
}

// CatalogItem is a priced service offered by the shop.
type CatalogItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Role separates the two surfaces of the application.
type Role string

// Roles.
const (
	RoleBarber  Role = "barber"
	RoleManager Role = "manager"
)

// User is a sign-in account.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

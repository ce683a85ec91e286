package models

import (
	"encoding/json"
	"time"

	"github.com/GTDGit/pricelist_api/internal/jalali"
)

// Product is a catalog row joined with its brand and logo.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID               int       `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	PartnerName      string    `db:"partner_name" json:"partnerName"`
	RegistrationDate Date      `db:"registration_date" json:"registrationDate"`
	Price            float64   `db:"price" json:"price"`
	ProfitPercentage float64   `db:"profit_percentage" json:"profitPercentage"`
	Description      *string   `db:"description" json:"description,omitempty"`
	BrandID          int       `db:"brand_id" json:"brandId"`
	LogoID           int       `db:"logo_id" json:"logoId"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`

	Brand Brand `db:"brand" json:"brand"`
	Logo  Logo  `db:"logo" json:"logo"`
}

// SalePrice is the price shown to customers: price marked up by the profit percentage.
func (p *Product) SalePrice() float64 {
	return SalePrice(p.Price, p.ProfitPercentage)
}

// SalePrice computes price * (1 + profitPercentage/100).
func SalePrice(price, profitPercentage float64) float64 {
	return price * (1 + profitPercentage/100)
}

// RegistrationDateJalali formats the registration date in the Persian calendar.
func (p *Product) RegistrationDateJalali() string {
	return jalali.FromTime(p.RegistrationDate.Time).String()
}

type productAlias Product

// MarshalJSON adds the derived display fields to the stored ones.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		productAlias
		SalePrice              float64 `json:"salePrice"`
		RegistrationDateJalali string  `json:"registrationDateJalali"`
		PriceDisplay           string  `json:"priceDisplay"`
		SalePriceDisplay       string  `json:"salePriceDisplay"`
	}{
		productAlias:           productAlias(p),
		SalePrice:              p.SalePrice(),
		RegistrationDateJalali: p.RegistrationDateJalali(),
		PriceDisplay:           FormatRial(p.Price),
		SalePriceDisplay:       FormatRial(p.SalePrice()),
	})
}

package condominium

import "time"

// Condominium groups listings that belong to the same development.
// Price range is stored in centavos.
type Condominium struct {
	ID           string
	Name         string
	Builder      string
	Street       string
	District     string
	City         string
	State        string
	DeliveryDate *time.Time
	Amenities    []string
	PriceMin     *int64
	PriceMax     *int64
	CreatedAt    time.Time
}

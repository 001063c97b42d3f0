package property

import "time"

type Type string

const (
	TypeHouse      Type = "casa"
	TypeApartment  Type = "apartamento"
	TypeLand       Type = "terreno"
	TypeCommercial Type = "comercial"
)

func (t Type) Valid() bool {
	switch t {
	case TypeHouse, TypeApartment, TypeLand, TypeCommercial:
		return true
	}
	return false
}

type Status string

const (
	StatusAvailable Status = "disponivel"
	StatusReserved  Status = "reservado"
	StatusSold      Status = "vendido"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold:
		return true
	}
	return false
}

// Listing is a property offered for sale. Price is stored in centavos.
type Listing struct {
	ID            string
	Code          string
	Title         string
	Description   string
	Type          Type
	Status        Status
	Street        string
	District      string
	City          string
	State         string
	Price         int64
	Bedrooms      int
	Bathrooms     int
	ParkingSpaces int
	AreaM2        float64
	CondominiumID *string
	PhotoURLs     []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Filters struct {
	Type          Type
	Status        Status
	City          string
	District      string
	PriceMin      int64
	PriceMax      int64
	Bedrooms      int
	CondominiumID string
	Page          int
	PageSize      int
	SortKey       string
	SortOrder     string
}

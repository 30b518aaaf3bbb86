package seed

import "github.com/shopspring/decimal"

type priced struct {
	Name  string
	Price decimal.Decimal
}

type stocked struct {
	Name      string
	BasePrice decimal.Decimal
}

// The shop every run sets up.
var (
	shopServices = []priced{
		{Name: "Corte", Price: decimal.RequireFromString("15")},
		{Name: "Barba", Price: decimal.RequireFromString("10")},
		{Name: "Corte e Barba", Price: decimal.RequireFromString("22")},
		{Name: "Coloração", Price: decimal.RequireFromString("35")},
		{Name: "Corte Infantil", Price: decimal.RequireFromString("12.50")},
	}
	shopExtras = []priced{
		{Name: "Lavagem", Price: decimal.RequireFromString("3")},
		{Name: "Sobrancelha", Price: decimal.RequireFromString("5")},
		{Name: "Toalha Quente", Price: decimal.RequireFromString("4.50")},
	}
	shopProducts = []stocked{
		{Name: "Pomada Modeladora", BasePrice: decimal.RequireFromString("12.30")},
		{Name: "Óleo para Barba", BasePrice: decimal.RequireFromString("18.45")},
		{Name: "Champô", BasePrice: decimal.RequireFromString("9.84")},
	}
)

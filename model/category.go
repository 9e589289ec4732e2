package model

type Category int

const (
	CategoryExpired Category = iota
	CategoryExpiringSoon
	CategoryHealthy
	CategoryPermanent
)

// Categories lists all categories in report order.
var Categories = []Category{CategoryExpired, CategoryExpiringSoon, CategoryHealthy, CategoryPermanent}

func (c Category) String() string {
	switch c {
	case CategoryExpired:
		return "Expired"
	case CategoryExpiringSoon:
		return "Expiring Soon"
	case CategoryHealthy:
		return "Healthy"
	case CategoryPermanent:
		return "No Expiration"
	}
	return "Unknown"
}

package domain

import "github.com/google/uuid"

// ProductType is the purchasable variant of a product.
type ProductType string

const (
	ProductPack              ProductType = "pack"
	ProductSubscription      ProductType = "subscription"
	ProductSubscriptionCombo ProductType = "subscription-combo"
)

// ProductTypes lists catalog groups in display order.
var ProductTypes = []ProductType{
	ProductPack,
	ProductSubscription,
	ProductSubscriptionCombo,
}

// Label returns the display name for a product group.
func (t ProductType) Label() string {
	switch t {
	case ProductPack:
		return "Packs"
	case ProductSubscription:
		return "Subscripcions"
	case ProductSubscriptionCombo:
		return "Subscripcions combo"
	default:
		return string(t)
	}
}

// RecurringInterval is the billing interval of a subscription product.
type RecurringInterval string

const (
	IntervalMonth RecurringInterval = "month"
	IntervalYear  RecurringInterval = "year"
)

// Recurring describes the entitlement a product grants. The fields that
// apply depend on Type:
//   - pack: IncludesReformer, Count
//   - subscription: IncludesReformer, AmountPerWeek, IntervalCount, Interval
//   - subscription-combo: AmountReformerPerWeek, AmountOtherPerWeek,
//     IntervalCount, Interval
type Recurring struct {
	Type                  ProductType       `json:"type"`
	IncludesReformer      bool              `json:"includesReformer,omitempty"`
	Count                 int               `json:"count,omitempty"`
	AmountPerWeek         int               `json:"amountPerWeek,omitempty"`
	AmountReformerPerWeek int               `json:"amountReformerPerWeek,omitempty"`
	AmountOtherPerWeek    int               `json:"amountOtherPerWeek,omitempty"`
	IntervalCount         int               `json:"intervalCount,omitempty"`
	Interval              RecurringInterval `json:"interval,omitempty"`
}

// Product is a purchasable offering from the catalog.
type Product struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Active           bool       `json:"active"`
	Price            int        `json:"price"` // cents
	StringifiedPrice string     `json:"stringifiedPrice"`
	Recurring        *Recurring `json:"recurring"`
}

// ProductRef is the minimal product shape embedded in reservations and
// eligibility responses.
type ProductRef struct {
	ID   uuid.UUID   `json:"id"`
	Name string      `json:"name,omitempty"`
	Type ProductType `json:"type,omitempty"`
}

// ProductList is the paginated catalog response, grouped by product type.
type ProductList struct {
	Items           map[ProductType][]Product `json:"items"`
	Total           int                       `json:"total"`
	Page            int                       `json:"page"`
	PerPage         int                       `json:"perPage"`
	HasNextPage     bool                      `json:"hasNextPage"`
	HasPreviousPage bool                      `json:"hasPreviousPage"`
	NextPage        *int                      `json:"nextPage"`
	PreviousPage    *int                      `json:"previousPage"`
	TotalPages      int                       `json:"totalPages"`
}

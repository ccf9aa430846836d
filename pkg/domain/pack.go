package domain

import "github.com/google/uuid"

// PackProduct is the product shape embedded in a pack.
type PackProduct struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	IncludesReformer bool             `json:"includesReformer"`
	Recurring        *Recurring       `json:"recurring"`
	Reservations     []ReservationRef `json:"reservations"`
}

// Pack is a prepaid bundle of classes with a remaining-session counter.
// The counter is owned server-side; the client never derives it.
type Pack struct {
	ID                uuid.UUID   `json:"id"`
	RemainingSessions int         `json:"remainingSessions"`
	Product           PackProduct `json:"product"`
}

// CoversReformer reports whether the pack's product admits reformer
// classes.
func (p Pack) CoversReformer() bool {
	return p.Product.Recurring != nil &&
		p.Product.Recurring.Type == ProductPack &&
		p.Product.Recurring.IncludesReformer
}

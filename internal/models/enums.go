package models

// Hotel is one of the properties served by the spa.
type Hotel string

const (
	HotelGoldenPark    Hotel = "Hotel Golden Park"
	HotelVilageInn     Hotel = "Vilage Inn"
	HotelThermasResort Hotel = "Thermas Resort"
)

// Hotels lists every known property in display order.
func Hotels() []Hotel {
	return []Hotel{HotelGoldenPark, HotelVilageInn, HotelThermasResort}
}

func (h Hotel) Valid() bool {
	switch h {
	case HotelGoldenPark, HotelVilageInn, HotelThermasResort:
		return true
	}
	return false
}

// PointOfSale is the channel a booking was sold through.
type PointOfSale string

const (
	PointOfSaleReception   PointOfSale = "Recepção"
	PointOfSaleReservation PointOfSale = "Reserva"
)

// PointsOfSale lists every sales channel in display order.
func PointsOfSale() []PointOfSale {
	return []PointOfSale{PointOfSaleReception, PointOfSaleReservation}
}

func (p PointOfSale) Valid() bool {
	switch p {
	case PointOfSaleReception, PointOfSaleReservation:
		return true
	}
	return false
}

// Status is the booking lifecycle status.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusDone
}

// Toggle flips pending and done.
func (s Status) Toggle() Status {
	if s == StatusDone {
		return StatusPending
	}
	return StatusDone
}

// Role selects what a session may see and change.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
	RoleMasseur      Role = "masseur"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleReceptionist, RoleMasseur:
		return true
	}
	return false
}

// Session is the caller context passed into services.
// ProviderID is set only for masseur sessions.
type Session struct {
	Role       Role   `json:"role"`
	Name       string `json:"name"`
	ProviderID string `json:"provider_id,omitempty"`
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

func (s Session) IsMasseur() bool { return s.Role == RoleMasseur }

// CanManageBookings reports whether the session may create, edit or delete bookings.
func (s Session) CanManageBookings() bool {
	return s.Role == RoleAdmin || s.Role == RoleReceptionist
}

// Owns reports whether the booking belongs to the masseur behind the session.
func (s Session) Owns(b *Booking) bool {
	return s.IsMasseur() && s.ProviderID != "" && b.ProviderID == s.ProviderID
}

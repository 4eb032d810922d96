package enums

// PaymentKind distinguishes one-time bookings from subscription renewals.
type PaymentKind string

const (
	PaymentKindBooking             PaymentKind = "booking"
	PaymentKindSubscriptionRenewal PaymentKind = "subscription_renewal"
)

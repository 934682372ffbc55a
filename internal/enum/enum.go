package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending        = "PENDING"
	OrderStatusConfirmed      = "CONFIRMED"
	OrderStatusOutForDelivery = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      = "DELIVERED"
	OrderStatusCancelled      = "CANCELLED"
)

const (
	ComplaintStatusOpen     = "OPEN"
	ComplaintStatusResolved = "RESOLVED"
)

// ── Roles (CHECK constrained in DB) ──

const (
	UserRoleCustomer = "CUSTOMER"
	UserRoleAdmin    = "ADMIN"
)

// ── Websocket event types ──

const (
	EventOrderUpdated = "order.updated"
)

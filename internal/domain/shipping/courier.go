package shipping

import (
	"github.com/shopspring/decimal"
)

// PaymentMethod is the payment mode of a shipment order
type PaymentMethod string

const (
	PaymentPrepaid        PaymentMethod = "prepaid"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

// CourierOption is one quoted shipping choice for an order.
// Options are fetched fresh per rate query and never persisted here.
type CourierOption struct {
	CourierCompanyID int             `json:"courier_company_id"`
	CourierName      string          `json:"courier_name"`
	Rate             decimal.Decimal `json:"rate"`
	EstimatedDays    int             `json:"estimated_delivery_days"`
}

// ShipmentOrder carries the order context couriers are scored against
type ShipmentOrder struct {
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	WeightKg        float64         `json:"weight"`
	ShippingAddress string          `json:"shipping_address"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// IsCOD returns true for cash-on-delivery orders
func (o ShipmentOrder) IsCOD() bool {
	return o.PaymentMethod == PaymentCashOnDelivery
}

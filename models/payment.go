package models

// CreateIntentRequest is the body for POST /api/payments/create-intent
type CreateIntentRequest struct {
	ServiceID   string            `json:"serviceId" validate:"required"`
	ServiceName string            `json:"serviceName" validate:"required"`
	Amount      float64           `json:"amount" validate:"required,gt=0"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PaymentIntentResult is returned to the client to complete checkout.
type PaymentIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// RefundResult describes a refund issued at the payment provider.
type RefundResult struct {
	RefundID string  `json:"refundId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

package dto

import (
	"time"
)

// Plan create/update payloads bind directly to plan.CreateRequest and
// plan.UpdateRequest in the domain package; only the action payloads that
// have no domain counterpart live here.

// CorrectStatusRequest is an administrative payment-state correction.
type CorrectStatusRequest struct {
	Status  string     `json:"status" binding:"required"`
	PayDate *time.Time `json:"payDate,omitempty"`
}

// MarkPaidRequest confirms payment manually.
type MarkPaidRequest struct {
	PayDate *time.Time `json:"payDate,omitempty"`
	PayHash string     `json:"payHash,omitempty"`
}

// GatewayCallbackRequest is the payment provider confirmation payload.
type GatewayCallbackRequest struct {
	PayHash   string     `json:"payHash" binding:"required"`
	Succeeded bool       `json:"succeeded"`
	PayDate   *time.Time `json:"payDate,omitempty"`
}

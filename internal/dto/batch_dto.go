package dto

// ─── Requests ────────────────────────────────────────────────────────────────

type AddBatchRequest struct {
	// ProductID may reference a provisional id for products not yet saved.
	ProductID  string `json:"product_id" validate:"required,uuid"`
	Expiration string `json:"expiration" validate:"required"` // YYYY-MM-DD
	// AddedAt is optional; defaults to now. RFC 3339.
	AddedAt  *string `json:"added_at"  validate:"omitempty"`
	Quantity int     `json:"quantity"  validate:"required,gt=0"`
}

// UpdateBatchRequest replaces expiration/quantity only. SoldOut has its own
// toggle endpoint and is never changed through an edit.
type UpdateBatchRequest struct {
	Expiration string `json:"expiration" validate:"required"`
	Quantity   int    `json:"quantity"   validate:"min=0"` // 0 = fully consumed
}

// ─── Responses ───────────────────────────────────────────────────────────────

type BatchResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Expiration string `json:"expiration"` // YYYY-MM-DD
	AddedAt    string `json:"added_at"`
	Quantity   int    `json:"quantity"`
	SoldOut    bool   `json:"sold_out"`
	Deleted    bool   `json:"deleted"`
}

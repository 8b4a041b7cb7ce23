package handler

import "time"

// --- Request types ---

// uploadBatchForm carries the non-file fields of a multipart upload.
type uploadBatchForm struct {
	DeliverySpeed      string `form:"delivery_speed"       json:"delivery_speed"       validate:"omitempty,oneof=standard express instant"`
	PickupAddress      string `form:"pickup_address"       json:"pickup_address"       validate:"max=255"`
	PickupContactName  string `form:"pickup_contact_name"  json:"pickup_contact_name"  validate:"max=128"`
	PickupContactPhone string `form:"pickup_contact_phone" json:"pickup_contact_phone" validate:"omitempty,phone"`
}

type listBatchesQuery struct {
	Status string `query:"status" json:"status"`
	Page   int    `query:"page"   json:"page"  validate:"min=0"`
	Limit  int    `query:"limit"  json:"limit" validate:"min=0"`
}

type updateBatchStatusRequest struct {
	Status        string   `json:"status"         validate:"required"`
	TrackingCodes []string `json:"tracking_codes" validate:"omitempty,dive,required"`
}

// --- Response types ---

type rejectionResponse struct {
	Row    int               `json:"row"`
	Code   string            `json:"code"`
	Reason string            `json:"reason"`
	Data   map[string]string `json:"data"`
}

type batchItemResponse struct {
	TrackingCode    string                      `json:"tracking_code"`
	RowNumber       int                         `json:"row_number"`
	ReceiverName    string                      `json:"receiver_name"`
	PhoneNumber     string                      `json:"phone_number"`
	DeliveryAddress string                      `json:"delivery_address"`
	PostalCode      string                      `json:"postal_code"`
	WeightClass     string                      `json:"weight_class"`
	Valid           bool                        `json:"valid"`
	RejectionReason string                      `json:"rejection_reason,omitempty"`
	DistanceKm      string                      `json:"distance_km"`
	Fees            feesResponse                `json:"fees"`
	Status          string                      `json:"status"`
	StatusHistory   []statusHistoryItemResponse `json:"status_history,omitempty"`
}

type paymentInfoResponse struct {
	Method    string `json:"method,omitempty"`
	Status    string `json:"status"`
	Reference string `json:"reference,omitempty"`
}

type batchSummaryResponse struct {
	TrackingCode     string              `json:"tracking_code"`
	Status           string              `json:"status"`
	DeliverySpeed    string              `json:"delivery_speed"`
	Pickup           pickupResponse      `json:"pickup"`
	TotalShipments   int                 `json:"total_shipments"`
	ValidShipments   int                 `json:"valid_shipments"`
	InvalidShipments int                 `json:"invalid_shipments"`
	Totals           feesResponse        `json:"totals"`
	Payment          paymentInfoResponse `json:"payment"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Links            links               `json:"_links"`
}

type batchResponse struct {
	batchSummaryResponse
	Rejections    []rejectionResponse         `json:"rejections"`
	Items         []batchItemResponse         `json:"items"`
	StatusHistory []statusHistoryItemResponse `json:"status_history"`
}

type listBatchesResponse struct {
	Items      []batchSummaryResponse `json:"items"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

type updateBatchStatusResponse struct {
	Updated int           `json:"updated"`
	Skipped int           `json:"skipped"`
	Batch   batchResponse `json:"batch"`
}

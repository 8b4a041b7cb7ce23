package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// Money amounts are rendered as fixed two-decimal strings.
type feesResponse struct {
	BaseFee     string `json:"base_fee"`
	DistanceFee string `json:"distance_fee"`
	SpeedFee    string `json:"speed_fee"`
	AddonsFee   string `json:"addons_fee"`
	TotalFee    string `json:"total_fee"`
}

type pickupResponse struct {
	Address      string `json:"address"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

type statusHistoryItemResponse struct {
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type links struct {
	Self     string `json:"self"`
	Tracking string `json:"tracking,omitempty"`
	Payment  string `json:"payment,omitempty"`
}

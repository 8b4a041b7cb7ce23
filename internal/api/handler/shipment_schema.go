package handler

import "time"

// --- Request types ---

type quoteRequest struct {
	PickupAddress   string   `json:"pickup_address"   validate:"required,max=255"`
	DeliveryAddress string   `json:"delivery_address" validate:"required,max=255"`
	WeightClass     string   `json:"weight_class"     validate:"required"`
	DeliverySpeed   string   `json:"delivery_speed"   validate:"omitempty,oneof=standard express instant"`
	Addons          []string `json:"addons"           validate:"omitempty,max=3,dive,required"`
}

type createShipmentRequest struct {
	quoteRequest
	PickupContactName  string `json:"pickup_contact_name"  validate:"max=128"`
	PickupContactPhone string `json:"pickup_contact_phone" validate:"omitempty,phone"`
	ReceiverName       string `json:"receiver_name"        validate:"required,max=128"`
	ReceiverPhone      string `json:"receiver_phone"       validate:"required,phone"`
	PostalCode         string `json:"postal_code"          validate:"max=16"`
}

// --- Response types ---

type quoteResponse struct {
	PickupAddress     string       `json:"pickup_address"`
	DeliveryAddress   string       `json:"delivery_address"`
	WeightClass       string       `json:"weight_class"`
	DeliverySpeed     string       `json:"delivery_speed"`
	DistanceKm        string       `json:"distance_km"`
	Addons            []string     `json:"addons"`
	Fees              feesResponse `json:"fees"`
	Currency          string       `json:"currency"`
	EstimatedDelivery string       `json:"estimated_delivery"`
}

type shipmentResponse struct {
	TrackingCode    string                      `json:"tracking_code"`
	Status          string                      `json:"status"`
	Pickup          pickupResponse              `json:"pickup"`
	ReceiverName    string                      `json:"receiver_name"`
	ReceiverPhone   string                      `json:"receiver_phone"`
	DeliveryAddress string                      `json:"delivery_address"`
	PostalCode      string                      `json:"postal_code,omitempty"`
	WeightClass     string                      `json:"weight_class"`
	DeliverySpeed   string                      `json:"delivery_speed"`
	Addons          []string                    `json:"addons"`
	DistanceKm      string                      `json:"distance_km"`
	Fees            feesResponse                `json:"fees"`
	StatusHistory   []statusHistoryItemResponse `json:"status_history"`
	CreatedAt       time.Time                   `json:"created_at"`
	Links           links                       `json:"_links"`
}

type createShipmentResponse struct {
	Shipment shipmentResponse `json:"shipment"`
	Quote    quoteResponse    `json:"quote"`
}

type pricingResponse struct {
	Currency        string                       `json:"currency"`
	WeightClasses   []string                     `json:"weight_classes"`
	BaseFees        map[string]map[string]string `json:"base_fees"`
	FreeDistanceKm  string                       `json:"free_distance_km"`
	PerKmRate       string                       `json:"per_km_rate"`
	SpeedFees       map[string]string            `json:"speed_fees"`
	AddonFees       map[string]string            `json:"addon_fees"`
	DeliveryWindows map[string]string            `json:"delivery_windows"`
}

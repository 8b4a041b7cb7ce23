package handler

import (
	"strings"
	"testing"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		req  any
		want string
	}{
		{
			name: "bad phone",
			req: &createShipmentRequest{quoteRequest: quoteRequest{
				PickupAddress: "Calgary", DeliveryAddress: "Airdrie", WeightClass: "1-5kg",
			}, ReceiverName: "Dana", ReceiverPhone: "call me"},
			want: "receiver_phone must be a phone number",
		},
		{
			name: "unknown speed",
			req:  &quoteRequest{PickupAddress: "Calgary", DeliveryAddress: "Airdrie", WeightClass: "1-5kg", DeliverySpeed: "overnight"},
			want: "delivery_speed must be one of: standard, express, instant",
		},
		{
			name: "too many addons",
			req: &quoteRequest{PickupAddress: "Calgary", DeliveryAddress: "Airdrie", WeightClass: "1-5kg",
				Addons: []string{"a", "b", "c", "d"}},
			want: "addons accepts at most 3 entries",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want %q", err, tt.want)
			}
		})
	}

	ok := &createShipmentRequest{quoteRequest: quoteRequest{
		PickupAddress: "Calgary", DeliveryAddress: "Airdrie", WeightClass: "1-5kg",
	}, ReceiverName: "Dana", ReceiverPhone: "+1 (403) 555-0100"}
	if err := v.Validate(ok); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

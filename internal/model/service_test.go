package model

import "testing"

func TestLoyaltyPoints(t *testing.T) {
	tests := []struct {
		service ServiceType
		want    int
	}{
		{ServiceHaircut, 10},
		{ServiceManicure, 8},
		{ServiceMassage, 20},
		{ServiceHairColor, 25},
		{ServiceOther, 10},
		{ServiceType("UNKNOWN"), 10},
	}
	for _, tt := range tests {
		if got := tt.service.LoyaltyPoints(); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.service, got, tt.want)
		}
	}
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		name   string
		visits int
		spent  float64
		want   ClientCategory
	}{
		{"fresh client", 0, 0, CategoryNew},
		{"two visits", 2, 100, CategoryNew},
		{"third visit", 3, 90, CategoryRegular},
		{"spend without visits stays regular", 5, 600, CategoryRegular},
		{"vip threshold", 10, 500, CategoryVIP},
		{"visits without spend stay regular", 25, 400, CategoryRegular},
		{"premium threshold", 20, 1000, CategoryPremium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryFor(tt.visits, tt.spent); got != tt.want {
				t.Errorf("visits=%d spent=%.0f: got %s, want %s", tt.visits, tt.spent, got, tt.want)
			}
		})
	}
}

func TestDefaultDurations(t *testing.T) {
	if got := ServiceHairColor.DefaultDurationMinutes(); got != 120 {
		t.Errorf("haircolor default: got %d", got)
	}
	if got := ServiceType("UNKNOWN").DefaultDurationMinutes(); got != 30 {
		t.Errorf("unknown default: got %d", got)
	}
}

func TestEstimatedCost(t *testing.T) {
	// base price at the default duration
	if got := ServiceHaircut.EstimatedCost(30); got != 30 {
		t.Errorf("base cost: got %.2f", got)
	}
	// doubling the duration doubles the estimate
	if got := ServiceHaircut.EstimatedCost(60); got != 60 {
		t.Errorf("scaled cost: got %.2f", got)
	}
}

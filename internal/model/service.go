package model

// ServiceType enumerates the salon services clients can book.
type ServiceType string

const (
	ServiceHaircut   ServiceType = "HAIRCUT"
	ServiceManicure  ServiceType = "MANICURE"
	ServicePedicure  ServiceType = "PEDICURE"
	ServiceFacial    ServiceType = "FACIAL"
	ServiceMassage   ServiceType = "MASSAGE"
	ServiceHairColor ServiceType = "HAIRCOLOR"
	ServiceHairStyle ServiceType = "HAIRSTYLE"
	ServiceMakeup    ServiceType = "MAKEUP"
	ServiceWaxing    ServiceType = "WAXING"
	ServiceOther     ServiceType = "OTHER"
)

var serviceDurations = map[ServiceType]int{
	ServiceHaircut:   30,
	ServiceManicure:  45,
	ServicePedicure:  60,
	ServiceFacial:    60,
	ServiceMassage:   60,
	ServiceHairColor: 120,
	ServiceHairStyle: 45,
	ServiceMakeup:    60,
	ServiceWaxing:    30,
	ServiceOther:     30,
}

var serviceLoyaltyPoints = map[ServiceType]int{
	ServiceHaircut:   10,
	ServiceManicure:  8,
	ServicePedicure:  12,
	ServiceFacial:    15,
	ServiceMassage:   20,
	ServiceHairColor: 25,
	ServiceHairStyle: 12,
	ServiceMakeup:    15,
	ServiceWaxing:    10,
	ServiceOther:     10,
}

var serviceBaseCosts = map[ServiceType]float64{
	ServiceHaircut:   30,
	ServiceManicure:  25,
	ServicePedicure:  35,
	ServiceFacial:    65,
	ServiceMassage:   75,
	ServiceHairColor: 100,
	ServiceHairStyle: 45,
	ServiceMakeup:    55,
	ServiceWaxing:    30,
	ServiceOther:     40,
}

func (s ServiceType) Valid() bool {
	_, ok := serviceDurations[s]
	return ok
}

// DefaultDurationMinutes is used when a booking does not specify a duration.
func (s ServiceType) DefaultDurationMinutes() int {
	if d, ok := serviceDurations[s]; ok {
		return d
	}
	return 30
}

// LoyaltyPoints earned by a client when this service completes.
func (s ServiceType) LoyaltyPoints() int {
	if p, ok := serviceLoyaltyPoints[s]; ok {
		return p
	}
	return 10
}

// EstimatedCost scales the base price by how far the booked duration
// deviates from the service default.
func (s ServiceType) EstimatedCost(durationMinutes int) float64 {
	base, ok := serviceBaseCosts[s]
	if !ok {
		base = serviceBaseCosts[ServiceOther]
	}
	def := s.DefaultDurationMinutes()
	if durationMinutes > 0 && durationMinutes != def {
		return base * float64(durationMinutes) / float64(def)
	}
	return base
}

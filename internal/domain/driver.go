package domain

// DriverAvailability represents the current availability of a driver.
type DriverAvailability string

const (
	DriverAvailable  DriverAvailability = "AVAILABLE"
	DriverOnDelivery DriverAvailability = "ON_DELIVERY"
	DriverOffline    DriverAvailability = "OFFLINE"
)

// PremiumStatus represents a driver's premium membership.
// Premium drivers get first refusal on new orders.
type PremiumStatus string

const (
	PremiumActive   PremiumStatus = "ACTIVE"
	PremiumInactive PremiumStatus = "INACTIVE"
)

// ComplianceStatus represents a driver's document-verification state.
type ComplianceStatus string

const (
	ComplianceApproved ComplianceStatus = "APPROVED"
	CompliancePending  ComplianceStatus = "PENDING"
	ComplianceRejected ComplianceStatus = "REJECTED"
)

// Driver represents a fuel driver. The dispatch core treats drivers as
// read-mostly matching input.
type Driver struct {
	ID           string
	Name         string
	Phone        string
	Availability DriverAvailability
	Premium      PremiumStatus
	Compliance   ComplianceStatus
}

// Eligible reports whether the driver may receive dispatch offers.
func (d *Driver) Eligible() bool {
	return d.Availability == DriverAvailable && d.Compliance == ComplianceApproved
}

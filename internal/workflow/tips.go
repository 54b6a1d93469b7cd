package workflow

import "github.com/sbclc/sbclc/internal/milestones"

var tipCatalog = map[milestones.ServiceType][]string{
	milestones.ServiceImport: {
		"Confirm the bill of lading and commercial invoice match before filing the import entry.",
		"Lodge customs declarations early; assessment delays compound into storage charges.",
		"Track free-time expiry at the port and pre-book trucking before the cargo is released.",
	},
	milestones.ServiceDomesticTrucking: {
		"Verify truck availability and driver documents a day before the scheduled pickup.",
		"Capture proof of delivery immediately at drop-off so billing is not held up.",
		"Flag route or weather disruptions on the booking as soon as the driver reports them.",
	},
	milestones.ServiceDomesticForwarding: {
		"Reconfirm vessel or flight cut-offs with the carrier after booking placement.",
		"Keep the consignee informed of transshipment changes to avoid disputed charges.",
		"File delivery receipts against the booking the same day the shipment arrives.",
	},
}

// Tips returns the static guidance list for a service type. Unknown types get
// an empty list rather than an error; the assistant view stays best-effort.
func Tips(serviceType milestones.ServiceType) []string {
	tips := tipCatalog[serviceType]
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}

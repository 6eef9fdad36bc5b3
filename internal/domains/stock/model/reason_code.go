package model

// ReasonCode categorizes why a movement happened. Sensitive codes require a
// free-text justification in Notes.
type ReasonCode string

const (
	ReasonSale                ReasonCode = "sale"
	ReasonTransferOut         ReasonCode = "transfer_out"
	ReasonDamageTransport     ReasonCode = "damage_transport"
	ReasonDamageHandling      ReasonCode = "damage_handling"
	ReasonDamageStorage       ReasonCode = "damage_storage"
	ReasonTheft               ReasonCode = "theft"
	ReasonLossUnknown         ReasonCode = "loss_unknown"
	ReasonSampleClient        ReasonCode = "sample_client"
	ReasonSampleShowroom      ReasonCode = "sample_showroom"
	ReasonMarketingEvent      ReasonCode = "marketing_event"
	ReasonPhotography         ReasonCode = "photography"
	ReasonRDTesting           ReasonCode = "rd_testing"
	ReasonPrototype           ReasonCode = "prototype"
	ReasonQualityControl      ReasonCode = "quality_control"
	ReasonReturnSupplier      ReasonCode = "return_supplier"
	ReasonReturnCustomer      ReasonCode = "return_customer"
	ReasonWarrantyReplacement ReasonCode = "warranty_replacement"
	ReasonInventoryCorrection ReasonCode = "inventory_correction"
	ReasonWriteOff            ReasonCode = "write_off"
	ReasonObsolete            ReasonCode = "obsolete"
	ReasonPurchaseReception   ReasonCode = "purchase_reception"
	ReasonReturnFromClient    ReasonCode = "return_from_client"
	ReasonFoundInventory      ReasonCode = "found_inventory"
	ReasonManualAdjustment    ReasonCode = "manual_adjustment"
)

var validReasonCodes = map[ReasonCode]struct{}{
	ReasonSale: {}, ReasonTransferOut: {}, ReasonDamageTransport: {},
	ReasonDamageHandling: {}, ReasonDamageStorage: {}, ReasonTheft: {},
	ReasonLossUnknown: {}, ReasonSampleClient: {}, ReasonSampleShowroom: {},
	ReasonMarketingEvent: {}, ReasonPhotography: {}, ReasonRDTesting: {},
	ReasonPrototype: {}, ReasonQualityControl: {}, ReasonReturnSupplier: {},
	ReasonReturnCustomer: {}, ReasonWarrantyReplacement: {},
	ReasonInventoryCorrection: {}, ReasonWriteOff: {}, ReasonObsolete: {},
	ReasonPurchaseReception: {}, ReasonReturnFromClient: {},
	ReasonFoundInventory: {}, ReasonManualAdjustment: {},
}

func (r ReasonCode) IsValid() bool {
	_, ok := validReasonCodes[r]
	return ok
}

// RequiresJustification reports whether this code demands non-empty notes.
func (r ReasonCode) RequiresJustification() bool {
	switch r {
	case ReasonTheft, ReasonLossUnknown, ReasonDamageTransport, ReasonWriteOff:
		return true
	}
	return false
}

package constants

// DocType is the canonical document classification label.
type DocType string

// Stable values (store these exact strings in DB).
const (
	DocTypeReferral       DocType = "referral"
	DocTypeOrder          DocType = "order"
	DocTypeProgressNote   DocType = "progress_note"
	DocTypeCorrespondence DocType = "correspondence"
	DocTypeInvoice        DocType = "invoice" // legacy non-clinical label
	DocTypeReceipt        DocType = "receipt" // legacy non-clinical label
	DocTypeReport         DocType = "report"  // legacy non-clinical label
	DocTypeOther          DocType = "other"
)

// DocTypes lists every label a classifier may emit.
var DocTypes = []DocType{
	DocTypeReferral,
	DocTypeOrder,
	DocTypeProgressNote,
	DocTypeCorrespondence,
	DocTypeInvoice,
	DocTypeReceipt,
	DocTypeReport,
	DocTypeOther,
}

// IsDocType reports whether s is one of the closed label set.
func IsDocType(s string) bool {
	for _, t := range DocTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

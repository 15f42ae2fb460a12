package indigo

// repairScanLimit is how far into the body the stray comma may appear.
// The bug always manifests at the very start of the listing array.
const repairScanLimit = 4

// RepairListing strips the stray leading comma Indigo emits in a listing
// response when the first listed item has been marked non-discoverable.
//
// Two malformed shapes are recognised within the first few characters:
//
//	[,{"name":...}]   comma immediately after the opening bracket
//	,{"name":...}]    comma in place of the opening bracket
//
// Well-formed bodies are returned unchanged.
func RepairListing(body []byte) []byte {
	sawBracket := false
	limit := repairScanLimit
	if len(body) < limit {
		limit = len(body)
	}

	for i := 0; i < limit; i++ {
		switch body[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			if sawBracket {
				return body
			}
			sawBracket = true
		case ',':
			repaired := make([]byte, 0, len(body))
			repaired = append(repaired, body[:i]...)
			if !sawBracket {
				repaired = append(repaired, '[')
			}
			repaired = append(repaired, body[i+1:]...)
			return repaired
		default:
			return body
		}
	}
	return body
}

// Package receipts issues receipt numbers and QR values for traceable entities.
//
// Field agents scan the QR printed on a lot receipt; the value round-trips
// through the verification cache so a scan can be checked offline-first
// without hitting the primary database.
package receipts

import (
	"fmt"
	"strings"
	"time"
)

// Prefixes for receipt numbers by entity kind.
const (
	PrefixLot = "LOT"
	PrefixTax = "TAX"
)

const qrNamespace = "MADAVOLA"

// Number builds a human-readable receipt number: PREFIX-YYYYMMDD-<id suffix>.
func Number(prefix string, entityID string, now time.Time) string {
	suffix := entityID
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), strings.ToUpper(suffix))
}

// QRValue builds the scannable payload for an entity.
func QRValue(kind string, identifier string) string {
	return fmt.Sprintf("%s:%s:%s", qrNamespace, kind, identifier)
}

// ParseQRValue splits a scanned payload back into kind and identifier.
func ParseQRValue(value string) (kind, identifier string, ok bool) {
	parts := strings.SplitN(value, ":", 3)
	if len(parts) != 3 || parts[0] != qrNamespace {
		return "", "", false
	}
	return parts[1], parts[2], true
}

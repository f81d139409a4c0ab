package payload

import "regexp"

// Carrier-style contact addresses: a numeric account followed by a routing
// domain. The private-chat form is preferred over the group form when a
// payload carries both.
var (
	privateAddrRe = regexp.MustCompile(`\d{5,}@s\.whatsapp\.net`)
	groupAddrRe   = regexp.MustCompile(`[\d-]{5,}@g\.us`)
)

// extractCarrierIdentity scans every decoded string for a contact address
// and uses it as the routing identifier.
func extractCarrierIdentity(ev *Event) {
	var private, group string
	for _, s := range Strings(ev.Root, nil) {
		if private == "" {
			private = privateAddrRe.FindString(s)
		}
		if group == "" {
			group = groupAddrRe.FindString(s)
		}
		if private != "" && group != "" {
			break
		}
	}

	switch {
	case private != "":
		ev.SenderIdentifier = private
	case group != "":
		ev.SenderIdentifier = group
	}
}

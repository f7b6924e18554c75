package render

import (
	"net"

	"github.com/wanderber/wanderber/errs"
)

// renderBinaryIP renders a 4-byte IPv4 or 16-byte IPv6 address octet string
// in its standard textual form.
func renderBinaryIP(value []byte) (string, error) {
	switch len(value) {
	case net.IPv4len:
		return net.IP(value).String(), nil
	case net.IPv6len:
		return net.IP(value).String(), nil
	default:
		return "", errs.ErrInterpretOutOfRange
	}
}

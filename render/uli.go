package render

import (
	"fmt"
	"strings"
)

// uliFlag is one User Location Information presence bit, 3GPP TS 29.274
// §8.21: the first octet's bits select which of CGI/SAI/RAI/TAI/ECGI/LAI/
// macro-eNodeB/extended-macro-eNodeB fields follow, in increasing bit order.
type uliFlag struct {
	bit   byte
	label string
	width int
}

// uliFlags mirrors the original's label/width table exactly (labels include
// the leading/trailing spaces the original's memcpy bakes in), spec.md
// §4.5 "for each set bit in increasing order render the corresponding
// sub-location with its label ... consuming a fixed number of bytes per
// sub-location", grounded on the CGI/SAI/RAI/TAI/ECGI/LAI/Macro-eNodeB/Ext-
// Macro-eNodeB branches.
var uliFlags = []uliFlag{
	{0x01, " CGI: ", 7},
	{0x02, " SAI: ", 7},
	{0x04, " RAI: ", 7},
	{0x08, " TAI: ", 5},
	{0x10, " ECGI: ", 7},
	{0x20, " LAI: ", 5},
	{0x40, " Macro eNodeB ID: ", 6},
	{0x80, " Ext Macro eNodeB ID: ", 6},
}

// renderULI renders the User Location Information bitmap: a leading flag
// octet followed by the present fields concatenated in flag-bit order, each
// prefixed by its label. CGI/SAI/RAI share decode_cgi_to_string's PLMN ||
// LAC || "-" || CI shape; Macro eNodeB ID and Ext Macro eNodeB ID share
// decode_macro_enodeb_to_string's shape (the original reuses the same
// decoder for both, intentionally).
func renderULI(value []byte) (string, error) {
	if len(value) < 1 {
		return "", errTruncated("ULI")
	}

	flags := value[0]
	pos := 1

	var sb strings.Builder
	for _, f := range uliFlags {
		if flags&f.bit == 0 {
			continue
		}
		if pos+f.width > len(value) {
			return "", errTruncated("ULI")
		}

		field := value[pos : pos+f.width]
		pos += f.width

		sb.WriteString(f.label)

		switch f.bit {
		case 0x01, 0x02, 0x04:
			s, err := renderLAIFamily(field, 0)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		case 0x08:
			s, err := renderTAI(field)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		case 0x10:
			s, err := renderECGI(field)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		case 0x20:
			s, err := renderLAIFamily(field, 0)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		case 0x40, 0x80:
			s, err := renderMacroENodeB(field)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		default:
			sb.WriteString(fmt.Sprintf("%x", field))
		}
	}

	return sb.String(), nil
}

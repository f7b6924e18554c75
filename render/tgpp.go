package render

import (
	"fmt"
	"strings"

	"github.com/wanderber/wanderber/errs"
	"github.com/wanderber/wanderber/schema"
)

// renderPackedBCD decodes a 3GPP packed-BCD octet string (IMEI/IMEISV/IMSI
// style: two decimal digits per byte, low nibble first, 0xf high-nibble
// filler on the final byte when the digit count is odd) into its decimal
// digit string.
func renderPackedBCD(value []byte) string {
	var sb strings.Builder

	for _, b := range value {
		lo := b & 0x0f
		hi := b >> 4

		if lo <= 9 {
			sb.WriteByte('0' + lo)
		}
		if hi <= 9 {
			sb.WriteByte('0' + hi)
		}
	}

	return sb.String()
}

// renderPLMN decodes a 3-octet PLMN (MCC/MNC) field (nibble-swapped BCD with
// an 0xf filler in the MNC's third digit position for two-digit MNCs) and
// formats it as `MCC-MNC-`, per spec.md §4.5 and grounded on
// stringify_mcc_mnc.
func renderPLMN(plmn []byte) string {
	if len(plmn) < 3 {
		return ""
	}

	mccDigits := [3]byte{plmn[0] & 0x0f, plmn[0] >> 4, plmn[1] & 0x0f}
	mncDigit3 := plmn[1] >> 4
	mncDigits := [2]byte{plmn[2] & 0x0f, plmn[2] >> 4}

	var mccSB, mncSB strings.Builder
	for _, d := range mccDigits {
		mccSB.WriteByte('0' + d)
	}

	mncSB.WriteByte('0' + mncDigits[0])
	mncSB.WriteByte('0' + mncDigits[1])
	if mncDigit3 != 0x0f {
		mncSB.WriteByte('0' + mncDigit3)
	}

	return mccSB.String() + "-" + mncSB.String() + "-"
}

// renderLAIFamily renders the CGI/SAI/LAI octet-string family: a 3-octet
// PLMN followed by a 2-octet location-area code, and (for CGI/SAI/RAI only)
// a further 2-octet cell/service/routing identity, per spec.md §4.5 "CGI/
// SAI/RAI: PLMN || 2-byte hex LAC || `-` || 2-byte hex CI. LAI: PLMN ||
// 2-byte hex LAC." grounded on decode_cgi_to_string/decode_lai_to_string.
func renderLAIFamily(value []byte, kind schema.SemanticType) (string, error) {
	_ = kind

	if len(value) < 5 {
		return "", errTruncated("LAI-family")
	}

	plmn := renderPLMN(value[:3])
	lac := uint16(value[3])<<8 | uint16(value[4])

	if len(value) >= 7 {
		ci := uint16(value[5])<<8 | uint16(value[6])
		return fmt.Sprintf("%s%04x-%04x", plmn, lac, ci), nil
	}

	return fmt.Sprintf("%s%04x", plmn, lac), nil
}

// renderTAI renders a 5-octet Tracking Area Identity: 3-octet PLMN plus a
// 2-octet tracking area code, spec.md §4.5 "TAI: PLMN || 2-byte hex TAC.",
// grounded on decode_tai_to_string.
func renderTAI(value []byte) (string, error) {
	if len(value) < 5 {
		return "", errTruncated("TAI")
	}

	plmn := renderPLMN(value[:3])
	tac := uint16(value[3])<<8 | uint16(value[4])

	return fmt.Sprintf("%s%04x", plmn, tac), nil
}

// renderECGI renders a 7-octet E-UTRAN Cell Global Identity: 3-octet PLMN
// plus a 28-bit E-UTRAN cell identity packed into the trailing 4 octets,
// spec.md §4.5 "ECGI: PLMN || 28-bit hex ECI (masked from a 4-byte word,
// high 4 bits cleared)."
func renderECGI(value []byte) (string, error) {
	if len(value) < 7 {
		return "", errTruncated("ECGI")
	}

	plmn := renderPLMN(value[:3])
	eci := uint32(value[3])<<24 | uint32(value[4])<<16 | uint32(value[5])<<8 | uint32(value[6])
	eci &= 0x0fffffff

	return fmt.Sprintf("%s%07x", plmn, eci), nil
}

// renderMacroENodeB renders a 6-octet macro eNodeB identity: 3-octet PLMN
// plus a 20-bit macro eNodeB ID packed into the trailing 3 octets (the
// leading octet's top 3 bits masked off), spec.md §4.5 "Macro-eNodeB: PLMN
// || 3-byte hex (high bit masked)", grounded on
// decode_macro_enodeb_to_string, which also serves the Ext Macro eNodeB ID
// sub-location (same decoding method, per the original's explicit note).
func renderMacroENodeB(value []byte) (string, error) {
	if len(value) < 6 {
		return "", errTruncated("macro-eNodeB")
	}

	plmn := renderPLMN(value[:3])
	id := uint32(value[3]&0x1f)<<16 | uint32(value[4])<<8 | uint32(value[5])

	return fmt.Sprintf("%s%07x", plmn, id), nil
}

// renderAPNAMBR renders the EPS APN-AMBR value: two 32-bit big-endian rates
// in kbit/s, uplink then downlink, spec.md §4.5 "EPS APN-AMBR: two
// big-endian 32-bit uplink/downlink values rendered as `Uplink=U
// Downlink=D`", grounded on stringify_eps_ambr.
func renderAPNAMBR(value []byte) (string, error) {
	if len(value) < 8 {
		return "", errTruncated("EPS-APN-AMBR")
	}

	up := uint32(value[0])<<24 | uint32(value[1])<<16 | uint32(value[2])<<8 | uint32(value[3])
	down := uint32(value[4])<<24 | uint32(value[5])<<16 | uint32(value[6])<<8 | uint32(value[7])

	return fmt.Sprintf("Uplink=%d  Downlink=%d", up, down), nil
}

func errTruncated(field string) error {
	return fmt.Errorf("render: %s value too short: %w", field, errs.ErrTruncatedBuffer)
}

package decoder

import (
	"fmt"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/schema"
)

// universalTagNames mirrors the original's (class, tag-number) -> string
// table for the universal class, spec.md §6 "tag-name-string of current
// item".
var universalTagNames = map[uint32]string{
	1:  "BOOLEAN",
	2:  "INTEGER",
	4:  "OCTET STRING",
	5:  "NULL",
	6:  "OID",
	10: "ENUMERATED",
	12: "UTF8String",
	13: "RELATIVE-OID",
	16: "SEQUENCE",
	17: "SET",
	19: "PrintableString",
	22: "IA5String",
	24: "GeneralizedTime",
	23: "UTCTime",
}

// TagName implements the exposed "tag-name-string" operation, spec.md §6 and
// SPEC_FULL.md supplement 4: for a universal-class item, looks up the fixed
// tag-name table above; for any other class, falls back to the caller's
// schema node's member name for this item's identifier, or a numeric
// placeholder when no schema is supplied or no member is registered.
func (it *Item) TagName(node *schema.Node) string {
	if it.class == ber.UniversalPrimitive || it.class == ber.UniversalConstructed {
		if name, ok := universalTagNames[it.identifier]; ok {
			return name
		}

		return fmt.Sprintf("universal(%d)", it.identifier)
	}

	if node != nil {
		if member := node.Member(int(it.identifier)); member != nil {
			return member.Name
		}
	}

	return fmt.Sprintf("context(%d)", it.identifier)
}

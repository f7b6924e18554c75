package etsili

import "github.com/wanderber/wanderber/schema"

// NetworkIdentifierNode, CommIDNode, TimeStampNode, PSHeaderNode, PayloadNode
// and RecordNode are the concrete schema tree this package instantiates
// against the generic decoder/render packages, spec.md §1 "the core
// consumes a schema, it does not define one here" and §6 "Domain format".
var (
	NetworkIdentifierNode = buildNetworkIdentifierNode()
	CommIDNode            = buildCommIDNode()
	TimeStampNode         = buildTimeStampNode()
	PSHeaderNode          = buildPSHeaderNode()
	PayloadNode           = buildPayloadNode()
	RecordNode            = buildRecordNode()
)

func buildNetworkIdentifierNode() *schema.Node {
	n := schema.NewNode("NetworkIdentifier")
	n.Set(0, &schema.MemberAction{Name: "operatorIdentifier", InterpretAs: schema.OctetString})
	n.Set(1, &schema.MemberAction{Name: "networkElementIdentifier", InterpretAs: schema.OctetString})

	return n
}

func buildCommIDNode() *schema.Node {
	n := schema.NewNode("CommunicationIdentifier")
	n.Set(0, &schema.MemberAction{Name: "networkIdentifier", Descend: NetworkIdentifierNode})
	n.Set(1, &schema.MemberAction{Name: "cin", InterpretAs: schema.Integer})
	n.Set(2, &schema.MemberAction{Name: "deliveryCountryCode", InterpretAs: schema.OctetString})

	return n
}

func buildTimeStampNode() *schema.Node {
	n := schema.NewNode("MicroSecondTimeStamp")
	n.Set(0, &schema.MemberAction{Name: "seconds", InterpretAs: schema.Integer})
	n.Set(1, &schema.MemberAction{Name: "microSeconds", InterpretAs: schema.Integer})

	return n
}

func buildPSHeaderNode() *schema.Node {
	n := schema.NewNode("PSHeader")
	n.Set(0, &schema.MemberAction{Name: "li-psDomainId", InterpretAs: schema.OID})
	n.Set(1, &schema.MemberAction{Name: "lawfulInterceptionIdentifier", InterpretAs: schema.OctetString})
	n.Set(2, &schema.MemberAction{Name: "authorizationCountryCode", InterpretAs: schema.PrintableString})
	n.Set(3, &schema.MemberAction{Name: "communicationIdentifier", Descend: CommIDNode})
	n.Set(4, &schema.MemberAction{Name: "sequenceNumber", InterpretAs: schema.Integer})
	n.Set(6, &schema.MemberAction{Name: "interceptionPointID", InterpretAs: schema.OctetString})
	n.Set(7, &schema.MemberAction{Name: "microSecondTimeStamp", Descend: TimeStampNode})
	n.Set(8, &schema.MemberAction{Name: "timeStampQualifier", InterpretAs: schema.Enumerated})

	return n
}

func buildPayloadNode() *schema.Node {
	n := schema.NewNode("Payload")
	n.Set(0, &schema.MemberAction{Name: "payloadOID", InterpretAs: schema.RelativeOID})

	return n
}

func buildRecordNode() *schema.Node {
	n := schema.NewNode("PSPDU")
	n.Set(1, &schema.MemberAction{Name: "pSHeader", Descend: PSHeaderNode})
	n.Set(2, &schema.MemberAction{Name: "payload", Descend: PayloadNode})

	return n
}

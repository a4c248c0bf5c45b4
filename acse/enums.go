package acse

import "fmt"

// AssociationResult is the AARE result field: accepted or rejected,
// permanently or transiently.
type AssociationResult byte

const (
	Accepted          AssociationResult = 0
	RejectedPermanent AssociationResult = 1
	RejectedTransient AssociationResult = 2
)

func (r AssociationResult) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectedPermanent:
		return "rejected (permanent)"
	case RejectedTransient:
		return "rejected (transient)"
	default:
		return "unknown"
	}
}

// ParseAssociationResult validates a raw AARE result octet.
func ParseAssociationResult(b byte) (AssociationResult, error) {
	switch AssociationResult(b) {
	case Accepted, RejectedPermanent, RejectedTransient:
		return AssociationResult(b), nil
	default:
		return 0, fmt.Errorf("acse: invalid association-result %d", b)
	}
}

// AcseServiceUserDiagnostics is the AARE result-source-diagnostic value
// explaining a rejection.
type AcseServiceUserDiagnostics byte

const (
	DiagnosticNull                                      AcseServiceUserDiagnostics = 0
	DiagnosticNoReasonGiven                              AcseServiceUserDiagnostics = 1
	DiagnosticApplicationContextNameNotSupported         AcseServiceUserDiagnostics = 2
	DiagnosticAuthenticationMechanismNameNotRecognised   AcseServiceUserDiagnostics = 11
	DiagnosticAuthenticationMechanismNameRequired        AcseServiceUserDiagnostics = 12
	DiagnosticAuthenticationFailure                      AcseServiceUserDiagnostics = 13
	DiagnosticAuthenticationRequired                     AcseServiceUserDiagnostics = 14
)

var diagnosticName = map[AcseServiceUserDiagnostics]string{
	DiagnosticNull:                                "null",
	DiagnosticNoReasonGiven:                        "no reason given",
	DiagnosticApplicationContextNameNotSupported:   "application context name not supported",
	DiagnosticAuthenticationMechanismNameNotRecognised: "authentication mechanism name not recognised",
	DiagnosticAuthenticationMechanismNameRequired:  "authentication mechanism name required",
	DiagnosticAuthenticationFailure:                "authentication failure",
	DiagnosticAuthenticationRequired:               "authentication required",
}

func (d AcseServiceUserDiagnostics) String() string {
	if s, ok := diagnosticName[d]; ok {
		return s
	}
	return "unknown"
}

// ApplicationContextName selects LN vs SN referencing, with or without
// ciphering. Encoded on the wire as a fixed OBJECT IDENTIFIER byte string.
type ApplicationContextName int

const (
	LogicalNameReferencing ApplicationContextName = iota
	ShortNameReferencing
	LogicalNameReferencingWithCiphering
	ShortNameReferencingWithCiphering
)

var contextNameOID = map[ApplicationContextName][]byte{
	LogicalNameReferencing:              {0x60, 0x85, 0x74, 0x05, 0x08, 0x01, 0x01},
	ShortNameReferencing:                 {0x60, 0x85, 0x74, 0x05, 0x08, 0x01, 0x02},
	LogicalNameReferencingWithCiphering:  {0x60, 0x85, 0x74, 0x05, 0x08, 0x01, 0x03},
	ShortNameReferencingWithCiphering:    {0x60, 0x85, 0x74, 0x05, 0x08, 0x01, 0x04},
}

// OIDBytes returns the BER OBJECT IDENTIFIER content octets for n.
func (n ApplicationContextName) OIDBytes() []byte { return contextNameOID[n] }

// ApplicationContextNameFromOID maps OID content octets back to a context
// name.
func ApplicationContextNameFromOID(oid []byte) (ApplicationContextName, bool) {
	for n, o := range contextNameOID {
		if bytesEqual(o, oid) {
			return n, true
		}
	}
	return 0, false
}

// UsesCiphering reports whether n is one of the ciphered variants.
func (n ApplicationContextName) UsesCiphering() bool {
	return n == LogicalNameReferencingWithCiphering || n == ShortNameReferencingWithCiphering
}

// UsesLogicalName reports whether n is LN referencing (with or without
// ciphering).
func (n ApplicationContextName) UsesLogicalName() bool {
	return n == LogicalNameReferencing || n == LogicalNameReferencingWithCiphering
}

func (n ApplicationContextName) String() string {
	switch n {
	case LogicalNameReferencing:
		return "LN"
	case ShortNameReferencing:
		return "SN"
	case LogicalNameReferencingWithCiphering:
		return "LN with ciphering"
	case ShortNameReferencingWithCiphering:
		return "SN with ciphering"
	default:
		return "unknown"
	}
}

// MechanismName selects the authentication mechanism proposed in an AARQ.
type MechanismName int

const (
	LowestLevelSecurity MechanismName = iota
	LowLevelSecurity
	HighLevelSecurity
	HighLevelSecurityMd5
	HighLevelSecuritySha1
	HighLevelSecurityGmac
	HighLevelSecuritySha256
	HighLevelSecurityEcdsa
)

var mechanismNameOID = map[MechanismName][]byte{
	LowestLevelSecurity:     {0x60, 0x85, 0x74, 0x05, 0x08, 0x02, 0x00},
	LowLevelSecurity:        {0x60, 0x85, 0x74, 0x05, 0x08, 0x02, 0x01},
	HighLevelSecurity:       {0x60, 0x85, 0x74, 0x05, 0x08, 0x02, 0x02},
	HighLevelSecurityMd5:    {0x60, 0x85, 0x74, 0x05, 0x08, 0x02, 0x03},
	HighLevelSecuritySha1:   {0x60, 0x85, 0x74, 0x05, 0x08, 0x02, 0x04},
	HighLevelSecurityGmac:   {0x60, 0x85, 0x74, 0x05, 0x08, 0x02, 0x05},
	HighLevelSecuritySha256: {0x60, 0x85, 0x74, 0x05, 0x08, 0x02, 0x06},
	HighLevelSecurityEcdsa:  {0x60, 0x85, 0x74, 0x05, 0x08, 0x02, 0x07},
}

// OIDBytes returns the BER OBJECT IDENTIFIER content octets for m.
func (m MechanismName) OIDBytes() []byte { return mechanismNameOID[m] }

// MechanismNameFromOID maps OID content octets back to a mechanism name.
func MechanismNameFromOID(oid []byte) (MechanismName, bool) {
	for m, o := range mechanismNameOID {
		if bytesEqual(o, oid) {
			return m, true
		}
	}
	return 0, false
}

func (m MechanismName) String() string {
	switch m {
	case LowestLevelSecurity:
		return "no authentication"
	case LowLevelSecurity:
		return "low level (password)"
	case HighLevelSecurity:
		return "high level"
	case HighLevelSecurityMd5:
		return "HLS-MD5"
	case HighLevelSecuritySha1:
		return "HLS-SHA1"
	case HighLevelSecurityGmac:
		return "HLS-GMAC"
	case HighLevelSecuritySha256:
		return "HLS-SHA256"
	case HighLevelSecurityEcdsa:
		return "HLS-ECDSA"
	default:
		return "unknown"
	}
}

// AuthenticationValue is the AARQ/AARE calling/responding-authentication-
// value CHOICE: a char-string password for low-level security, or a
// bit-string challenge/response for high-level security.
type AuthenticationValue struct {
	IsBitString bool
	Bytes       []byte
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Package contract holds the home-care service contract form: schema,
// canonical defaults, flatten/unflatten export codec, and the persistence
// stack. It is structurally parallel to the assessment package but fully
// independent of it.
package contract

// Contract is the nested service contract form.
type Contract struct {
	ServiceInfo ServiceInfo `json:"serviceInfo"`
	Schedule    Schedule    `json:"schedule"`
	Payment     Payment     `json:"payment"`
	Terms       Terms       `json:"terms"`
	Signatures  Signatures  `json:"signatures"`
}

// ServiceInfo is the contract's discriminator section.
type ServiceInfo struct {
	ClientName    string `json:"clientName"`
	ClientAddress string `json:"clientAddress"`
	ClientPhone   string `json:"clientPhone"`
	StartDate     string `json:"startDate"`
	ServiceType   string `json:"serviceType"`
	CareLevel     string `json:"careLevel"`
}

// Schedule describes when services are delivered. Days export as a
// "; "-joined flat value.
type Schedule struct {
	Days           []string `json:"days"`
	Hours          string   `json:"hours"`
	VisitFrequency string   `json:"visitFrequency"`
}

// Payment carries billing terms and payer identifiers.
type Payment struct {
	HourlyRate        string `json:"hourlyRate"`
	BillingCycle      string `json:"billingCycle"`
	PayerName         string `json:"payerName"`
	InsuranceProvider string `json:"insuranceProvider"`
	PolicyNumber      string `json:"policyNumber"`
}

// Terms carries the contractual conditions and the acceptance checkbox.
type Terms struct {
	CancellationPolicy string `json:"cancellationPolicy"`
	AgreedToTerms      bool   `json:"agreedToTerms"`
}

// SignatureBlock is a signature with its ISO-8601 timestamp. The signature
// is a base64 data URL or typed name, empty when unsigned.
type SignatureBlock struct {
	Signature string `json:"signature"`
	SignedAt  string `json:"signedAt"`
}

// AgencySignature is the agency representative's counter-signature.
type AgencySignature struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
	SignedAt  string `json:"signedAt"`
}

// Signatures is the signing section. ClientName is a denormalized identity
// copy; unflatten re-propagates it from ServiceInfo on every call.
type Signatures struct {
	ClientName string          `json:"clientName"`
	Client     SignatureBlock  `json:"client"`
	AgencyRep  AgencySignature `json:"agencyRep"`
}

// Default returns the canonical default contract that unflatten patches.
func Default() *Contract {
	return &Contract{}
}

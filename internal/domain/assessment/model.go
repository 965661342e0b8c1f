// Package assessment holds the client intake assessment form: the nested
// schema, its canonical defaults, the flatten/unflatten export codec, and
// the service/repository/handler stack persisting assessments encrypted at
// rest.
package assessment

// Assessment is the nested intake assessment form. Dates and timestamps are
// carried as strings (ISO-8601 for signature timestamps) because the form
// layer round-trips user-entered values verbatim.
type Assessment struct {
	ClientInfo  ClientInfo  `json:"clientInfo"`
	Medical     Medical     `json:"medical"`
	DailyLiving DailyLiving `json:"dailyLiving"`
	Emergency   Emergency   `json:"emergency"`
	Consents    Consents    `json:"consents"`
	StaffNotes  StaffNotes  `json:"staffNotes"`
}

// Insurance carries the client's coverage identifiers.
type Insurance struct {
	Provider       string `json:"provider"`
	PolicyNumber   string `json:"policyNumber"`
	GroupNumber    string `json:"groupNumber"`
	MedicaidNumber string `json:"medicaidNumber"`
}

// ClientInfo is the identity section and the form's discriminator section:
// a document without it is not an assessment.
type ClientInfo struct {
	Name            string    `json:"name"`
	DateOfBirth     string    `json:"dateOfBirth"`
	SSN             string    `json:"ssn"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	Zip             string    `json:"zip"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	MaritalStatus   string    `json:"maritalStatus"`
	LivingSituation string    `json:"livingSituation"`
	AssessmentDate  string    `json:"assessmentDate"`
	Insurance       Insurance `json:"insurance"`
}

// Medication is a medication list entry. Name is the discriminator: an
// entry with an empty name is absent and never round-trips.
type Medication struct {
	Name       string `json:"name"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Prescriber string `json:"prescriber"`
}

// Doctor is a treating physician entry, discriminated by Name.
type Doctor struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Phone     string `json:"phone"`
}

// Medical is the health history section.
type Medical struct {
	PrimaryDiagnosis       string       `json:"primaryDiagnosis"`
	Allergies              string       `json:"allergies"`
	Medications            []Medication `json:"medications"`
	Doctors                []Doctor     `json:"doctors"`
	HospitalizedRecently   bool         `json:"hospitalizedRecently"`
	HospitalizationDetails string       `json:"hospitalizationDetails"`
}

// DailyLiving is the activities-of-daily-living section. The slice fields
// export as "; "-joined flat values.
type DailyLiving struct {
	ADLNeeds     []string `json:"adlNeeds"`
	ServiceDays  []string `json:"serviceDays"`
	ServiceHours string   `json:"serviceHours"`
	MobilityAids []string `json:"mobilityAids"`
	LivesAlone   bool     `json:"livesAlone"`
	DietNotes    string   `json:"dietNotes"`
}

// EmergencyContact is discriminated by Name.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	AltPhone     string `json:"altPhone"`
}

// Emergency is the emergency contact section.
type Emergency struct {
	Contacts []EmergencyContact `json:"contacts"`
}

// ConsentBlock is a consent checkbox with its signature and timestamp.
// Signature is a base64 data URL or a typed name; empty when unsigned.
type ConsentBlock struct {
	Agreed    bool   `json:"agreed"`
	Signature string `json:"signature"`
	SignedAt  string `json:"signedAt"`
}

// SignatureBlock is a bare signature with its timestamp.
type SignatureBlock struct {
	Signature string `json:"signature"`
	SignedAt  string `json:"signedAt"`
}

// Consents is the consent section. The schema denormalizes client identity
// here; unflatten re-propagates it from ClientInfo on every call.
type Consents struct {
	ClientName      string         `json:"clientName"`
	ClientAddress   string         `json:"clientAddress"`
	ConsentDate     string         `json:"consentDate"`
	HipaaConsent    ConsentBlock   `json:"hipaaConsent"`
	ServiceConsent  ConsentBlock   `json:"serviceConsent"`
	ClientSignature SignatureBlock `json:"clientSignature"`
}

// StaffNotes holds per-section staff commentary. Notes flatten only when
// non-empty so exports stay sparse.
type StaffNotes struct {
	ClientInfo  string `json:"clientInfo"`
	Medical     string `json:"medical"`
	DailyLiving string `json:"dailyLiving"`
}

// Default returns the canonical default assessment, the anchor every
// unflatten starts from. Fields absent from a flat record fall back to
// these values, never to null.
func Default() *Assessment {
	return &Assessment{}
}

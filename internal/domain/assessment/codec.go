package assessment

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sushil-negi/intake-automation-sub003/pkg/flat"
)

// Index-scan bounds for list entities during unflatten. Scanning stops at
// the first missing discriminator, so these only cap pathological input.
const (
	maxMedications = 50
	maxDoctors     = 10
	maxContacts    = 10
)

// scalarField binds one flat key to its getter and setter so the flatten
// and unflatten rules for a field live in one row. omitEmpty fields (staff
// notes) produce no key at all when blank, keeping exports sparse.
type scalarField struct {
	key       string
	omitEmpty bool
	get       func(a *Assessment) string
	set       func(a *Assessment, v string)
}

var scalarFields = []scalarField{
	{key: "clientName", get: func(a *Assessment) string { return a.ClientInfo.Name }, set: func(a *Assessment, v string) { a.ClientInfo.Name = v }},
	{key: "clientDOB", get: func(a *Assessment) string { return a.ClientInfo.DateOfBirth }, set: func(a *Assessment, v string) { a.ClientInfo.DateOfBirth = v }},
	{key: "clientSSN", get: func(a *Assessment) string { return a.ClientInfo.SSN }, set: func(a *Assessment, v string) { a.ClientInfo.SSN = v }},
	{key: "clientAddress", get: func(a *Assessment) string { return a.ClientInfo.Address }, set: func(a *Assessment, v string) { a.ClientInfo.Address = v }},
	{key: "clientCity", get: func(a *Assessment) string { return a.ClientInfo.City }, set: func(a *Assessment, v string) { a.ClientInfo.City = v }},
	{key: "clientState", get: func(a *Assessment) string { return a.ClientInfo.State }, set: func(a *Assessment, v string) { a.ClientInfo.State = v }},
	{key: "clientZip", get: func(a *Assessment) string { return a.ClientInfo.Zip }, set: func(a *Assessment, v string) { a.ClientInfo.Zip = v }},
	{key: "clientPhone", get: func(a *Assessment) string { return a.ClientInfo.Phone }, set: func(a *Assessment, v string) { a.ClientInfo.Phone = v }},
	{key: "clientEmail", get: func(a *Assessment) string { return a.ClientInfo.Email }, set: func(a *Assessment, v string) { a.ClientInfo.Email = v }},
	{key: "maritalStatus", get: func(a *Assessment) string { return a.ClientInfo.MaritalStatus }, set: func(a *Assessment, v string) { a.ClientInfo.MaritalStatus = v }},
	{key: "livingSituation", get: func(a *Assessment) string { return a.ClientInfo.LivingSituation }, set: func(a *Assessment, v string) { a.ClientInfo.LivingSituation = v }},
	{key: "assessmentDate", get: func(a *Assessment) string { return a.ClientInfo.AssessmentDate }, set: func(a *Assessment, v string) { a.ClientInfo.AssessmentDate = v }},
	{key: "insuranceProvider", get: func(a *Assessment) string { return a.ClientInfo.Insurance.Provider }, set: func(a *Assessment, v string) { a.ClientInfo.Insurance.Provider = v }},
	{key: "insurancePolicyNumber", get: func(a *Assessment) string { return a.ClientInfo.Insurance.PolicyNumber }, set: func(a *Assessment, v string) { a.ClientInfo.Insurance.PolicyNumber = v }},
	{key: "insuranceGroupNumber", get: func(a *Assessment) string { return a.ClientInfo.Insurance.GroupNumber }, set: func(a *Assessment, v string) { a.ClientInfo.Insurance.GroupNumber = v }},
	{key: "medicaidNumber", get: func(a *Assessment) string { return a.ClientInfo.Insurance.MedicaidNumber }, set: func(a *Assessment, v string) { a.ClientInfo.Insurance.MedicaidNumber = v }},
	{key: "primaryDiagnosis", get: func(a *Assessment) string { return a.Medical.PrimaryDiagnosis }, set: func(a *Assessment, v string) { a.Medical.PrimaryDiagnosis = v }},
	{key: "allergies", get: func(a *Assessment) string { return a.Medical.Allergies }, set: func(a *Assessment, v string) { a.Medical.Allergies = v }},
	{key: "hospitalizationDetails", get: func(a *Assessment) string { return a.Medical.HospitalizationDetails }, set: func(a *Assessment, v string) { a.Medical.HospitalizationDetails = v }},
	{key: "serviceHours", get: func(a *Assessment) string { return a.DailyLiving.ServiceHours }, set: func(a *Assessment, v string) { a.DailyLiving.ServiceHours = v }},
	{key: "dietNotes", get: func(a *Assessment) string { return a.DailyLiving.DietNotes }, set: func(a *Assessment, v string) { a.DailyLiving.DietNotes = v }},
	{key: "consentClientName", get: func(a *Assessment) string { return a.Consents.ClientName }, set: func(a *Assessment, v string) { a.Consents.ClientName = v }},
	{key: "consentClientAddress", get: func(a *Assessment) string { return a.Consents.ClientAddress }, set: func(a *Assessment, v string) { a.Consents.ClientAddress = v }},
	{key: "consentDate", get: func(a *Assessment) string { return a.Consents.ConsentDate }, set: func(a *Assessment, v string) { a.Consents.ConsentDate = v }},
	{key: "hipaaConsentSignature", get: func(a *Assessment) string { return a.Consents.HipaaConsent.Signature }, set: func(a *Assessment, v string) { a.Consents.HipaaConsent.Signature = v }},
	{key: "hipaaConsentTimestamp", get: func(a *Assessment) string { return a.Consents.HipaaConsent.SignedAt }, set: func(a *Assessment, v string) { a.Consents.HipaaConsent.SignedAt = v }},
	{key: "serviceConsentSignature", get: func(a *Assessment) string { return a.Consents.ServiceConsent.Signature }, set: func(a *Assessment, v string) { a.Consents.ServiceConsent.Signature = v }},
	{key: "serviceConsentTimestamp", get: func(a *Assessment) string { return a.Consents.ServiceConsent.SignedAt }, set: func(a *Assessment, v string) { a.Consents.ServiceConsent.SignedAt = v }},
	{key: "clientSignature", get: func(a *Assessment) string { return a.Consents.ClientSignature.Signature }, set: func(a *Assessment, v string) { a.Consents.ClientSignature.Signature = v }},
	{key: "clientSignatureTimestamp", get: func(a *Assessment) string { return a.Consents.ClientSignature.SignedAt }, set: func(a *Assessment, v string) { a.Consents.ClientSignature.SignedAt = v }},
	{key: "clientInfoNote", omitEmpty: true, get: func(a *Assessment) string { return a.StaffNotes.ClientInfo }, set: func(a *Assessment, v string) { a.StaffNotes.ClientInfo = v }},
	{key: "medicalNote", omitEmpty: true, get: func(a *Assessment) string { return a.StaffNotes.Medical }, set: func(a *Assessment, v string) { a.StaffNotes.Medical = v }},
	{key: "dailyLivingNote", omitEmpty: true, get: func(a *Assessment) string { return a.StaffNotes.DailyLiving }, set: func(a *Assessment, v string) { a.StaffNotes.DailyLiving = v }},
}

type boolField struct {
	key string
	get func(a *Assessment) bool
	set func(a *Assessment, v bool)
}

var boolFields = []boolField{
	{key: "hospitalizedRecently", get: func(a *Assessment) bool { return a.Medical.HospitalizedRecently }, set: func(a *Assessment, v bool) { a.Medical.HospitalizedRecently = v }},
	{key: "livesAlone", get: func(a *Assessment) bool { return a.DailyLiving.LivesAlone }, set: func(a *Assessment, v bool) { a.DailyLiving.LivesAlone = v }},
	{key: "hipaaConsent", get: func(a *Assessment) bool { return a.Consents.HipaaConsent.Agreed }, set: func(a *Assessment, v bool) { a.Consents.HipaaConsent.Agreed = v }},
	{key: "serviceConsent", get: func(a *Assessment) bool { return a.Consents.ServiceConsent.Agreed }, set: func(a *Assessment, v bool) { a.Consents.ServiceConsent.Agreed = v }},
}

type listField struct {
	key    string
	reject func(item string) bool
	get    func(a *Assessment) []string
	set    func(a *Assessment, items []string)
}

var listFields = []listField{
	{key: "adlNeeds", reject: isADLRejectValue, get: func(a *Assessment) []string { return a.DailyLiving.ADLNeeds }, set: func(a *Assessment, items []string) { a.DailyLiving.ADLNeeds = items }},
	{key: "serviceDays", get: func(a *Assessment) []string { return a.DailyLiving.ServiceDays }, set: func(a *Assessment, items []string) { a.DailyLiving.ServiceDays = items }},
	{key: "mobilityAids", get: func(a *Assessment) []string { return a.DailyLiving.MobilityAids }, set: func(a *Assessment, items []string) { a.DailyLiving.MobilityAids = items }},
}

// adlRejectValues is the documented denylist for the adlNeeds field. Older
// exports reused a joined-value shape across sections, so a day name or a
// time range could leak into adlNeeds; those known stray values are dropped
// on unflatten. This is a heuristic over an acknowledged key-naming
// ambiguity, not a schema validator, and its scope is exactly this table
// plus the time-range shape below. Do not extend it to "fix" other fields.
var adlRejectValues = map[string]bool{
	"Monday":    true,
	"Tuesday":   true,
	"Wednesday": true,
	"Thursday":  true,
	"Friday":    true,
	"Saturday":  true,
	"Sunday":    true,
}

var timeRangePattern = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s*[AP]M\s*-\s*\d{1,2}:\d{2}\s*[AP]M$`)

func isADLRejectValue(item string) bool {
	return adlRejectValues[item] || timeRangePattern.MatchString(item)
}

// Flatten converts an assessment document into a flat export record. It
// fails only when the document lacks the clientInfo discriminator section
// (a contract or other form fed in by mistake); every per-field problem is
// absorbed by defaults instead.
func Flatten(doc map[string]any) (flat.Record, error) {
	if _, ok := doc["clientInfo"]; !ok {
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("assessment flatten: document has no clientInfo section (top-level keys: %s)", strings.Join(keys, ", "))
	}
	a, err := decodeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("assessment flatten: %w", err)
	}
	return FlattenRecord(a), nil
}

func decodeDocument(doc map[string]any) (*Assessment, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var a Assessment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &a, nil
}

// FlattenRecord flattens a typed assessment. List entries with an empty
// discriminator produce no keys; the Nth non-empty entry becomes index N in
// the output regardless of its original position.
func FlattenRecord(a *Assessment) flat.Record {
	out := make(flat.Record)

	for _, f := range scalarFields {
		v := f.get(a)
		if f.omitEmpty && v == "" {
			continue
		}
		out[f.key] = v
	}
	for _, f := range boolFields {
		out[f.key] = flat.FormatBool(f.get(a))
	}
	for _, f := range listFields {
		out[f.key] = flat.JoinList(f.get(a))
	}

	n := 0
	for _, med := range a.Medical.Medications {
		if med.Name == "" {
			continue
		}
		n++
		out[fmt.Sprintf("medication%d_name", n)] = med.Name
		out[fmt.Sprintf("medication%d_dosage", n)] = med.Dosage
		out[fmt.Sprintf("medication%d_frequency", n)] = med.Frequency
		out[fmt.Sprintf("medication%d_prescriber", n)] = med.Prescriber
	}

	n = 0
	for _, doc := range a.Medical.Doctors {
		if doc.Name == "" {
			continue
		}
		n++
		out[fmt.Sprintf("doctor%d_name", n)] = doc.Name
		out[fmt.Sprintf("doctor%d_specialty", n)] = doc.Specialty
		out[fmt.Sprintf("doctor%d_phone", n)] = doc.Phone
	}

	n = 0
	for _, c := range a.Emergency.Contacts {
		if c.Name == "" {
			continue
		}
		n++
		out[fmt.Sprintf("emergencyContact%d_name", n)] = c.Name
		out[fmt.Sprintf("emergencyContact%d_relationship", n)] = c.Relationship
		out[fmt.Sprintf("emergencyContact%d_phone", n)] = c.Phone
		out[fmt.Sprintf("emergencyContact%d_altPhone", n)] = c.AltPhone
	}

	return out
}

// Unflatten rebuilds an assessment from a flat record. It starts from the
// canonical default, patches every present field, and never fails: absent
// or malformed keys fall back to defaults.
func Unflatten(record flat.Record) *Assessment {
	a := Default()

	for _, f := range scalarFields {
		if record.Has(f.key) {
			f.set(a, record.Get(f.key))
		}
	}
	for _, f := range boolFields {
		f.set(a, flat.ParseBool(record.Get(f.key)))
	}
	for _, f := range listFields {
		items := flat.SplitList(record.Get(f.key))
		if f.reject != nil {
			kept := items[:0]
			for _, item := range items {
				if !f.reject(item) {
					kept = append(kept, item)
				}
			}
			items = kept
			if len(items) == 0 {
				items = nil
			}
		}
		f.set(a, items)
	}

	for i := 1; i <= maxMedications; i++ {
		if !record.Has(fmt.Sprintf("medication%d_name", i)) {
			break
		}
		a.Medical.Medications = append(a.Medical.Medications, Medication{
			Name:       record.Get(fmt.Sprintf("medication%d_name", i)),
			Dosage:     record.Get(fmt.Sprintf("medication%d_dosage", i)),
			Frequency:  record.Get(fmt.Sprintf("medication%d_frequency", i)),
			Prescriber: record.Get(fmt.Sprintf("medication%d_prescriber", i)),
		})
	}

	for i := 1; i <= maxDoctors; i++ {
		if !record.Has(fmt.Sprintf("doctor%d_name", i)) {
			break
		}
		a.Medical.Doctors = append(a.Medical.Doctors, Doctor{
			Name:      record.Get(fmt.Sprintf("doctor%d_name", i)),
			Specialty: record.Get(fmt.Sprintf("doctor%d_specialty", i)),
			Phone:     record.Get(fmt.Sprintf("doctor%d_phone", i)),
		})
	}

	for i := 1; i <= maxContacts; i++ {
		if !record.Has(fmt.Sprintf("emergencyContact%d_name", i)) {
			break
		}
		a.Emergency.Contacts = append(a.Emergency.Contacts, EmergencyContact{
			Name:         record.Get(fmt.Sprintf("emergencyContact%d_name", i)),
			Relationship: record.Get(fmt.Sprintf("emergencyContact%d_relationship", i)),
			Phone:        record.Get(fmt.Sprintf("emergencyContact%d_phone", i)),
			AltPhone:     record.Get(fmt.Sprintf("emergencyContact%d_altPhone", i)),
		})
	}

	propagateIdentity(a)
	return a
}

// propagateIdentity copies the primary identity fields into the consent
// section's denormalized copies. It runs on every unflatten, even when the
// flat record supplied no identity fields, so the copies always agree with
// ClientInfo.
func propagateIdentity(a *Assessment) {
	a.Consents.ClientName = a.ClientInfo.Name
	a.Consents.ClientAddress = a.ClientInfo.Address
	a.Consents.ConsentDate = a.ClientInfo.AssessmentDate
}

// Package phi classifies flat export keys into Protected Health Information
// categories and applies per-organization export privacy policy (the HIPAA
// minimum-necessary principle) at the flat-key boundary.
package phi

import "strings"

// Category is a PHI identifier category under the export privacy policy.
type Category string

const (
	CategoryName        Category = "name"
	CategoryAddress     Category = "address"
	CategoryPhone       Category = "phone"
	CategoryDateOfBirth Category = "dateOfBirth"
	CategorySSN         Category = "ssn"
	CategorySignature   Category = "signature"
	CategoryEmail       Category = "email"
	CategoryInsurance   Category = "insurance"
)

// Classification is detected by substring containment against fixed marker
// lists. Containment is deliberately loose: "phonetics" matches the phone
// category and "doberman" matches dateOfBirth. That imprecision errs on the
// side of excluding more data from exports, which is the safe direction for
// a privacy filter, and is accepted behavior, not a bug.
//
// Marker matching is case-sensitive except for the SSN category, which is
// matched against the lowercased key.

// In this schema signature fields hold typed names, so signature markers
// also count as name markers. Keys containing the literal lowercase
// "timestamp" are carved out of the name category so signature timestamps
// (e.g. "hipaaConsentSignedAttimestamp") are not misclassified; the
// carve-out is lowercase-only, a capitalized "Timestamp" does not exempt.
var nameMarkers = []string{"Name", "name", "signature", "Signature", "guardian"}

const nameExclusion = "timestamp"

var addressMarkers = []string{"address", "Address", "city", "City", "state", "State", "zip", "Zip"}

var phoneMarkers = []string{"phone", "Phone", "fax", "Fax"}

var dobMarkers = []string{"dob", "DOB", "dateOfBirth", "DateOfBirth", "birthDate", "BirthDate"}

// ssnMarkers are compared against the lowercased key.
var ssnMarkers = []string{"ssn", "socialsecurity"}

var signatureMarkers = []string{"signature", "Signature"}

var emailMarkers = []string{"email", "Email"}

var insuranceMarkers = []string{"insurance", "Insurance", "policyNumber", "PolicyNumber", "groupNumber", "medicaid", "Medicaid", "medicare", "Medicare"}

func containsAny(key string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(key, m) {
			return true
		}
	}
	return false
}

// IsNameField reports whether key holds a person name (including typed
// signatures), subject to the lowercase "timestamp" carve-out.
func IsNameField(key string) bool {
	if strings.Contains(key, nameExclusion) {
		return false
	}
	return containsAny(key, nameMarkers)
}

// IsAddressField reports whether key holds geographic address data.
func IsAddressField(key string) bool {
	return containsAny(key, addressMarkers)
}

// IsPhoneField reports whether key holds a phone or fax number.
func IsPhoneField(key string) bool {
	return containsAny(key, phoneMarkers)
}

// IsDOBField reports whether key holds a date of birth.
func IsDOBField(key string) bool {
	return containsAny(key, dobMarkers)
}

// IsSSNField reports whether key holds a Social Security Number. Matching
// is case-insensitive, unlike the other categories.
func IsSSNField(key string) bool {
	return containsAny(strings.ToLower(key), ssnMarkers)
}

// IsSignatureField reports whether key holds a signature image or typed
// signature.
func IsSignatureField(key string) bool {
	return containsAny(key, signatureMarkers)
}

// IsEmailField reports whether key holds an email address.
func IsEmailField(key string) bool {
	return containsAny(key, emailMarkers)
}

// IsInsuranceField reports whether key holds insurance identifiers.
func IsInsuranceField(key string) bool {
	return containsAny(key, insuranceMarkers)
}

// Classify returns every PHI category the key falls under. An unrecognized
// key returns an empty set and passes through every export filter.
func Classify(key string) []Category {
	var cats []Category
	if IsNameField(key) {
		cats = append(cats, CategoryName)
	}
	if IsAddressField(key) {
		cats = append(cats, CategoryAddress)
	}
	if IsPhoneField(key) {
		cats = append(cats, CategoryPhone)
	}
	if IsDOBField(key) {
		cats = append(cats, CategoryDateOfBirth)
	}
	if IsSSNField(key) {
		cats = append(cats, CategorySSN)
	}
	if IsSignatureField(key) {
		cats = append(cats, CategorySignature)
	}
	if IsEmailField(key) {
		cats = append(cats, CategoryEmail)
	}
	if IsInsuranceField(key) {
		cats = append(cats, CategoryInsurance)
	}
	return cats
}

// IsPHIField reports whether key falls under any PHI category.
func IsPHIField(key string) bool {
	return IsNameField(key) || IsAddressField(key) || IsPhoneField(key) ||
		IsDOBField(key) || IsSSNField(key) || IsSignatureField(key) ||
		IsEmailField(key) || IsInsuranceField(key)
}

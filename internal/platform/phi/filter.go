package phi

import "github.com/sushil-negi/intake-automation-sub003/pkg/flat"

// ExportConfig is the per-organization export privacy policy: one toggle
// per PHI category. There is deliberately no SSN toggle: SSNs are always
// excluded from exports regardless of policy.
type ExportConfig struct {
	IncludeNames      bool `json:"includeNames"`
	IncludeAddresses  bool `json:"includeAddresses"`
	IncludePhones     bool `json:"includePhones"`
	IncludeDOB        bool `json:"includeDOB"`
	IncludeSignatures bool `json:"includeSignatures"`
	IncludeEmails     bool `json:"includeEmails"`
	IncludeInsurance  bool `json:"includeInsurance"`
}

// AllowAll returns a policy with every toggle enabled. SSN fields are still
// excluded.
func AllowAll() ExportConfig {
	return ExportConfig{
		IncludeNames:      true,
		IncludeAddresses:  true,
		IncludePhones:     true,
		IncludeDOB:        true,
		IncludeSignatures: true,
		IncludeEmails:     true,
		IncludeInsurance:  true,
	}
}

// Excluded reports whether a single key is dropped under the policy.
func (c ExportConfig) Excluded(key string) bool {
	if IsSSNField(key) {
		return true
	}
	if !c.IncludeNames && IsNameField(key) {
		return true
	}
	if !c.IncludeAddresses && IsAddressField(key) {
		return true
	}
	if !c.IncludePhones && IsPhoneField(key) {
		return true
	}
	if !c.IncludeDOB && IsDOBField(key) {
		return true
	}
	if !c.IncludeSignatures && IsSignatureField(key) {
		return true
	}
	if !c.IncludeEmails && IsEmailField(key) {
		return true
	}
	if !c.IncludeInsurance && IsInsuranceField(key) {
		return true
	}
	return false
}

// ApplyExportFilters returns a copy of the record with every key dropped
// that falls under a disabled category. Surviving values are copied
// unchanged: exclusion is binary, never masking or truncation. Fields
// matching no PHI category always pass through, even when every toggle is
// off. The input record is never mutated.
func ApplyExportFilters(record flat.Record, config ExportConfig) flat.Record {
	out := make(flat.Record, len(record))
	for key, value := range record {
		if config.Excluded(key) {
			continue
		}
		out[key] = value
	}
	return out
}

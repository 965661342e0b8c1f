package phi

import "testing"

func TestIsNameField(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"clientName", true},
		{"consentClientName", true},
		{"emergencyContact1_name", true},
		{"clientSignature", true},
		{"guardianName", true},
		{"primaryDiagnosis", false},
		// lowercase "timestamp" carve-out is literal and case-sensitive
		{"clientNametimestamp", false},
		{"clientNameTimestamp", true},
		{"signature_timestamp", false},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			if got := IsNameField(tc.key); got != tc.want {
				t.Fatalf("IsNameField(%q) = %v, want %v", tc.key, got, tc.want)
			}
		})
	}
}

func TestSubstringFalsePositivesAreAccepted(t *testing.T) {
	// Containment matching is deliberately loose; these are documented
	// false positives, not bugs.
	if !IsPhoneField("phonetics") {
		t.Fatal("phonetics should match the phone category")
	}
	if !IsDOBField("doberman") {
		t.Fatal("doberman should match the dateOfBirth category")
	}
}

func TestSSNIsCaseInsensitive(t *testing.T) {
	for _, key := range []string{"clientSSN", "ssn", "SsnLast4", "socialSecurityNumber"} {
		if !IsSSNField(key) {
			t.Fatalf("IsSSNField(%q) = false, want true", key)
		}
	}
	if IsSSNField("session") {
		t.Fatal("session should not match the ssn category")
	}
}

func TestClassify(t *testing.T) {
	t.Run("multi-category key", func(t *testing.T) {
		cats := Classify("clientSignature")
		want := map[Category]bool{CategoryName: true, CategorySignature: true}
		if len(cats) != len(want) {
			t.Fatalf("Classify(clientSignature) = %v", cats)
		}
		for _, c := range cats {
			if !want[c] {
				t.Fatalf("unexpected category %q", c)
			}
		}
	})

	t.Run("unrecognized key has no categories", func(t *testing.T) {
		if cats := Classify("primaryDiagnosis"); len(cats) != 0 {
			t.Fatalf("Classify(primaryDiagnosis) = %v, want empty", cats)
		}
		if IsPHIField("primaryDiagnosis") {
			t.Fatal("primaryDiagnosis should not be PHI")
		}
	})

	t.Run("category coverage", func(t *testing.T) {
		cases := map[string]Category{
			"clientAddress":         CategoryAddress,
			"clientCity":            CategoryAddress,
			"doctor1_phone":         CategoryPhone,
			"clientDOB":             CategoryDateOfBirth,
			"clientEmail":           CategoryEmail,
			"insurancePolicyNumber": CategoryInsurance,
			"medicaidNumber":        CategoryInsurance,
		}
		for key, want := range cases {
			found := false
			for _, c := range Classify(key) {
				if c == want {
					found = true
				}
			}
			if !found {
				t.Fatalf("Classify(%q) missing %q", key, want)
			}
		}
	})
}

package contract

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/sushil-negi/intake-automation-sub003/pkg/flat"
)

func fullContract() *Contract {
	return &Contract{
		ServiceInfo: ServiceInfo{
			ClientName:    "Jane Doe",
			ClientAddress: "12 Oak St",
			ClientPhone:   "555-0100",
			StartDate:     "2025-07-01",
			ServiceType:   "Personal Care",
			CareLevel:     "Level 2",
		},
		Schedule: Schedule{
			Days:           []string{"Monday", "Wednesday", "Friday"},
			Hours:          "9:00 AM - 1:00 PM",
			VisitFrequency: "3x weekly",
		},
		Payment: Payment{
			HourlyRate:        "32.50",
			BillingCycle:      "Monthly",
			PayerName:         "John Doe",
			InsuranceProvider: "Acme Health",
			PolicyNumber:      "POL-88",
		},
		Terms: Terms{
			CancellationPolicy: "48 hours notice",
			AgreedToTerms:      true,
		},
		Signatures: Signatures{
			ClientName: "Jane Doe",
			Client: SignatureBlock{
				Signature: "data:image/png;base64,AAAA",
				SignedAt:  "2025-07-01T10:00:00Z",
			},
			AgencyRep: AgencySignature{
				Name:      "Pat Smith",
				Signature: "Pat Smith",
				SignedAt:  "2025-07-01T10:05:00Z",
			},
		},
	}
}

func toDocument(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return doc
}

func TestRoundTrip(t *testing.T) {
	original := fullContract()
	record, err := Flatten(toDocument(t, original))
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}

	got := Unflatten(record)
	if !reflect.DeepEqual(got, original) {
		t.Fatalf("round trip mismatch:\n got: %+v\nwant: %+v", got, original)
	}
}

func TestFlattenRejectsWrongFormType(t *testing.T) {
	doc := map[string]any{
		"clientInfo": map[string]any{"name": "Jane Doe"},
		"medical":    map[string]any{},
	}
	_, err := Flatten(doc)
	if err == nil {
		t.Fatal("expected error for document without serviceInfo")
	}
	if !strings.Contains(err.Error(), "serviceInfo") {
		t.Fatalf("error should name the missing section: %v", err)
	}
	if !strings.Contains(err.Error(), "clientInfo") || !strings.Contains(err.Error(), "medical") {
		t.Fatalf("error should list the actual top-level keys: %v", err)
	}
}

func TestScheduleDaysJoin(t *testing.T) {
	record := FlattenRecord(fullContract())
	if record["serviceDays"] != "Monday; Wednesday; Friday" {
		t.Fatalf("serviceDays = %q", record["serviceDays"])
	}

	c := Unflatten(flat.Record{"serviceDays": "Tuesday; Thursday"})
	if !reflect.DeepEqual(c.Schedule.Days, []string{"Tuesday", "Thursday"}) {
		t.Fatalf("days = %v", c.Schedule.Days)
	}
}

func TestAgreedToTermsLiteral(t *testing.T) {
	record := FlattenRecord(fullContract())
	if record["agreedToTerms"] != "Yes" {
		t.Fatalf("agreedToTerms = %q, want Yes", record["agreedToTerms"])
	}

	record = FlattenRecord(Default())
	if record["agreedToTerms"] != "No" {
		t.Fatalf("agreedToTerms = %q, want No", record["agreedToTerms"])
	}

	if Unflatten(flat.Record{"agreedToTerms": "yes"}).Terms.AgreedToTerms {
		t.Fatal("only the exact literal Yes should parse true")
	}
}

func TestSignatureIdentityPropagation(t *testing.T) {
	c := Unflatten(flat.Record{
		"clientName":          "Jane Doe",
		"signatureClientName": "Stale Copy",
	})
	if c.Signatures.ClientName != "Jane Doe" {
		t.Fatalf("signatures.clientName = %q, want propagated serviceInfo name", c.Signatures.ClientName)
	}
}

func TestUnflattenNeverFails(t *testing.T) {
	got := Unflatten(flat.Record{})
	if !reflect.DeepEqual(got, Default()) {
		t.Fatalf("empty record should yield the default, got %+v", got)
	}

	got = Unflatten(flat.Record{"nonsense": "value", "agreedToTerms": "maybe"})
	if got.Terms.AgreedToTerms {
		t.Fatal("malformed boolean should parse false")
	}
}

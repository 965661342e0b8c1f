package contract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sushil-negi/intake-automation-sub003/pkg/flat"
)

// scalarField binds one flat key to its getter and setter, keeping the
// flatten and unflatten rules for a field in one row.
type scalarField struct {
	key string
	get func(c *Contract) string
	set func(c *Contract, v string)
}

var scalarFields = []scalarField{
	{key: "clientName", get: func(c *Contract) string { return c.ServiceInfo.ClientName }, set: func(c *Contract, v string) { c.ServiceInfo.ClientName = v }},
	{key: "clientAddress", get: func(c *Contract) string { return c.ServiceInfo.ClientAddress }, set: func(c *Contract, v string) { c.ServiceInfo.ClientAddress = v }},
	{key: "clientPhone", get: func(c *Contract) string { return c.ServiceInfo.ClientPhone }, set: func(c *Contract, v string) { c.ServiceInfo.ClientPhone = v }},
	{key: "startDate", get: func(c *Contract) string { return c.ServiceInfo.StartDate }, set: func(c *Contract, v string) { c.ServiceInfo.StartDate = v }},
	{key: "serviceType", get: func(c *Contract) string { return c.ServiceInfo.ServiceType }, set: func(c *Contract, v string) { c.ServiceInfo.ServiceType = v }},
	{key: "careLevel", get: func(c *Contract) string { return c.ServiceInfo.CareLevel }, set: func(c *Contract, v string) { c.ServiceInfo.CareLevel = v }},
	{key: "serviceHours", get: func(c *Contract) string { return c.Schedule.Hours }, set: func(c *Contract, v string) { c.Schedule.Hours = v }},
	{key: "visitFrequency", get: func(c *Contract) string { return c.Schedule.VisitFrequency }, set: func(c *Contract, v string) { c.Schedule.VisitFrequency = v }},
	{key: "hourlyRate", get: func(c *Contract) string { return c.Payment.HourlyRate }, set: func(c *Contract, v string) { c.Payment.HourlyRate = v }},
	{key: "billingCycle", get: func(c *Contract) string { return c.Payment.BillingCycle }, set: func(c *Contract, v string) { c.Payment.BillingCycle = v }},
	{key: "payerName", get: func(c *Contract) string { return c.Payment.PayerName }, set: func(c *Contract, v string) { c.Payment.PayerName = v }},
	{key: "insuranceProvider", get: func(c *Contract) string { return c.Payment.InsuranceProvider }, set: func(c *Contract, v string) { c.Payment.InsuranceProvider = v }},
	{key: "insurancePolicyNumber", get: func(c *Contract) string { return c.Payment.PolicyNumber }, set: func(c *Contract, v string) { c.Payment.PolicyNumber = v }},
	{key: "cancellationPolicy", get: func(c *Contract) string { return c.Terms.CancellationPolicy }, set: func(c *Contract, v string) { c.Terms.CancellationPolicy = v }},
	{key: "signatureClientName", get: func(c *Contract) string { return c.Signatures.ClientName }, set: func(c *Contract, v string) { c.Signatures.ClientName = v }},
	{key: "clientSignature", get: func(c *Contract) string { return c.Signatures.Client.Signature }, set: func(c *Contract, v string) { c.Signatures.Client.Signature = v }},
	{key: "clientSignatureTimestamp", get: func(c *Contract) string { return c.Signatures.Client.SignedAt }, set: func(c *Contract, v string) { c.Signatures.Client.SignedAt = v }},
	{key: "agencyRepName", get: func(c *Contract) string { return c.Signatures.AgencyRep.Name }, set: func(c *Contract, v string) { c.Signatures.AgencyRep.Name = v }},
	{key: "agencyRepSignature", get: func(c *Contract) string { return c.Signatures.AgencyRep.Signature }, set: func(c *Contract, v string) { c.Signatures.AgencyRep.Signature = v }},
	{key: "agencyRepSignatureTimestamp", get: func(c *Contract) string { return c.Signatures.AgencyRep.SignedAt }, set: func(c *Contract, v string) { c.Signatures.AgencyRep.SignedAt = v }},
}

// Flatten converts a contract document into a flat export record. It fails
// only when the document lacks the serviceInfo discriminator section; every
// per-field problem is absorbed by defaults instead.
func Flatten(doc map[string]any) (flat.Record, error) {
	if _, ok := doc["serviceInfo"]; !ok {
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("contract flatten: document has no serviceInfo section (top-level keys: %s)", strings.Join(keys, ", "))
	}
	c, err := decodeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("contract flatten: %w", err)
	}
	return FlattenRecord(c), nil
}

func decodeDocument(doc map[string]any) (*Contract, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var c Contract
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &c, nil
}

// FlattenRecord flattens a typed contract.
func FlattenRecord(c *Contract) flat.Record {
	out := make(flat.Record)
	for _, f := range scalarFields {
		out[f.key] = f.get(c)
	}
	out["serviceDays"] = flat.JoinList(c.Schedule.Days)
	out["agreedToTerms"] = flat.FormatBool(c.Terms.AgreedToTerms)
	return out
}

// Unflatten rebuilds a contract from a flat record, starting from the
// canonical default. It never fails; absent keys keep their defaults.
func Unflatten(record flat.Record) *Contract {
	c := Default()
	for _, f := range scalarFields {
		if record.Has(f.key) {
			f.set(c, record.Get(f.key))
		}
	}
	c.Schedule.Days = flat.SplitList(record.Get("serviceDays"))
	c.Terms.AgreedToTerms = flat.ParseBool(record.Get("agreedToTerms"))

	// The signing section carries a denormalized identity copy; it is
	// re-derived from serviceInfo on every unflatten.
	c.Signatures.ClientName = c.ServiceInfo.ClientName
	return c
}

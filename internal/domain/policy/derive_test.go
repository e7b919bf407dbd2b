package policy

import "testing"

func TestRequiresDPO(t *testing.T) {
	cases := []struct {
		name         string
		dataTypes    []string
		gdprFlag     bool
		jurisdiction string
		want         bool
	}{
		{"health data with gdpr flag", []string{DataTypeHealth}, true, JurisdictionUS, true},
		{"health data without gdpr", []string{DataTypeHealth}, false, JurisdictionUS, false},
		{"ordinary data with gdpr flag", []string{DataTypeUsage}, true, JurisdictionUS, false},
		{"health data via EU jurisdiction", []string{DataTypeHealth}, false, JurisdictionEU, true},
		{"biometric data with gdpr flag", []string{DataTypeBiometric}, true, JurisdictionOther, true},
		{"government id with gdpr flag", []string{DataTypePersonal, DataTypeGovernmentID}, true, JurisdictionUS, true},
		{"no data types", nil, true, JurisdictionEU, false},
	}

	for _, tc := range cases {
		record := DisclosureRecord{
			DataTypes:     tc.dataTypes,
			GDPRCompliant: tc.gdprFlag,
			Jurisdiction:  tc.jurisdiction,
		}
		if got := RequiresDPO(record); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestNormalizeDropsOfficerWhenNotRequired(t *testing.T) {
	record := DisclosureRecord{
		DataTypes:     []string{DataTypeUsage},
		GDPRCompliant: true,
		RequiresDPO:   true,
		Officer:       &OfficerRecord{Name: "Jo Bloggs", Email: "dpo@example.com"},
	}

	normalized := Normalize(record)
	if normalized.RequiresDPO {
		t.Fatal("expected RequiresDPO recomputed to false")
	}
	if normalized.Officer != nil {
		t.Fatal("expected officer sub-record dropped")
	}
}

func TestNormalizeKeepsOfficerWhenRequired(t *testing.T) {
	record := DisclosureRecord{
		DataTypes:    []string{DataTypeHealth},
		Jurisdiction: JurisdictionEU,
		Officer:      &OfficerRecord{Name: "Jo Bloggs", Email: "dpo@example.com"},
	}

	normalized := Normalize(record)
	if !normalized.RequiresDPO {
		t.Fatal("expected RequiresDPO recomputed to true")
	}
	if normalized.Officer == nil || normalized.Officer.Name != "Jo Bloggs" {
		t.Fatal("expected officer sub-record preserved")
	}
}

package policy

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

func validRecord() DisclosureRecord {
	return DisclosureRecord{
		BusinessName:       "Acme Inc",
		BusinessType:       "E-commerce",
		Address:            "1 Main Street, Springfield",
		WebsiteURL:         "https://acme.example.com",
		ContactEmail:       "privacy@acme.example.com",
		Jurisdiction:       JurisdictionUS,
		EffectiveDate:      time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		VersionNumber:      "1.0",
		DataTypes:          []string{DataTypePersonal, DataTypeUsage},
		DataPurposes:       []string{"Service Provision"},
		Retention:          RetentionOneYear,
		ThirdPartyServices: []string{},
		DataTransfers:      []string{},
		TargetAudience:     []string{"General Public"},
		SecurityMeasures:   []string{"Encryption at Rest"},
		BreachNotification: BreachSeventyTwo,
	}
}

func mustAssemble(t *testing.T, r DisclosureRecord) AssembledDocument {
	t.Helper()
	doc, err := Assemble(r)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	return doc
}

var sectionNumberRe = regexp.MustCompile(`(?m)^#+ (\d+)\.`)

func sectionNumbers(t *testing.T, text string) []int {
	t.Helper()
	matches := sectionNumberRe.FindAllStringSubmatch(text, -1)
	numbers := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			t.Fatalf("bad section number %q: %v", m[1], err)
		}
		numbers = append(numbers, n)
	}
	return numbers
}

func TestAssembleDeterministic(t *testing.T) {
	record := validRecord()
	record.GDPRCompliant = true
	record.CCPACompliant = true
	record.CookieUsage = true

	first := mustAssemble(t, record)
	second := mustAssemble(t, record)

	if first.Text != second.Text {
		t.Fatal("expected byte-identical output for identical input")
	}
	if first.EffectiveDate != second.EffectiveDate {
		t.Fatalf("effective date drift: %q vs %q", first.EffectiveDate, second.EffectiveDate)
	}
}

func TestSectionNumberingContiguous(t *testing.T) {
	// All 32 combinations of the five optional-section flags.
	for mask := 0; mask < 32; mask++ {
		record := validRecord()
		record.GDPRCompliant = mask&1 != 0
		record.CCPACompliant = mask&2 != 0
		record.PIPEDACompliant = mask&4 != 0
		record.CookieUsage = mask&8 != 0
		if mask&16 != 0 {
			record.GDPRCompliant = true
			record.DataTypes = append(record.DataTypes, DataTypeHealth)
		}
		record = Normalize(record)

		doc := mustAssemble(t, record)
		numbers := sectionNumbers(t, doc.Text)
		if len(numbers) == 0 {
			t.Fatalf("mask %d: no numbered sections found", mask)
		}
		for i, n := range numbers {
			if n != i+1 {
				t.Fatalf("mask %d: expected section %d at position %d, got %d\nnumbers: %v", mask, i+1, i, n, numbers)
			}
		}
	}
}

func TestBulletOrderPreserved(t *testing.T) {
	record := validRecord()
	record.DataTypes = []string{DataTypeCookies, DataTypeUsage, DataTypePersonal}

	doc := mustAssemble(t, record)

	first := strings.Index(doc.Text, "- "+DataTypeCookies)
	second := strings.Index(doc.Text, "- "+DataTypeUsage)
	third := strings.Index(doc.Text, "- "+DataTypePersonal)
	if first == -1 || second == -1 || third == -1 {
		t.Fatalf("expected all data type bullets in output")
	}
	if !(first < second && second < third) {
		t.Fatalf("bullet order not preserved: positions %d, %d, %d", first, second, third)
	}
}

func TestOptionalSectionPresence(t *testing.T) {
	headings := []string{
		"YOUR RIGHTS UNDER GDPR",
		"YOUR RIGHTS UNDER CCPA/CPRA",
		"YOUR RIGHTS UNDER PIPEDA",
	}

	none := mustAssemble(t, validRecord())
	for _, h := range headings {
		if strings.Contains(none.Text, h) {
			t.Fatalf("unexpected heading %q with all compliance flags false", h)
		}
	}

	record := validRecord()
	record.GDPRCompliant = true
	record.CCPACompliant = true
	record.PIPEDACompliant = true
	all := mustAssemble(t, record)
	for _, h := range headings {
		if count := strings.Count(all.Text, h); count != 1 {
			t.Fatalf("expected heading %q exactly once, got %d", h, count)
		}
	}
}

func TestEffectiveDateConsistent(t *testing.T) {
	doc := mustAssemble(t, validRecord())

	if doc.EffectiveDate != "April 5, 2025" {
		t.Fatalf("unexpected formatted date: %q", doc.EffectiveDate)
	}
	if !strings.Contains(doc.Text, "Effective Date: "+doc.EffectiveDate) {
		t.Fatal("title block missing formatted effective date")
	}
	if !strings.Contains(doc.Text, "Last Updated: "+doc.EffectiveDate) {
		t.Fatal("footer missing formatted effective date")
	}
}

func TestAssembleEndToEnd(t *testing.T) {
	record := validRecord()
	record.GDPRCompliant = true

	doc := mustAssemble(t, record)

	expectations := []string{
		"# 1. PRIVACY POLICY",
		"## 2. INTRODUCTION",
		"## 3. INFORMATION WE COLLECT",
		"## 4. HOW WE USE YOUR INFORMATION",
		"## 5. DATA RETENTION",
		"## 6. SHARING AND DISCLOSURE",
		"## 7. INTERNATIONAL DATA TRANSFERS",
		"## 8. YOUR RIGHTS UNDER GDPR",
		"## 9. SECURITY",
		"## 10. DATA BREACH NOTIFICATION",
		"## CONTACT US",
		"we do not share your personal information with third parties",
		"we do not transfer your personal information internationally",
		"- Personal Information",
		"- Usage Data",
		"- Service Provision",
		"1-year",
		"72-hours",
	}
	for _, want := range expectations {
		if !strings.Contains(doc.Text, want) {
			t.Fatalf("document missing %q\n%s", want, doc.Text)
		}
	}

	if strings.Contains(doc.Text, "## 11.") {
		t.Fatal("contact block must not carry a section number")
	}
}

func TestAssembleMissingRequiredField(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*DisclosureRecord)
	}{
		{"businessName", func(r *DisclosureRecord) { r.BusinessName = "" }},
		{"websiteUrl", func(r *DisclosureRecord) { r.WebsiteURL = " " }},
		{"contactEmail", func(r *DisclosureRecord) { r.ContactEmail = "" }},
		{"effectiveDate", func(r *DisclosureRecord) { r.EffectiveDate = time.Time{} }},
		{"versionNumber", func(r *DisclosureRecord) { r.VersionNumber = "" }},
		{"retention", func(r *DisclosureRecord) { r.Retention = "" }},
		{"breachNotification", func(r *DisclosureRecord) { r.BreachNotification = "" }},
	}

	for _, tc := range cases {
		record := validRecord()
		tc.mutate(&record)

		doc, err := Assemble(record)
		if err == nil {
			t.Fatalf("%s: expected error", tc.field)
		}
		missing, ok := err.(*MissingFieldError)
		if !ok {
			t.Fatalf("%s: expected MissingFieldError, got %T", tc.field, err)
		}
		if missing.Field != tc.field {
			t.Fatalf("expected field %q, got %q", tc.field, missing.Field)
		}
		if doc.Text != "" {
			t.Fatalf("%s: expected no partial output", tc.field)
		}
	}
}

func TestAssembleDPOSectionRendersBlankOfficer(t *testing.T) {
	record := validRecord()
	record.GDPRCompliant = true
	record.DataTypes = []string{DataTypeHealth}
	record = Normalize(record)

	doc := mustAssemble(t, record)
	if !strings.Contains(doc.Text, "DATA PROTECTION OFFICER") {
		t.Fatal("expected DPO section")
	}
	if !strings.Contains(doc.Text, "Name: \n") {
		t.Fatal("expected blank officer name placeholder")
	}
}

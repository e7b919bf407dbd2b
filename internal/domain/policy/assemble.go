package policy

import (
	"fmt"
	"strings"
)

// DateLayout is the long form used everywhere a date appears in a document.
const DateLayout = "January 2, 2006"

// section is one block of the fixed document skeleton. Numbered sections
// consume the running counter when present; unnumbered blocks (contact,
// footer) render without one.
type section struct {
	present  bool
	numbered bool
	build    func(b *strings.Builder, n int)
}

// Assemble renders a disclosure record into a policy document. It is pure:
// same record in, byte-identical document out. The only failure mode is an
// absent required scalar, reported before any output is produced.
//
// Section numbers are assigned by a single running counter over the ordered
// skeleton, so the visible numbering stays contiguous no matter which of
// the optional GDPR/CCPA/PIPEDA/cookies/DPO blocks are present.
func Assemble(r DisclosureRecord) (AssembledDocument, error) {
	if err := checkRequired(r); err != nil {
		return AssembledDocument{}, err
	}

	// Formatted once and reused verbatim in the title block and the footer
	// so the two can never drift apart.
	effective := r.EffectiveDate.Format(DateLayout)

	sections := []section{
		{present: true, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "# %d. PRIVACY POLICY\n\n", n)
			fmt.Fprintf(b, "Version: %s\n", r.VersionNumber)
			fmt.Fprintf(b, "Effective Date: %s\n", effective)
			if r.LastReview != nil {
				fmt.Fprintf(b, "Last Reviewed: %s\n", r.LastReview.Format(DateLayout))
			}
			b.WriteString("\n")
		}},
		{present: true, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. INTRODUCTION\n\n", n)
			fmt.Fprintf(b, "This Privacy Policy describes how %s collects, uses, and protects personal information when you use %s.\n\n", r.BusinessName, r.WebsiteURL)
			if len(r.TargetAudience) > 0 {
				b.WriteString("This policy is intended for the following audiences:\n\n")
				writeBullets(b, r.TargetAudience)
			}
		}},
		{present: true, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. INFORMATION WE COLLECT\n\n", n)
			b.WriteString("We collect the following types of information:\n\n")
			writeBullets(b, r.DataTypes)
		}},
		{present: true, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. HOW WE USE YOUR INFORMATION\n\n", n)
			b.WriteString("We use the collected information for the following purposes:\n\n")
			writeBullets(b, r.DataPurposes)
		}},
		{present: true, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. DATA RETENTION\n\n", n)
			fmt.Fprintf(b, "We retain personal information for the following period: %s.\n\n", r.Retention)
		}},
		{present: true, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. SHARING AND DISCLOSURE\n\n", n)
			if len(r.ThirdPartyServices) > 0 {
				b.WriteString("We share personal information with the following third-party services:\n\n")
				writeBullets(b, r.ThirdPartyServices)
			} else {
				b.WriteString("At this time, we do not share your personal information with third parties.\n\n")
			}
		}},
		{present: true, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. INTERNATIONAL DATA TRANSFERS\n\n", n)
			if len(r.DataTransfers) > 0 {
				b.WriteString("Personal information may be transferred to and processed in the following regions:\n\n")
				writeBullets(b, r.DataTransfers)
			} else {
				b.WriteString("At this time, we do not transfer your personal information internationally.\n\n")
			}
		}},
		{present: r.GDPRCompliant, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. YOUR RIGHTS UNDER GDPR\n\n", n)
			b.WriteString("If you are located in the European Economic Area, you have the following rights regarding your personal data:\n\n")
			writeBullets(b, []string{
				"The right to access your personal data",
				"The right to rectification of inaccurate data",
				"The right to erasure",
				"The right to restrict processing",
				"The right to data portability",
				"The right to object to processing",
			})
			b.WriteString("You also have the right to lodge a complaint with a supervisory authority.\n\n")
		}},
		{present: r.CCPACompliant, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. YOUR RIGHTS UNDER CCPA/CPRA\n\n", n)
			b.WriteString("If you are a California resident, you have the following rights:\n\n")
			writeBullets(b, []string{
				"The right to know what personal information we collect and how it is used",
				"The right to delete personal information we have collected",
				"The right to correct inaccurate personal information",
				"The right to opt out of the sale or sharing of personal information",
				"The right to non-discrimination for exercising your rights",
			})
		}},
		{present: r.PIPEDACompliant, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. YOUR RIGHTS UNDER PIPEDA\n\n", n)
			b.WriteString("If you are located in Canada, you have the following rights:\n\n")
			writeBullets(b, []string{
				"The right to access personal information we hold about you",
				"The right to challenge the accuracy and completeness of your information",
				"The right to withdraw consent to collection, use, or disclosure",
				"The right to file a complaint with the Office of the Privacy Commissioner of Canada",
			})
		}},
		{present: true, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. SECURITY\n\n", n)
			b.WriteString("We implement the following measures to protect your personal information:\n\n")
			writeBullets(b, r.SecurityMeasures)
		}},
		{present: true, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. DATA BREACH NOTIFICATION\n\n", n)
			fmt.Fprintf(b, "In the event of a data breach affecting your personal information, we will notify affected users within the following timeframe: %s.\n\n", r.BreachNotification)
		}},
		{present: r.CookieUsage, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. COOKIES\n\n", n)
			b.WriteString("We use cookies and similar tracking technologies on our website. You can control cookies through your browser settings; disabling them may limit parts of the service.\n\n")
		}},
		{present: r.RequiresDPO, numbered: true, build: func(b *strings.Builder, n int) {
			fmt.Fprintf(b, "## %d. DATA PROTECTION OFFICER\n\n", n)
			b.WriteString("We have appointed a Data Protection Officer responsible for overseeing questions about this policy:\n\n")
			name, email := "", ""
			if r.Officer != nil {
				name, email = r.Officer.Name, r.Officer.Email
			}
			fmt.Fprintf(b, "Name: %s\n", name)
			fmt.Fprintf(b, "Email: %s\n\n", email)
		}},
		{present: true, build: func(b *strings.Builder, _ int) {
			b.WriteString("## CONTACT US\n\n")
			b.WriteString("If you have any questions about this Privacy Policy, please contact us:\n\n")
			writeBullets(b, []string{
				r.BusinessName,
				r.Address,
				r.ContactEmail,
				r.WebsiteURL,
			})
		}},
		{present: true, build: func(b *strings.Builder, _ int) {
			fmt.Fprintf(b, "Last Updated: %s\n", effective)
		}},
	}

	var b strings.Builder
	counter := 0
	for _, s := range sections {
		if !s.present {
			continue
		}
		if s.numbered {
			counter++
			s.build(&b, counter)
		} else {
			s.build(&b, 0)
		}
	}

	return AssembledDocument{Text: b.String(), EffectiveDate: effective}, nil
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func checkRequired(r DisclosureRecord) error {
	checks := []struct {
		field string
		ok    bool
	}{
		{"businessName", strings.TrimSpace(r.BusinessName) != ""},
		{"websiteUrl", strings.TrimSpace(r.WebsiteURL) != ""},
		{"contactEmail", strings.TrimSpace(r.ContactEmail) != ""},
		{"effectiveDate", !r.EffectiveDate.IsZero()},
		{"versionNumber", strings.TrimSpace(r.VersionNumber) != ""},
		{"retention", strings.TrimSpace(r.Retention) != ""},
		{"breachNotification", strings.TrimSpace(r.BreachNotification) != ""},
	}
	for _, c := range checks {
		if !c.ok {
			return &MissingFieldError{Field: c.field}
		}
	}
	return nil
}

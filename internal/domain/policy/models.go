package policy

import "time"

// OfficerRecord is the Data Protection Officer contact sub-record. It is
// only meaningful when the DPO derivation says one is required.
type OfficerRecord struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisclosureRecord is the structured set of answers describing a business's
// data practices. It is built once per generation request and never mutated
// by the assembler.
type DisclosureRecord struct {
	BusinessName  string     `json:"businessName"`
	BusinessType  string     `json:"businessType"`
	Address       string     `json:"address"`
	WebsiteURL    string     `json:"websiteUrl"`
	ContactEmail  string     `json:"contactEmail"`
	Jurisdiction  string     `json:"jurisdiction"`
	EffectiveDate time.Time  `json:"effectiveDate"`
	VersionNumber string     `json:"versionNumber"`
	LastReview    *time.Time `json:"lastReviewDate,omitempty"`

	DataTypes          []string `json:"dataTypes"`
	DataPurposes       []string `json:"dataPurposes"`
	Retention          string   `json:"retention"`
	ThirdPartyServices []string `json:"thirdPartyServices"`
	DataTransfers      []string `json:"dataTransfers"`

	GDPRCompliant   bool `json:"gdprCompliant"`
	CCPACompliant   bool `json:"ccpaCompliant"`
	PIPEDACompliant bool `json:"pipedaCompliant"`
	CookieUsage     bool `json:"cookieUsage"`

	// RequiresDPO is derived from DataTypes and GDPR applicability. The
	// service recomputes it before every assembly and persist; it is never
	// user-editable.
	RequiresDPO bool           `json:"requiresDpo"`
	Officer     *OfficerRecord `json:"dpoOfficer,omitempty"`

	TargetAudience     []string `json:"targetAudience"`
	SecurityMeasures   []string `json:"securityMeasures"`
	BreachNotification string   `json:"breachNotification"`
}

// AssembledDocument is the generated policy text plus the formatted
// effective-date string used verbatim in both the title block and the
// trailing Last Updated stamp.
type AssembledDocument struct {
	Text          string `json:"text"`
	EffectiveDate string `json:"effectiveDate"`
}

// Policy is a saved generation: the disclosure record that produced it and
// the assembled document text.
type Policy struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Name      string           `json:"name"`
	Record    DisclosureRecord `json:"record"`
	Document  string           `json:"document"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// PolicySummary is the list-view projection, without record or document.
type PolicySummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

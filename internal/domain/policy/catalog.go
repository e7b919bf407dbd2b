package policy

const (
	DataTypePersonal     = "Personal Information"
	DataTypeContact      = "Contact Information"
	DataTypePayment      = "Payment Information"
	DataTypeUsage        = "Usage Data"
	DataTypeLocation     = "Location Data"
	DataTypeDevice       = "Device Information"
	DataTypeCookies      = "Cookies"
	DataTypeHealth       = "Health Data"
	DataTypeBiometric    = "Biometric Data"
	DataTypeGovernmentID = "Government ID Numbers"
	DataTypeOther        = "Other"
)

const (
	JurisdictionEU        = "EU"
	JurisdictionUS        = "US"
	JurisdictionUK        = "UK"
	JurisdictionCanada    = "Canada"
	JurisdictionAustralia = "Australia"
	JurisdictionJapan     = "Japan"
	JurisdictionOther     = "Other"
)

const (
	RetentionAsNeeded   = "as-needed"
	RetentionOneYear    = "1-year"
	RetentionTwoYears   = "2-years"
	RetentionFiveYears  = "5-years"
	RetentionIndefinite = "indefinite"
)

const (
	BreachImmediate  = "immediately"
	BreachSeventyTwo = "72-hours"
	BreachSevenDays  = "7-days"
	BreachThirtyDays = "30-days"
)

// Catalog is the fixed vocabulary the intake form offers. Handlers validate
// submitted selections against it; the assembler itself does not.
type Catalog struct {
	DataTypes          []string `json:"dataTypes"`
	DataPurposes       []string `json:"dataPurposes"`
	ThirdPartyServices []string `json:"thirdPartyServices"`
	Jurisdictions      []string `json:"jurisdictions"`
	TargetAudiences    []string `json:"targetAudiences"`
	SecurityMeasures   []string `json:"securityMeasures"`
	Retentions         []string `json:"retentions"`
	BreachTimeframes   []string `json:"breachTimeframes"`
	TransferRegions    []string `json:"transferRegions"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		DataTypes: []string{
			DataTypePersonal,
			DataTypeContact,
			DataTypePayment,
			DataTypeUsage,
			DataTypeLocation,
			DataTypeDevice,
			DataTypeCookies,
			DataTypeHealth,
			DataTypeBiometric,
			DataTypeGovernmentID,
			DataTypeOther,
		},
		DataPurposes: []string{
			"Service Provision",
			"Account Management",
			"Payment Processing",
			"Analytics",
			"Marketing",
			"Customer Support",
			"Legal Compliance",
			"Other",
		},
		ThirdPartyServices: []string{
			"Google Analytics",
			"Stripe",
			"PayPal",
			"Mailchimp",
			"HubSpot",
			"Facebook Pixel",
			"Other",
		},
		Jurisdictions: []string{
			JurisdictionEU,
			JurisdictionUS,
			JurisdictionUK,
			JurisdictionCanada,
			JurisdictionAustralia,
			JurisdictionJapan,
			JurisdictionOther,
		},
		TargetAudiences: []string{
			"EU Citizens",
			"US Citizens",
			"Children",
			"Businesses",
			"General Public",
		},
		SecurityMeasures: []string{
			"Encryption at Rest",
			"Encryption in Transit",
			"Access Controls",
			"Regular Security Audits",
			"Employee Training",
			"Two-Factor Authentication",
		},
		Retentions: []string{
			RetentionAsNeeded,
			RetentionOneYear,
			RetentionTwoYears,
			RetentionFiveYears,
			RetentionIndefinite,
		},
		BreachTimeframes: []string{
			BreachImmediate,
			BreachSeventyTwo,
			BreachSevenDays,
			BreachThirtyDays,
		},
		TransferRegions: []string{
			JurisdictionEU,
			JurisdictionUS,
			JurisdictionUK,
			JurisdictionCanada,
			JurisdictionAustralia,
			JurisdictionJapan,
			JurisdictionOther,
		},
	}
}

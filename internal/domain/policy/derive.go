package policy

// Data categories whose collection under GDPR triggers the DPO requirement.
var specialCategories = map[string]struct{}{
	DataTypeHealth:       {},
	DataTypeBiometric:    {},
	DataTypeGovernmentID: {},
}

// GDPRApplies reports whether the record falls under GDPR, either through
// the explicit compliance flag or through an EU jurisdiction selection.
func GDPRApplies(r DisclosureRecord) bool {
	return r.GDPRCompliant || r.Jurisdiction == JurisdictionEU
}

// RequiresDPO is a pure function of the data-category set and GDPR
// applicability. Callers must recompute it whenever either input changes;
// it is never stored independently of them.
func RequiresDPO(r DisclosureRecord) bool {
	if !GDPRApplies(r) {
		return false
	}
	for _, category := range r.DataTypes {
		if _, ok := specialCategories[category]; ok {
			return true
		}
	}
	return false
}

// Normalize recomputes the derived fields on a record before assembly or
// persistence, dropping the officer sub-record when no DPO is required.
func Normalize(r DisclosureRecord) DisclosureRecord {
	r.RequiresDPO = RequiresDPO(r)
	if !r.RequiresDPO {
		r.Officer = nil
	}
	return r
}

package policyhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"policygen/internal/domain/billing"
	"policygen/internal/domain/export"
	"policygen/internal/domain/policy"
	"policygen/internal/platform/requestctx"
	"policygen/internal/transport/http/api"
	"policygen/internal/transport/http/middleware"
	"policygen/internal/transport/http/shared"
)

type Handler struct {
	Policies *policy.Service
	Billing  *billing.Service
}

func NewHandler(policies *policy.Service, billingSvc *billing.Service) *Handler {
	return &Handler{Policies: policies, Billing: billingSvc}
}

// recordPayload is the wire shape of a disclosure record. Dates arrive as
// YYYY-MM-DD strings from the intake form.
type recordPayload struct {
	BusinessName   string                `json:"businessName"`
	BusinessType   string                `json:"businessType"`
	Address        string                `json:"address"`
	WebsiteURL     string                `json:"websiteUrl"`
	ContactEmail   string                `json:"contactEmail"`
	Jurisdiction   string                `json:"jurisdiction"`
	EffectiveDate  string                `json:"effectiveDate"`
	VersionNumber  string                `json:"versionNumber"`
	LastReviewDate string                `json:"lastReviewDate"`
	DataTypes      []string              `json:"dataTypes"`
	DataPurposes   []string              `json:"dataPurposes"`
	Retention      string                `json:"retention"`
	ThirdParty     []string              `json:"thirdPartyServices"`
	DataTransfers  []string              `json:"dataTransfers"`
	GDPR           bool                  `json:"gdprCompliant"`
	CCPA           bool                  `json:"ccpaCompliant"`
	PIPEDA         bool                  `json:"pipedaCompliant"`
	CookieUsage    bool                  `json:"cookieUsage"`
	Officer        *policy.OfficerRecord `json:"dpoOfficer"`
	TargetAudience []string              `json:"targetAudience"`
	SecurityMeas   []string              `json:"securityMeasures"`
	BreachNotif    string                `json:"breachNotification"`
}

func (h *Handler) decodeRecord(w http.ResponseWriter, r *http.Request) (policy.DisclosureRecord, bool) {
	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return policy.DisclosureRecord{}, false
	}

	v := shared.NewValidator()
	v.Required("businessName", payload.BusinessName, "business name is required")
	v.Required("websiteUrl", payload.WebsiteURL, "website URL is required")
	v.Required("contactEmail", payload.ContactEmail, "contact email is required")
	v.Required("versionNumber", payload.VersionNumber, "version number is required")
	v.Required("retention", payload.Retention, "retention period is required")
	v.Required("breachNotification", payload.BreachNotif, "breach notification timeframe is required")
	v.Required("effectiveDate", payload.EffectiveDate, "effective date is required")

	v.URL("websiteUrl", payload.WebsiteURL, "must be a valid http or https URL")
	v.Email("contactEmail", payload.ContactEmail, "must be a valid email address")

	catalog := policy.DefaultCatalog()
	v.Enum("jurisdiction", payload.Jurisdiction, catalog.Jurisdictions, "must be a supported jurisdiction")
	v.Enum("retention", payload.Retention, catalog.Retentions, "must be a supported retention period")
	v.Enum("breachNotification", payload.BreachNotif, catalog.BreachTimeframes, "must be a supported breach notification timeframe")

	v.NonEmpty("dataTypes", payload.DataTypes, "at least one data type is required")
	v.NonEmpty("dataPurposes", payload.DataPurposes, "at least one data purpose is required")
	v.NonEmpty("targetAudience", payload.TargetAudience, "at least one target audience is required")
	v.NonEmpty("securityMeasures", payload.SecurityMeas, "at least one security measure is required")
	v.EnumEach("dataTypes", payload.DataTypes, catalog.DataTypes, "is not a supported data type")
	v.EnumEach("dataPurposes", payload.DataPurposes, catalog.DataPurposes, "is not a supported data purpose")
	v.EnumEach("thirdPartyServices", payload.ThirdParty, catalog.ThirdPartyServices, "is not a supported third-party service")
	v.EnumEach("dataTransfers", payload.DataTransfers, catalog.TransferRegions, "is not a supported transfer region")
	v.EnumEach("targetAudience", payload.TargetAudience, catalog.TargetAudiences, "is not a supported audience")
	v.EnumEach("securityMeasures", payload.SecurityMeas, catalog.SecurityMeasures, "is not a supported security measure")

	var effective time.Time
	if payload.EffectiveDate != "" {
		effective, _ = v.Date("effectiveDate", payload.EffectiveDate)
	}
	var lastReview *time.Time
	if payload.LastReviewDate != "" {
		if parsed, ok := v.Date("lastReviewDate", payload.LastReviewDate); ok {
			lastReview = &parsed
		}
	}

	record := policy.DisclosureRecord{
		BusinessName:       strings.TrimSpace(payload.BusinessName),
		BusinessType:       strings.TrimSpace(payload.BusinessType),
		Address:            strings.TrimSpace(payload.Address),
		WebsiteURL:         strings.TrimSpace(payload.WebsiteURL),
		ContactEmail:       strings.TrimSpace(payload.ContactEmail),
		Jurisdiction:       strings.TrimSpace(payload.Jurisdiction),
		EffectiveDate:      effective,
		VersionNumber:      strings.TrimSpace(payload.VersionNumber),
		LastReview:         lastReview,
		DataTypes:          payload.DataTypes,
		DataPurposes:       payload.DataPurposes,
		Retention:          payload.Retention,
		ThirdPartyServices: payload.ThirdParty,
		DataTransfers:      payload.DataTransfers,
		GDPRCompliant:      payload.GDPR,
		CCPACompliant:      payload.CCPA,
		PIPEDACompliant:    payload.PIPEDA,
		CookieUsage:        payload.CookieUsage,
		Officer:            payload.Officer,
		TargetAudience:     payload.TargetAudience,
		SecurityMeasures:   payload.SecurityMeas,
		BreachNotification: payload.BreachNotif,
	}

	// Collecting special-category data under GDPR makes the officer block
	// mandatory; the assembler itself renders whatever it is given.
	if policy.RequiresDPO(record) {
		if record.Officer == nil || strings.TrimSpace(record.Officer.Name) == "" {
			v.Add("dpoOfficer.name", "data protection officer name is required for the selected data types")
		}
		if record.Officer == nil || strings.TrimSpace(record.Officer.Email) == "" {
			v.Add("dpoOfficer.email", "data protection officer email is required for the selected data types")
		}
	}
	if record.Officer != nil {
		v.Email("dpoOfficer.email", record.Officer.Email, "must be a valid email address")
	}

	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return policy.DisclosureRecord{}, false
	}
	return record, true
}

func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	api.Success(w, policy.DefaultCatalog(), requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	record, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	doc, err := h.Policies.Preview(record)
	if err != nil {
		h.failGeneration(w, r, err)
		return
	}
	api.Success(w, doc, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}
	record, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	saved, err := h.Policies.Create(r.Context(), user.UserID, record, h.isPremium(r))
	if errors.Is(err, policy.ErrPolicyLimit) {
		message := fmt.Sprintf("free plan is limited to %d saved policies; upgrade to save more", policy.FreePlanPolicyLimit)
		api.Fail(w, http.StatusForbidden, "plan_limit", message, requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		h.failGeneration(w, r, err)
		return
	}
	api.Created(w, saved, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}
	record, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	saved, err := h.Policies.Update(r.Context(), user.UserID, chi.URLParam(r, "policyID"), record)
	if errors.Is(err, policy.ErrPolicyNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "policy not found", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		h.failGeneration(w, r, err)
		return
	}
	api.Success(w, saved, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 20, 100)
	summaries, err := h.Policies.List(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_failed", "failed to list policies", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"policies": summaries, "limit": page.Limit, "offset": page.Offset}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	saved, err := h.Policies.Get(r.Context(), user.UserID, chi.URLParam(r, "policyID"))
	if errors.Is(err, policy.ErrPolicyNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "policy not found", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_failed", "failed to load policy", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, saved, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	err := h.Policies.Delete(r.Context(), user.UserID, chi.URLParam(r, "policyID"))
	if errors.Is(err, policy.ErrPolicyNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "policy not found", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "delete_failed", "failed to delete policy", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestctx.GetRequestID(r.Context()))
}

// HandleExport renders a saved policy as a standalone HTML page or a PDF.
// Free-plan exports carry a watermark.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	saved, err := h.Policies.Get(r.Context(), user.UserID, chi.URLParam(r, "policyID"))
	if errors.Is(err, policy.ErrPolicyNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "policy not found", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "query_failed", "failed to load policy", requestctx.GetRequestID(r.Context()))
		return
	}

	opts := export.Options{
		Title:     saved.Name,
		Watermark: !h.isPremium(r),
	}
	fileBase := exportFileName(saved.Name)

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "html":
		rendered := export.RenderHTML(saved.Document, opts)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileBase+`.html"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(rendered)
	case "pdf":
		rendered, err := export.RenderPDF(saved.Document, opts)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render pdf", requestctx.GetRequestID(r.Context()))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileBase+`.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(rendered)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_format", "format must be html or pdf", requestctx.GetRequestID(r.Context()))
	}
}

func (h *Handler) isPremium(r *http.Request) bool {
	user, ok := middleware.GetUser(r.Context())
	if !ok || h.Billing == nil {
		return false
	}
	sub, err := h.Billing.GetSubscription(r.Context(), user.UserID)
	if err != nil {
		return false
	}
	return sub.Premium()
}

func (h *Handler) failGeneration(w http.ResponseWriter, r *http.Request, err error) {
	var missing *policy.MissingFieldError
	if errors.As(err, &missing) {
		shared.FailValidation(w, requestctx.GetRequestID(r.Context()), []shared.ValidationIssue{
			{Field: missing.Field, Reason: "is required"},
		})
		return
	}
	api.Fail(w, http.StatusInternalServerError, "generation_failed", "failed to generate policy", requestctx.GetRequestID(r.Context()))
}

func exportFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(name))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "privacy-policy"
	}
	return strings.ToLower(cleaned)
}

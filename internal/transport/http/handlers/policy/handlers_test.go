package policyhandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"policygen/internal/domain/policy"
)

func previewPayload() map[string]any {
	return map[string]any{
		"businessName":       "Acme Inc",
		"businessType":       "SaaS",
		"address":            "1 Main Street",
		"websiteUrl":         "https://acme.example",
		"contactEmail":       "privacy@acme.example",
		"jurisdiction":       "US",
		"effectiveDate":      "2025-04-05",
		"versionNumber":      "1.0",
		"dataTypes":          []string{"Personal Information"},
		"dataPurposes":       []string{"Service Provision"},
		"retention":          "1-year",
		"thirdPartyServices": []string{},
		"dataTransfers":      []string{},
		"cookieUsage":        true,
		"targetAudience":     []string{"General Public"},
		"securityMeasures":   []string{"Encryption in Transit"},
		"breachNotification": "72-hours",
	}
}

func postPreview(t *testing.T, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policy/preview", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler := NewHandler(policy.NewService(nil, nil), nil)
	handler.HandlePreview(rec, req)
	return rec
}

func TestHandlePreviewAssemblesDocument(t *testing.T) {
	rec := postPreview(t, previewPayload())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Text          string `json:"text"`
			EffectiveDate string `json:"effectiveDate"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !env.Success {
		t.Fatal("expected success envelope")
	}
	if !strings.Contains(env.Data.Text, "# 1. PRIVACY POLICY") {
		t.Fatal("expected assembled title block")
	}
	if env.Data.EffectiveDate != "April 5, 2025" {
		t.Fatalf("expected formatted effective date, got %q", env.Data.EffectiveDate)
	}
}

func TestHandlePreviewRejectsMissingFields(t *testing.T) {
	payload := previewPayload()
	delete(payload, "contactEmail")

	rec := postPreview(t, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "contactEmail") {
		t.Fatalf("expected contactEmail in validation details: %s", rec.Body.String())
	}
}

func TestHandlePreviewRejectsEmptySets(t *testing.T) {
	payload := previewPayload()
	payload["dataTypes"] = []string{}
	payload["dataPurposes"] = []string{}
	payload["targetAudience"] = []string{}
	payload["securityMeasures"] = []string{}

	rec := postPreview(t, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty selections, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, field := range []string{"dataTypes", "dataPurposes", "targetAudience", "securityMeasures"} {
		if !strings.Contains(body, field) {
			t.Fatalf("expected %s in validation details: %s", field, body)
		}
	}
}

func TestHandlePreviewRejectsOutOfCatalogSelections(t *testing.T) {
	payload := previewPayload()
	payload["dataTypes"] = []string{"Personal Information", "Totally Made Up Category"}

	rec := postPreview(t, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown data type, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Totally Made Up Category") {
		t.Fatalf("expected offending value in validation details: %s", rec.Body.String())
	}
}

func TestHandlePreviewRejectsMalformedWebsiteURL(t *testing.T) {
	payload := previewPayload()
	payload["websiteUrl"] = "not a url"

	rec := postPreview(t, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed URL, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "websiteUrl") {
		t.Fatalf("expected websiteUrl in validation details: %s", rec.Body.String())
	}
}

func TestHandlePreviewRejectsUnknownJurisdiction(t *testing.T) {
	payload := previewPayload()
	payload["jurisdiction"] = "Atlantis"

	rec := postPreview(t, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlePreviewRequiresOfficerForSpecialCategories(t *testing.T) {
	payload := previewPayload()
	payload["jurisdiction"] = "EU"
	payload["gdprCompliant"] = true
	payload["dataTypes"] = []string{"Health Data"}

	rec := postPreview(t, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without officer details, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dpoOfficer.name") {
		t.Fatalf("expected officer validation details: %s", rec.Body.String())
	}

	payload["dpoOfficer"] = map[string]string{"name": "Dana Officer", "email": "dpo@acme.example"}
	rec = postPreview(t, payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with officer details, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "DATA PROTECTION OFFICER") {
		t.Fatal("expected DPO section in assembled document")
	}
}

func TestExportFileName(t *testing.T) {
	cases := map[string]string{
		"Acme Inc":        "acme-inc",
		"  Acme / Inc  ":  "acme--inc",
		"!!!":             "privacy-policy",
		"":                "privacy-policy",
		"Already-Slugged": "already-slugged",
	}
	for input, want := range cases {
		if got := exportFileName(input); got != want {
			t.Fatalf("exportFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

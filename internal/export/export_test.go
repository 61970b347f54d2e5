package export

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"policyhub/api/internal/store"
)

type fakeStore struct {
	policies map[string]store.Policy
	bylaws   map[string]store.Bylaw
}

func (f *fakeStore) GetApprovedPolicyByCode(_ context.Context, code string) (store.Policy, error) {
	if item, ok := f.policies[code]; ok && item.Status == "approved" {
		return item, nil
	}
	return store.Policy{}, sql.ErrNoRows
}

func (f *fakeStore) GetApprovedBylawByID(_ context.Context, id string) (store.Bylaw, error) {
	if item, ok := f.bylaws[id]; ok && item.Status == "approved" {
		return item, nil
	}
	return store.Bylaw{}, sql.ErrNoRows
}

func TestRenderDocumentHTML(t *testing.T) {
	html, err := renderDocumentHTML(templateData{
		Kind:      "Policy",
		Code:      "1.1.1",
		Title:     "Travel & Expenses",
		Section:   "1",
		Content:   "Members shall file <claims> within 30 days.",
		UpdatedBy: "chair@example.org",
		UpdatedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("renderDocumentHTML: %v", err)
	}
	if !strings.Contains(html, "Policy 1.1.1") {
		t.Error("expected code in heading")
	}
	if !strings.Contains(html, "Travel &amp; Expenses") {
		t.Error("expected title to be HTML-escaped")
	}
	if !strings.Contains(html, "&lt;claims&gt;") {
		t.Error("expected content to be HTML-escaped")
	}
	if !strings.Contains(html, "Mar 10, 2025") {
		t.Error("expected formatted update date")
	}
}

func TestExportDraftPolicyNotFound(t *testing.T) {
	svc := NewService(&fakeStore{
		policies: map[string]store.Policy{
			"1.1.1": {PolicyID: "1.1.1", Name: "Travel", Status: "draft"},
		},
	})
	if _, err := svc.ExportPolicy(context.Background(), "1.1.1"); err == nil {
		t.Fatal("expected error exporting a draft policy")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"policy-1.1.1":     "policy-1.1.1",
		"Some Long Title!": "Some-Long-Title",
		"":                 "document",
		"///":              "document",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	got := percentEncodeForDataURL("a b&c")
	if got != "a%20b%26c" {
		t.Errorf("percentEncodeForDataURL = %q", got)
	}
}

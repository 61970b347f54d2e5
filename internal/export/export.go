// Package export renders approved documents as PDF handouts.
package export

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"policyhub/api/internal/store"
)

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
var ErrPDFDependencyMissing = errors.New("export pdf dependency missing")

// DataStore defines the interface for data access. Only approved documents
// are exportable.
type DataStore interface {
	GetApprovedPolicyByCode(ctx context.Context, code string) (store.Policy, error)
	GetApprovedBylawByID(ctx context.Context, id string) (store.Bylaw, error)
}

// Service provides document export functionality
type Service struct {
	store DataStore
}

// NewService creates a new export service
func NewService(store DataStore) *Service {
	return &Service{store: store}
}

// ExportPolicy renders an approved policy as a PDF.
func (s *Service) ExportPolicy(ctx context.Context, code string) (*Result, error) {
	policy, err := s.store.GetApprovedPolicyByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	html, err := renderDocumentHTML(templateData{
		Kind:      "Policy",
		Code:      policy.PolicyID,
		Title:     policy.Name,
		Section:   policy.Section,
		Content:   policy.Content,
		UpdatedBy: policy.UpdatedBy,
		UpdatedAt: policy.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return exportPDF(html, "policy-"+policy.PolicyID)
}

// ExportBylaw renders an approved bylaw as a PDF.
func (s *Service) ExportBylaw(ctx context.Context, id string) (*Result, error) {
	bylaw, err := s.store.GetApprovedBylawByID(ctx, id)
	if err != nil {
		return nil, err
	}

	html, err := renderDocumentHTML(templateData{
		Kind:      "Bylaw",
		Code:      strconv.Itoa(bylaw.Number),
		Title:     bylaw.Title,
		Content:   bylaw.Content,
		UpdatedBy: bylaw.UpdatedBy,
		UpdatedAt: bylaw.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return exportPDF(html, "bylaw-"+strconv.Itoa(bylaw.Number))
}

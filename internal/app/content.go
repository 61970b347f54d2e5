package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"policyhub/api/internal/store"
)

const (
	StatusDraft    = "draft"
	StatusApproved = "approved"
)

type PolicyInput struct {
	PolicyID *string `json:"policy_id"`
	Name     *string `json:"name"`
	Section  *string `json:"section"`
	Content  *string `json:"content"`
	Status   *string `json:"status"`
}

type BylawInput struct {
	Number  *int    `json:"bylaw_number"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

func (s *Service) ListPolicies(ctx context.Context, filter store.PolicyFilter) ([]map[string]any, error) {
	filter.Limit = clampLimit(filter.Limit)
	items, err := s.store.ListPolicies(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload := make([]map[string]any, 0, len(items))
	for _, item := range items {
		payload = append(payload, policyPayload(item))
	}
	return payload, nil
}

// ListApprovedPolicies serves the public catalogue. The status filter is
// pinned regardless of what the caller asked for.
func (s *Service) ListApprovedPolicies(ctx context.Context, filter store.PolicyFilter) ([]map[string]any, error) {
	filter.Status = StatusApproved
	return s.ListPolicies(ctx, filter)
}

// GetApprovedPolicy serves the public single-document read. A draft code
// resolves like a missing one.
func (s *Service) GetApprovedPolicy(ctx context.Context, code string) (map[string]any, error) {
	item, err := s.store.GetApprovedPolicyByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return policyPayload(item), nil
}

func (s *Service) CreatePolicy(ctx context.Context, input PolicyInput, actor Session) (map[string]any, error) {
	code := derefTrimmed(input.PolicyID)
	name := derefTrimmed(input.Name)
	section := derefTrimmed(input.Section)
	if code == "" || name == "" || section == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "policy_id, name, and section are required", nil)
	}

	if _, err := s.store.ResolvePolicyCode(ctx, code); err == nil {
		return nil, domainError(http.StatusBadRequest, "CONFLICT", "Policy ID already exists", map[string]any{"policy_id": code})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Status is forced to draft no matter what the caller supplied.
	item := store.Policy{
		ID:        uuid.NewString(),
		PolicyID:  code,
		Name:      name,
		Section:   section,
		Content:   deref(input.Content),
		Status:    StatusDraft,
		CreatedBy: actor.Email,
		UpdatedBy: actor.Email,
	}
	inserted, err := s.store.InsertPolicy(ctx, item)
	if err != nil {
		return nil, err
	}
	return policyPayload(inserted), nil
}

// UpdatePolicy applies a partial update. When anything changes relative to
// the current row, the pre-update row is snapshotted into the version
// history first. Editing always forces status back to draft; re-approval
// goes through ApprovePolicy.
func (s *Service) UpdatePolicy(ctx context.Context, code string, input PolicyInput, actor Session) (map[string]any, error) {
	current, err := s.store.GetPolicyByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	updated := current
	changed := false
	if input.Name != nil && *input.Name != current.Name {
		updated.Name = *input.Name
		changed = true
	}
	if input.Section != nil && *input.Section != current.Section {
		updated.Section = *input.Section
		changed = true
	}
	if input.Content != nil && *input.Content != current.Content {
		updated.Content = *input.Content
		changed = true
	}
	// The draft ratchet itself counts as a change: editing an approved
	// policy snapshots the approved state before demoting it.
	if current.Status != StatusDraft {
		changed = true
	}
	updated.Status = StatusDraft

	if changed {
		maxVersion, err := s.store.MaxPolicyVersion(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		if err := s.store.InsertPolicyVersion(ctx, store.PolicyVersion{
			ID:            uuid.NewString(),
			PolicyUUID:    current.ID,
			VersionNumber: maxVersion + 1,
			Name:          current.Name,
			Section:       current.Section,
			Content:       current.Content,
			Status:        current.Status,
			CreatedBy:     actor.Email,
		}); err != nil {
			return nil, err
		}
	}

	updated.UpdatedBy = actor.Email
	saved, err := s.store.UpdatePolicyByCode(ctx, code, updated)
	if err != nil {
		return nil, err
	}
	return policyPayload(saved), nil
}

func (s *Service) ApprovePolicy(ctx context.Context, code string, actor Session) (map[string]any, error) {
	current, err := s.store.GetPolicyByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusApproved {
		return nil, domainError(http.StatusBadRequest, "ALREADY_APPROVED", "Policy is already approved", nil)
	}
	saved, err := s.store.SetPolicyStatus(ctx, code, StatusApproved, actor.Email)
	if err != nil {
		return nil, err
	}
	return policyPayload(saved), nil
}

func (s *Service) DeletePolicy(ctx context.Context, code string) error {
	if _, err := s.store.GetPolicyByCode(ctx, code); err != nil {
		return err
	}
	return s.store.DeletePolicyByCode(ctx, code)
}

// PolicyVersions returns the snapshot history newest-first. The live row is
// not included.
func (s *Service) PolicyVersions(ctx context.Context, code string) ([]map[string]any, error) {
	surrogateID, err := s.store.ResolvePolicyCode(ctx, code)
	if err != nil {
		return nil, err
	}
	versions, err := s.store.ListPolicyVersions(ctx, surrogateID)
	if err != nil {
		return nil, err
	}
	payload := make([]map[string]any, 0, len(versions))
	for _, version := range versions {
		payload = append(payload, map[string]any{
			"id":             version.ID,
			"policy_uuid":    version.PolicyUUID,
			"version_number": version.VersionNumber,
			"name":           version.Name,
			"section":        version.Section,
			"content":        version.Content,
			"status":         version.Status,
			"created_at":     version.CreatedAt,
			"created_by":     version.CreatedBy,
		})
	}
	return payload, nil
}

func (s *Service) ListBylaws(ctx context.Context, filter store.BylawFilter) ([]map[string]any, error) {
	filter.Limit = clampLimit(filter.Limit)
	items, err := s.store.ListBylaws(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload := make([]map[string]any, 0, len(items))
	for _, item := range items {
		payload = append(payload, bylawPayload(item))
	}
	return payload, nil
}

func (s *Service) ListApprovedBylaws(ctx context.Context, filter store.BylawFilter) ([]map[string]any, error) {
	filter.Status = StatusApproved
	return s.ListBylaws(ctx, filter)
}

func (s *Service) GetApprovedBylaw(ctx context.Context, id string) (map[string]any, error) {
	item, err := s.store.GetApprovedBylawByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return bylawPayload(item), nil
}

func (s *Service) CreateBylaw(ctx context.Context, input BylawInput, actor Session) (map[string]any, error) {
	title := derefTrimmed(input.Title)
	if input.Number == nil || *input.Number <= 0 || title == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "bylaw_number (positive) and title are required", nil)
	}

	if _, err := s.store.GetBylawByNumber(ctx, *input.Number); err == nil {
		return nil, domainError(http.StatusBadRequest, "CONFLICT", "Bylaw number already exists", map[string]any{"bylaw_number": *input.Number})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	item := store.Bylaw{
		ID:        uuid.NewString(),
		Number:    *input.Number,
		Title:     title,
		Content:   deref(input.Content),
		Status:    StatusDraft,
		CreatedBy: actor.Email,
		UpdatedBy: actor.Email,
	}
	inserted, err := s.store.InsertBylaw(ctx, item)
	if err != nil {
		return nil, err
	}
	return bylawPayload(inserted), nil
}

// UpdateBylaw mirrors UpdatePolicy's draft ratchet but keeps no version
// history: bylaw edits overwrite in place.
func (s *Service) UpdateBylaw(ctx context.Context, id string, input BylawInput, actor Session) (map[string]any, error) {
	current, err := s.store.GetBylawByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := current
	if input.Number != nil && *input.Number != current.Number {
		if *input.Number <= 0 {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "bylaw_number must be positive", nil)
		}
		if _, err := s.store.GetBylawByNumber(ctx, *input.Number); err == nil {
			return nil, domainError(http.StatusBadRequest, "CONFLICT", "Bylaw number already exists", map[string]any{"bylaw_number": *input.Number})
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		updated.Number = *input.Number
	}
	if input.Title != nil {
		updated.Title = *input.Title
	}
	if input.Content != nil {
		updated.Content = *input.Content
	}
	updated.Status = StatusDraft
	updated.UpdatedBy = actor.Email

	saved, err := s.store.UpdateBylawByID(ctx, id, updated)
	if err != nil {
		return nil, err
	}
	return bylawPayload(saved), nil
}

func (s *Service) ApproveBylaw(ctx context.Context, id string, actor Session) (map[string]any, error) {
	current, err := s.store.GetBylawByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusApproved {
		return nil, domainError(http.StatusBadRequest, "ALREADY_APPROVED", "Bylaw is already approved", nil)
	}
	saved, err := s.store.SetBylawStatus(ctx, id, StatusApproved, actor.Email)
	if err != nil {
		return nil, err
	}
	return bylawPayload(saved), nil
}

func (s *Service) DeleteBylaw(ctx context.Context, id string) error {
	if _, err := s.store.GetBylawByID(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteBylawByID(ctx, id)
}

func policyPayload(item store.Policy) map[string]any {
	return map[string]any{
		"id":         item.ID,
		"policy_id":  item.PolicyID,
		"name":       item.Name,
		"section":    item.Section,
		"content":    item.Content,
		"status":     item.Status,
		"created_at": item.CreatedAt,
		"updated_at": item.UpdatedAt,
		"created_by": item.CreatedBy,
		"updated_by": item.UpdatedBy,
	}
}

func bylawPayload(item store.Bylaw) map[string]any {
	return map[string]any{
		"id":           item.ID,
		"bylaw_number": item.Number,
		"title":        item.Title,
		"content":      item.Content,
		"status":       item.Status,
		"created_at":   item.CreatedAt,
		"updated_at":   item.UpdatedAt,
		"created_by":   item.CreatedBy,
		"updated_by":   item.UpdatedBy,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefTrimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

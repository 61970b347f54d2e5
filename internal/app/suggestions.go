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
	SuggestionPending     = "pending"
	SuggestionReviewed    = "reviewed"
	SuggestionImplemented = "implemented"
	SuggestionRejected    = "rejected"
)

const (
	ReviewConfirm   = "confirm"
	ReviewNeedsWork = "needs_work"
)

var allowedSuggestionStatuses = map[string]struct{}{
	SuggestionPending:     {},
	SuggestionReviewed:    {},
	SuggestionImplemented: {},
	SuggestionRejected:    {},
}

type SuggestionInput struct {
	Text       string  `json:"suggestion"`
	PolicyCode *string `json:"policy_id"`
	BylawID    *string `json:"bylaw_id"`
}

// SubmitSuggestion accepts intake from anyone, authenticated or not. Exactly
// one target must be named.
func (s *Service) SubmitSuggestion(ctx context.Context, input SuggestionInput) (map[string]any, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "suggestion text is required", nil)
	}

	policyCode := derefTrimmed(input.PolicyCode)
	bylawID := derefTrimmed(input.BylawID)
	if (policyCode == "") == (bylawID == "") {
		return nil, domainError(http.StatusBadRequest, "INVALID_TARGET", "Exactly one of policy_id or bylaw_id must be provided", nil)
	}

	item := store.Suggestion{
		ID:     uuid.NewString(),
		Text:   text,
		Status: SuggestionPending,
	}
	if policyCode != "" {
		surrogateID, err := s.store.ResolvePolicyCode(ctx, policyCode)
		if err != nil {
			return nil, err
		}
		item.PolicyUUID = &surrogateID
	} else {
		bylaw, err := s.store.GetBylawByID(ctx, bylawID)
		if err != nil {
			return nil, err
		}
		item.BylawUUID = &bylaw.ID
	}

	inserted, err := s.store.InsertSuggestion(ctx, item)
	if err != nil {
		return nil, err
	}
	return s.suggestionPayload(ctx, inserted)
}

// ListSuggestions returns suggestions enriched with the human-facing name
// of whichever document each one targets. A policy-code filter that does not
// resolve yields an empty list rather than an error.
func (s *Service) ListSuggestions(ctx context.Context, status, policyCode string, limit, offset int) ([]map[string]any, error) {
	filter := store.SuggestionFilter{
		Status: status,
		Limit:  clampLimit(limit),
		Offset: offset,
	}
	if policyCode != "" {
		surrogateID, err := s.store.ResolvePolicyCode(ctx, policyCode)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return []map[string]any{}, nil
			}
			return nil, err
		}
		filter.PolicyUUID = surrogateID
	}

	items, err := s.store.ListSuggestions(ctx, filter)
	if err != nil {
		return nil, err
	}

	var policyIDs, bylawIDs []string
	for _, item := range items {
		if item.PolicyUUID != nil {
			policyIDs = append(policyIDs, *item.PolicyUUID)
		}
		if item.BylawUUID != nil {
			bylawIDs = append(bylawIDs, *item.BylawUUID)
		}
	}
	policyRefs, err := s.store.PolicyRefs(ctx, policyIDs)
	if err != nil {
		return nil, err
	}
	bylawRefs, err := s.store.BylawRefs(ctx, bylawIDs)
	if err != nil {
		return nil, err
	}

	payload := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entry := baseSuggestionPayload(item)
		if item.PolicyUUID != nil {
			if ref, ok := policyRefs[*item.PolicyUUID]; ok {
				entry["policy_id"] = ref.PolicyCode
				entry["policy_name"] = ref.PolicyName
			}
		}
		if item.BylawUUID != nil {
			if ref, ok := bylawRefs[*item.BylawUUID]; ok {
				entry["bylaw_number"] = ref.BylawNumber
				entry["bylaw_title"] = ref.BylawTitle
			}
		}
		payload = append(payload, entry)
	}
	return payload, nil
}

func (s *Service) UpdateSuggestionStatus(ctx context.Context, id, status string) (map[string]any, error) {
	if _, ok := allowedSuggestionStatuses[status]; !ok {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown suggestion status", map[string]any{"status": status})
	}
	if _, err := s.store.GetSuggestion(ctx, id); err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateSuggestionStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	return s.suggestionPayload(ctx, updated)
}

func (s *Service) DeleteSuggestion(ctx context.Context, id string) error {
	if _, err := s.store.GetSuggestion(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteSuggestion(ctx, id)
}

func (s *Service) suggestionPayload(ctx context.Context, item store.Suggestion) (map[string]any, error) {
	entry := baseSuggestionPayload(item)
	if item.PolicyUUID != nil {
		refs, err := s.store.PolicyRefs(ctx, []string{*item.PolicyUUID})
		if err != nil {
			return nil, err
		}
		if ref, ok := refs[*item.PolicyUUID]; ok {
			entry["policy_id"] = ref.PolicyCode
			entry["policy_name"] = ref.PolicyName
		}
	}
	if item.BylawUUID != nil {
		refs, err := s.store.BylawRefs(ctx, []string{*item.BylawUUID})
		if err != nil {
			return nil, err
		}
		if ref, ok := refs[*item.BylawUUID]; ok {
			entry["bylaw_number"] = ref.BylawNumber
			entry["bylaw_title"] = ref.BylawTitle
		}
	}
	return entry, nil
}

func baseSuggestionPayload(item store.Suggestion) map[string]any {
	return map[string]any{
		"id":         item.ID,
		"suggestion": item.Text,
		"status":     item.Status,
		"created_at": item.CreatedAt,
		"updated_at": item.UpdatedAt,
	}
}

// SubmitReview records a member's verdict on a policy. Reviews are keyed by
// (policy code, email): a repeat submission overwrites the earlier verdict.
func (s *Service) SubmitReview(ctx context.Context, code, status string, actor Session) (map[string]any, error) {
	if actor.Email == "" {
		return nil, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "A signed-in account with an email is required", nil)
	}
	if status != ReviewConfirm && status != ReviewNeedsWork {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "status must be confirm or needs_work", nil)
	}
	if _, err := s.store.ResolvePolicyCode(ctx, code); err != nil {
		return nil, err
	}

	saved, err := s.store.UpsertReview(ctx, store.PolicyReview{
		ID:           uuid.NewString(),
		PolicyID:     code,
		UserEmail:    actor.Email,
		ReviewStatus: status,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":            saved.ID,
		"policy_id":     saved.PolicyID,
		"user_email":    saved.UserEmail,
		"review_status": saved.ReviewStatus,
		"created_at":    saved.CreatedAt,
		"updated_at":    saved.UpdatedAt,
	}, nil
}

// GetReviews tallies the verdicts for a policy into confirm and needs_work
// buckets, each a count plus the submitter emails in storage order.
func (s *Service) GetReviews(ctx context.Context, code string) (map[string]any, error) {
	if _, err := s.store.ResolvePolicyCode(ctx, code); err != nil {
		return nil, err
	}
	reviews, err := s.store.ListReviews(ctx, code)
	if err != nil {
		return nil, err
	}

	confirmed := make([]string, 0)
	needsWork := make([]string, 0)
	for _, review := range reviews {
		switch review.ReviewStatus {
		case ReviewConfirm:
			confirmed = append(confirmed, review.UserEmail)
		case ReviewNeedsWork:
			needsWork = append(needsWork, review.UserEmail)
		}
	}

	return map[string]any{
		"policy_id": code,
		"confirmed": map[string]any{
			"count":  len(confirmed),
			"people": confirmed,
		},
		"needs_work": map[string]any{
			"count":  len(needsWork),
			"people": needsWork,
		},
	}, nil
}

// ResetAllReviews wipes every review row across all policies and reports
// how many were removed. There is no per-policy variant.
func (s *Service) ResetAllReviews(ctx context.Context) (map[string]any, error) {
	deleted, err := s.store.DeleteAllReviews(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"deleted": deleted}, nil
}

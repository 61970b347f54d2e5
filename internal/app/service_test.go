package app

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"policyhub/api/internal/auth"
	"policyhub/api/internal/authpw"
	"policyhub/api/internal/config"
	"policyhub/api/internal/store"
)

// fakeStore is an in-memory dataStore and sessionStore used across the
// service and HTTP tests.
type fakeStore struct {
	users       map[string]store.User
	policies    map[string]store.Policy // keyed by policy code
	versions    map[string][]store.PolicyVersion
	bylaws      map[string]store.Bylaw
	suggestions map[string]store.Suggestion
	reviews     []store.PolicyReview
	refresh     map[string]string // token hash -> user id
	revokedJTIs map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]store.User),
		policies:    make(map[string]store.Policy),
		versions:    make(map[string][]store.PolicyVersion),
		bylaws:      make(map[string]store.Bylaw),
		suggestions: make(map[string]store.Suggestion),
		refresh:     make(map[string]string),
		revokedJTIs: make(map[string]bool),
	}
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return store.User{}, sql.ErrNoRows
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (store.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return store.User{}, sql.ErrNoRows
}

func (f *fakeStore) CreateUser(_ context.Context, user store.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]store.User, error) {
	items := make([]store.User, 0, len(f.users))
	for _, user := range f.users {
		items = append(items, user)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Email < items[j].Email })
	return items, nil
}

func (f *fakeStore) UpdateUserRole(_ context.Context, id, role string) (store.User, error) {
	user, ok := f.users[id]
	if !ok {
		return store.User{}, sql.ErrNoRows
	}
	user.Role = role
	f.users[id] = user
	return user, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func (f *fakeStore) CountUsers(_ context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeStore) RevokeAccessToken(_ context.Context, jti string, _ time.Time) error {
	f.revokedJTIs[jti] = true
	return nil
}

func (f *fakeStore) IsAccessTokenRevoked(_ context.Context, jti string) (bool, error) {
	return f.revokedJTIs[jti], nil
}

func (f *fakeStore) SaveRefreshSession(_ context.Context, tokenHash, userID string, _ time.Time) error {
	f.refresh[tokenHash] = userID
	return nil
}

func (f *fakeStore) LookupRefreshSession(_ context.Context, tokenHash string) (string, error) {
	if userID, ok := f.refresh[tokenHash]; ok {
		return userID, nil
	}
	return "", sql.ErrNoRows
}

func (f *fakeStore) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	delete(f.refresh, tokenHash)
	return nil
}

func (f *fakeStore) ListPolicies(_ context.Context, filter store.PolicyFilter) ([]store.Policy, error) {
	items := make([]store.Policy, 0)
	for _, item := range f.policies {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.Section != "" && item.Section != filter.Section {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(item.Name), needle) &&
				!strings.Contains(strings.ToLower(item.PolicyID), needle) &&
				!strings.Contains(strings.ToLower(item.Content), needle) {
				continue
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Section != items[j].Section {
			return items[i].Section < items[j].Section
		}
		return items[i].PolicyID < items[j].PolicyID
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return []store.Policy{}, nil
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (f *fakeStore) GetPolicyByCode(_ context.Context, code string) (store.Policy, error) {
	if item, ok := f.policies[code]; ok {
		return item, nil
	}
	return store.Policy{}, sql.ErrNoRows
}

func (f *fakeStore) ResolvePolicyCode(_ context.Context, code string) (string, error) {
	if item, ok := f.policies[code]; ok {
		return item.ID, nil
	}
	return "", sql.ErrNoRows
}

func (f *fakeStore) InsertPolicy(_ context.Context, item store.Policy) (store.Policy, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	f.policies[item.PolicyID] = item
	return item, nil
}

func (f *fakeStore) UpdatePolicyByCode(_ context.Context, code string, item store.Policy) (store.Policy, error) {
	current, ok := f.policies[code]
	if !ok {
		return store.Policy{}, sql.ErrNoRows
	}
	item.ID = current.ID
	item.PolicyID = current.PolicyID
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = time.Now()
	f.policies[code] = item
	return item, nil
}

func (f *fakeStore) SetPolicyStatus(_ context.Context, code, status, updatedBy string) (store.Policy, error) {
	item, ok := f.policies[code]
	if !ok {
		return store.Policy{}, sql.ErrNoRows
	}
	item.Status = status
	item.UpdatedBy = updatedBy
	item.UpdatedAt = time.Now()
	f.policies[code] = item
	return item, nil
}

func (f *fakeStore) DeletePolicyByCode(_ context.Context, code string) error {
	delete(f.policies, code)
	return nil
}

func (f *fakeStore) MaxPolicyVersion(_ context.Context, policyUUID string) (int, error) {
	max := 0
	for _, version := range f.versions[policyUUID] {
		if version.VersionNumber > max {
			max = version.VersionNumber
		}
	}
	return max, nil
}

func (f *fakeStore) InsertPolicyVersion(_ context.Context, version store.PolicyVersion) error {
	version.CreatedAt = time.Now()
	f.versions[version.PolicyUUID] = append(f.versions[version.PolicyUUID], version)
	return nil
}

func (f *fakeStore) ListPolicyVersions(_ context.Context, policyUUID string) ([]store.PolicyVersion, error) {
	items := append([]store.PolicyVersion(nil), f.versions[policyUUID]...)
	sort.Slice(items, func(i, j int) bool { return items[i].VersionNumber > items[j].VersionNumber })
	return items, nil
}

func (f *fakeStore) ListBylaws(_ context.Context, filter store.BylawFilter) ([]store.Bylaw, error) {
	items := make([]store.Bylaw, 0)
	for _, item := range f.bylaws {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Number < items[j].Number })
	return items, nil
}

func (f *fakeStore) GetBylawByID(_ context.Context, id string) (store.Bylaw, error) {
	if item, ok := f.bylaws[id]; ok {
		return item, nil
	}
	return store.Bylaw{}, sql.ErrNoRows
}

func (f *fakeStore) GetBylawByNumber(_ context.Context, number int) (store.Bylaw, error) {
	for _, item := range f.bylaws {
		if item.Number == number {
			return item, nil
		}
	}
	return store.Bylaw{}, sql.ErrNoRows
}

func (f *fakeStore) InsertBylaw(_ context.Context, item store.Bylaw) (store.Bylaw, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	f.bylaws[item.ID] = item
	return item, nil
}

func (f *fakeStore) UpdateBylawByID(_ context.Context, id string, item store.Bylaw) (store.Bylaw, error) {
	current, ok := f.bylaws[id]
	if !ok {
		return store.Bylaw{}, sql.ErrNoRows
	}
	item.ID = current.ID
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = time.Now()
	f.bylaws[id] = item
	return item, nil
}

func (f *fakeStore) SetBylawStatus(_ context.Context, id, status, updatedBy string) (store.Bylaw, error) {
	item, ok := f.bylaws[id]
	if !ok {
		return store.Bylaw{}, sql.ErrNoRows
	}
	item.Status = status
	item.UpdatedBy = updatedBy
	item.UpdatedAt = time.Now()
	f.bylaws[id] = item
	return item, nil
}

func (f *fakeStore) DeleteBylawByID(_ context.Context, id string) error {
	delete(f.bylaws, id)
	return nil
}

func (f *fakeStore) InsertSuggestion(_ context.Context, item store.Suggestion) (store.Suggestion, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	f.suggestions[item.ID] = item
	return item, nil
}

func (f *fakeStore) ListSuggestions(_ context.Context, filter store.SuggestionFilter) ([]store.Suggestion, error) {
	items := make([]store.Suggestion, 0)
	for _, item := range f.suggestions {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.PolicyUUID != "" && (item.PolicyUUID == nil || *item.PolicyUUID != filter.PolicyUUID) {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (f *fakeStore) GetSuggestion(_ context.Context, id string) (store.Suggestion, error) {
	if item, ok := f.suggestions[id]; ok {
		return item, nil
	}
	return store.Suggestion{}, sql.ErrNoRows
}

func (f *fakeStore) UpdateSuggestionStatus(_ context.Context, id, status string) (store.Suggestion, error) {
	item, ok := f.suggestions[id]
	if !ok {
		return store.Suggestion{}, sql.ErrNoRows
	}
	item.Status = status
	item.UpdatedAt = time.Now()
	f.suggestions[id] = item
	return item, nil
}

func (f *fakeStore) DeleteSuggestion(_ context.Context, id string) error {
	delete(f.suggestions, id)
	return nil
}

func (f *fakeStore) PolicyRefs(_ context.Context, ids []string) (map[string]store.SuggestionRef, error) {
	refs := make(map[string]store.SuggestionRef)
	for _, id := range ids {
		for _, item := range f.policies {
			if item.ID == id {
				code, name := item.PolicyID, item.Name
				refs[id] = store.SuggestionRef{PolicyCode: &code, PolicyName: &name}
			}
		}
	}
	return refs, nil
}

func (f *fakeStore) BylawRefs(_ context.Context, ids []string) (map[string]store.SuggestionRef, error) {
	refs := make(map[string]store.SuggestionRef)
	for _, id := range ids {
		if item, ok := f.bylaws[id]; ok {
			number, title := item.Number, item.Title
			refs[id] = store.SuggestionRef{BylawNumber: &number, BylawTitle: &title}
		}
	}
	return refs, nil
}

func (f *fakeStore) UpsertReview(_ context.Context, review store.PolicyReview) (store.PolicyReview, error) {
	now := time.Now()
	for i, existing := range f.reviews {
		if existing.PolicyID == review.PolicyID && existing.UserEmail == review.UserEmail {
			f.reviews[i].ReviewStatus = review.ReviewStatus
			f.reviews[i].UpdatedAt = now
			return f.reviews[i], nil
		}
	}
	review.CreatedAt = now
	review.UpdatedAt = now
	f.reviews = append(f.reviews, review)
	return review, nil
}

func (f *fakeStore) ListReviews(_ context.Context, policyCode string) ([]store.PolicyReview, error) {
	items := make([]store.PolicyReview, 0)
	for _, review := range f.reviews {
		if review.PolicyID == policyCode {
			items = append(items, review)
		}
	}
	return items, nil
}

func (f *fakeStore) DeleteAllReviews(_ context.Context) (int, error) {
	deleted := len(f.reviews)
	f.reviews = nil
	return deleted, nil
}

func (f *fakeStore) Ping(_ context.Context) error { return nil }

func newTestService(fake *fakeStore) *Service {
	cfg := config.Config{
		JWTSecret:  "test-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
	return &Service{
		cfg:       cfg,
		store:     fake,
		sessions:  fake,
		tokens:    auth.NewTokenCodec(cfg.JWTSecret, cfg.AccessTTL),
		passwords: authpw.NewService(fake),
	}
}

func adminSession() Session {
	return Session{UserID: "admin-1", Email: "admin@example.org", Role: "admin"}
}

func seedPolicy(t *testing.T, svc *Service, code, name, section, content string) map[string]any {
	t.Helper()
	payload, err := svc.CreatePolicy(context.Background(), PolicyInput{
		PolicyID: &code,
		Name:     &name,
		Section:  &section,
		Content:  &content,
	}, adminSession())
	if err != nil {
		t.Fatalf("CreatePolicy(%s): %v", code, err)
	}
	return payload
}

func TestCreatePolicyForcesDraft(t *testing.T) {
	svc := newTestService(newFakeStore())
	code, name, section, status := "1.1.1", "Travel", "1", "approved"

	payload, err := svc.CreatePolicy(context.Background(), PolicyInput{
		PolicyID: &code,
		Name:     &name,
		Section:  &section,
		Status:   &status,
	}, adminSession())
	if err != nil {
		t.Fatalf("CreatePolicy: %v", err)
	}
	if payload["status"] != StatusDraft {
		t.Fatalf("expected status draft, got %v", payload["status"])
	}
}

func TestCreatePolicyDuplicateCode(t *testing.T) {
	svc := newTestService(newFakeStore())
	seedPolicy(t, svc, "1.1.1", "Travel", "1", "old")

	code, name, section := "1.1.1", "Other", "2"
	_, err := svc.CreatePolicy(context.Background(), PolicyInput{PolicyID: &code, Name: &name, Section: &section}, adminSession())
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestUpdatePolicySnapshotsPreUpdateState(t *testing.T) {
	fake := newFakeStore()
	svc := newTestService(fake)
	ctx := context.Background()
	seedPolicy(t, svc, "2.3.1", "Travel", "2", "original content")

	if _, err := svc.ApprovePolicy(ctx, "2.3.1", adminSession()); err != nil {
		t.Fatalf("ApprovePolicy: %v", err)
	}

	newContent := "revised content"
	payload, err := svc.UpdatePolicy(ctx, "2.3.1", PolicyInput{Content: &newContent}, adminSession())
	if err != nil {
		t.Fatalf("UpdatePolicy: %v", err)
	}
	if payload["status"] != StatusDraft {
		t.Fatalf("expected ratchet to draft, got %v", payload["status"])
	}

	surrogate := fake.policies["2.3.1"].ID
	versions := fake.versions[surrogate]
	if len(versions) != 1 {
		t.Fatalf("expected exactly one version, got %d", len(versions))
	}
	snapshot := versions[0]
	if snapshot.VersionNumber != 1 {
		t.Errorf("expected version_number 1, got %d", snapshot.VersionNumber)
	}
	if snapshot.Content != "original content" {
		t.Errorf("snapshot should capture pre-update content, got %q", snapshot.Content)
	}
	if snapshot.Status != StatusApproved {
		t.Errorf("snapshot should capture pre-update status, got %q", snapshot.Status)
	}
}

func TestUpdatePolicyNoOpCreatesNoVersion(t *testing.T) {
	fake := newFakeStore()
	svc := newTestService(fake)
	ctx := context.Background()
	seedPolicy(t, svc, "1.2.3", "Dues", "1", "same")

	same := "same"
	if _, err := svc.UpdatePolicy(ctx, "1.2.3", PolicyInput{Content: &same}, adminSession()); err != nil {
		t.Fatalf("UpdatePolicy: %v", err)
	}
	surrogate := fake.policies["1.2.3"].ID
	if len(fake.versions[surrogate]) != 0 {
		t.Fatalf("no-op update must not create versions, got %d", len(fake.versions[surrogate]))
	}
}

func TestUpdatePolicyStatusOnlyChangeSnapshots(t *testing.T) {
	fake := newFakeStore()
	svc := newTestService(fake)
	ctx := context.Background()
	seedPolicy(t, svc, "3.1.1", "Elections", "3", "text")

	if _, err := svc.ApprovePolicy(ctx, "3.1.1", adminSession()); err != nil {
		t.Fatalf("ApprovePolicy: %v", err)
	}

	// An update touching no fields still demotes an approved policy, and
	// the demotion itself is a change worth a snapshot.
	same := "text"
	payload, err := svc.UpdatePolicy(ctx, "3.1.1", PolicyInput{Content: &same}, adminSession())
	if err != nil {
		t.Fatalf("UpdatePolicy: %v", err)
	}
	if payload["status"] != StatusDraft {
		t.Fatalf("expected draft, got %v", payload["status"])
	}
	surrogate := fake.policies["3.1.1"].ID
	if len(fake.versions[surrogate]) != 1 {
		t.Fatalf("expected one version for the demotion, got %d", len(fake.versions[surrogate]))
	}
}

func TestUpdatePolicyVersionNumbersAreMonotonic(t *testing.T) {
	fake := newFakeStore()
	svc := newTestService(fake)
	ctx := context.Background()
	seedPolicy(t, svc, "4.1.1", "Meetings", "4", "v1")

	for i, content := range []string{"v2", "v3", "v4"} {
		payload, err := svc.UpdatePolicy(ctx, "4.1.1", PolicyInput{Content: &content}, adminSession())
		if err != nil {
			t.Fatalf("UpdatePolicy %d: %v", i, err)
		}
		if payload["content"] != content {
			t.Fatalf("expected content %q, got %v", content, payload["content"])
		}
	}

	versions, err := svc.PolicyVersions(ctx, "4.1.1")
	if err != nil {
		t.Fatalf("PolicyVersions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(versions))
	}
	// Newest first.
	for i, want := range []int{3, 2, 1} {
		if versions[i]["version_number"] != want {
			t.Errorf("versions[%d] = %v, want %d", i, versions[i]["version_number"], want)
		}
	}
	if versions[2]["content"] != "v1" {
		t.Errorf("oldest snapshot should hold the original content, got %v", versions[2]["content"])
	}
}

func TestApprovePolicy(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()
	seedPolicy(t, svc, "1.1.1", "Travel", "1", "text")

	payload, err := svc.ApprovePolicy(ctx, "1.1.1", adminSession())
	if err != nil {
		t.Fatalf("ApprovePolicy: %v", err)
	}
	if payload["status"] != StatusApproved {
		t.Fatalf("expected approved, got %v", payload["status"])
	}

	_, err = svc.ApprovePolicy(ctx, "1.1.1", adminSession())
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "ALREADY_APPROVED" {
		t.Fatalf("expected ALREADY_APPROVED, got %v", err)
	}

	if _, err := svc.ApprovePolicy(ctx, "9.9.9", adminSession()); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for missing policy, got %v", err)
	}
}

func TestDeletePolicyMissingIsNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())
	if err := svc.DeletePolicy(context.Background(), "9.9.9"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestBylawLifecycle(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	number, title, content := 7, "Quorum", "Two thirds of members."
	payload, err := svc.CreateBylaw(ctx, BylawInput{Number: &number, Title: &title, Content: &content}, adminSession())
	if err != nil {
		t.Fatalf("CreateBylaw: %v", err)
	}
	if payload["status"] != StatusDraft {
		t.Fatalf("expected draft, got %v", payload["status"])
	}
	id := payload["id"].(string)

	if _, err := svc.CreateBylaw(ctx, BylawInput{Number: &number, Title: &title}, adminSession()); err == nil {
		t.Fatal("expected conflict for duplicate bylaw number")
	}

	if _, err := svc.ApproveBylaw(ctx, id, adminSession()); err != nil {
		t.Fatalf("ApproveBylaw: %v", err)
	}
	if _, err := svc.ApproveBylaw(ctx, id, adminSession()); err == nil {
		t.Fatal("expected error approving an approved bylaw")
	}

	newContent := "A simple majority."
	updated, err := svc.UpdateBylaw(ctx, id, BylawInput{Content: &newContent}, adminSession())
	if err != nil {
		t.Fatalf("UpdateBylaw: %v", err)
	}
	if updated["status"] != StatusDraft {
		t.Fatalf("edit must demote to draft, got %v", updated["status"])
	}
}

func TestSubmitSuggestionTargetXOR(t *testing.T) {
	fake := newFakeStore()
	svc := newTestService(fake)
	ctx := context.Background()
	seedPolicy(t, svc, "1.1.1", "Travel", "1", "text")

	code := "1.1.1"
	bylawID := uuid.NewString()

	cases := []struct {
		name  string
		input SuggestionInput
	}{
		{name: "neither target", input: SuggestionInput{Text: "do better"}},
		{name: "both targets", input: SuggestionInput{Text: "do better", PolicyCode: &code, BylawID: &bylawID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitSuggestion(ctx, tc.input)
			var domainErr *DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "INVALID_TARGET" {
				t.Fatalf("expected INVALID_TARGET, got %v", err)
			}
		})
	}

	payload, err := svc.SubmitSuggestion(ctx, SuggestionInput{Text: "clarify mileage rates", PolicyCode: &code})
	if err != nil {
		t.Fatalf("SubmitSuggestion: %v", err)
	}
	if payload["status"] != SuggestionPending {
		t.Fatalf("expected pending, got %v", payload["status"])
	}

	missing := "9.9.9"
	if _, err := svc.SubmitSuggestion(ctx, SuggestionInput{Text: "x", PolicyCode: &missing}); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for unknown policy code, got %v", err)
	}
}

func TestListSuggestionsEnrichment(t *testing.T) {
	fake := newFakeStore()
	svc := newTestService(fake)
	ctx := context.Background()
	seedPolicy(t, svc, "1.1.1", "Travel", "1", "text")

	code := "1.1.1"
	if _, err := svc.SubmitSuggestion(ctx, SuggestionInput{Text: "clarify", PolicyCode: &code}); err != nil {
		t.Fatalf("SubmitSuggestion: %v", err)
	}

	items, err := svc.ListSuggestions(ctx, "", "", 0, 0)
	if err != nil {
		t.Fatalf("ListSuggestions: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(items))
	}
	if got := items[0]["policy_name"]; got == nil || *(got.(*string)) != "Travel" {
		t.Fatalf("expected enrichment with policy name, got %v", got)
	}

	// A policy-code filter that does not resolve yields an empty list.
	items, err = svc.ListSuggestions(ctx, "", "9.9.9", 0, 0)
	if err != nil {
		t.Fatalf("ListSuggestions with unresolvable filter: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %d items", len(items))
	}
}

func TestReviewUpsertAndBuckets(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()
	seedPolicy(t, svc, "2.3.1", "Travel", "2", "text")

	member := Session{UserID: "u1", Email: "a@x.com", Role: "public"}
	if _, err := svc.SubmitReview(ctx, "2.3.1", ReviewConfirm, member); err != nil {
		t.Fatalf("SubmitReview confirm: %v", err)
	}
	if _, err := svc.SubmitReview(ctx, "2.3.1", ReviewNeedsWork, member); err != nil {
		t.Fatalf("SubmitReview needs_work: %v", err)
	}

	payload, err := svc.GetReviews(ctx, "2.3.1")
	if err != nil {
		t.Fatalf("GetReviews: %v", err)
	}
	confirmed := payload["confirmed"].(map[string]any)
	needsWork := payload["needs_work"].(map[string]any)
	if confirmed["count"] != 0 {
		t.Errorf("expected confirmed count 0, got %v", confirmed["count"])
	}
	if needsWork["count"] != 1 {
		t.Errorf("expected needs_work count 1, got %v", needsWork["count"])
	}
	people := needsWork["people"].([]string)
	if len(people) != 1 || people[0] != "a@x.com" {
		t.Errorf("expected needs_work people [a@x.com], got %v", people)
	}

	if _, err := svc.SubmitReview(ctx, "2.3.1", "maybe", member); err == nil {
		t.Error("expected error for unknown review status")
	}
	if _, err := svc.SubmitReview(ctx, "2.3.1", ReviewConfirm, Session{}); err == nil {
		t.Error("expected error for anonymous review")
	}
	if _, err := svc.GetReviews(ctx, "9.9.9"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for unknown code, got %v", err)
	}
}

func TestResetAllReviews(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()
	seedPolicy(t, svc, "1.1.1", "Travel", "1", "text")
	seedPolicy(t, svc, "1.1.2", "Dues", "1", "text")

	for _, email := range []string{"a@x.com", "b@x.com"} {
		if _, err := svc.SubmitReview(ctx, "1.1.1", ReviewConfirm, Session{UserID: "u", Email: email, Role: "public"}); err != nil {
			t.Fatalf("SubmitReview: %v", err)
		}
	}
	if _, err := svc.SubmitReview(ctx, "1.1.2", ReviewNeedsWork, Session{UserID: "u", Email: "a@x.com", Role: "public"}); err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}

	payload, err := svc.ResetAllReviews(ctx)
	if err != nil {
		t.Fatalf("ResetAllReviews: %v", err)
	}
	if payload["deleted"] != 3 {
		t.Fatalf("expected 3 deleted, got %v", payload["deleted"])
	}
}

func TestDeleteUserSelfForbidden(t *testing.T) {
	fake := newFakeStore()
	svc := newTestService(fake)
	fake.users["admin-1"] = store.User{ID: "admin-1", Email: "admin@example.org", Role: "admin"}

	err := svc.DeleteUser(context.Background(), "admin-1", adminSession())
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "SELF_DELETE" {
		t.Fatalf("expected SELF_DELETE, got %v", err)
	}
}

func TestLoginAndRefresh(t *testing.T) {
	fake := newFakeStore()
	svc := newTestService(fake)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "member@example.org", "password123", "Member", "policy_working_group"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	session, err := svc.Login(ctx, "member@example.org", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Role != "policy_working_group" {
		t.Fatalf("expected working group role, got %s", session.Role)
	}

	parsed, err := svc.SessionFromToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("SessionFromToken: %v", err)
	}
	if parsed.Email != "member@example.org" {
		t.Fatalf("expected member email, got %s", parsed.Email)
	}

	rotated, err := svc.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.UserID != session.UserID {
		t.Fatal("refresh should keep the same user")
	}
	// Refresh tokens are single use.
	if _, err := svc.Refresh(ctx, session.RefreshToken); err == nil {
		t.Fatal("expected error reusing a rotated refresh token")
	}

	if _, err := svc.Login(ctx, "member@example.org", "wrong-password"); err == nil {
		t.Fatal("expected error for wrong password")
	}
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	fake := newFakeStore()
	svc := newTestService(fake)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "member@example.org", "password123", "", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	session, err := svc.Login(ctx, "member@example.org", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, session, session.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.SessionFromToken(ctx, session.Token); err == nil {
		t.Fatal("expected revoked token to be rejected")
	}
	if _, err := svc.Refresh(ctx, session.RefreshToken); err == nil {
		t.Fatal("expected revoked refresh token to be rejected")
	}
}

func TestBootstrapSeedsAdminOnce(t *testing.T) {
	fake := newFakeStore()
	svc := newTestService(fake)
	svc.cfg.AdminEmail = "root@example.org"
	svc.cfg.AdminPassword = "password123"
	ctx := context.Background()

	if err := svc.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	user, err := fake.GetUserByEmail(ctx, "root@example.org")
	if err != nil {
		t.Fatalf("expected seeded admin: %v", err)
	}
	if user.Role != "admin" {
		t.Fatalf("expected admin role, got %s", user.Role)
	}

	// A populated user table is left alone.
	if err := svc.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap second run: %v", err)
	}
	if count, _ := fake.CountUsers(ctx); count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestClampLimit(t *testing.T) {
	cases := map[int]int{-5: 50, 0: 50, 1: 1, 100: 100, 500: 100}
	for in, want := range cases {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---- users ----

const userColumns = `id, email, name, role, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	return scanUser(row)
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Email, user.Name, user.Role, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	items := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateUserRole(ctx context.Context, userID, role string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET role=$2, updated_at=NOW()
		WHERE id=$1
		RETURNING `+userColumns+`
	`, userID, role)
	return scanUser(row)
}

func (s *PostgresStore) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// ---- refresh sessions and token revocation ----

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM refresh_sessions
		WHERE token_hash = $1
			AND revoked_at IS NULL
			AND expires_at > NOW()
	`, tokenHash).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// ---- policies ----

const policyColumns = `id, policy_id, name, section, content, status, created_at, updated_at, created_by, updated_by`

func scanPolicy(row interface{ Scan(...any) error }) (Policy, error) {
	var item Policy
	err := row.Scan(&item.ID, &item.PolicyID, &item.Name, &item.Section, &item.Content,
		&item.Status, &item.CreatedAt, &item.UpdatedAt, &item.CreatedBy, &item.UpdatedBy)
	return item, err
}

func (s *PostgresStore) ListPolicies(ctx context.Context, filter PolicyFilter) ([]Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE 1=1`
	args := make([]any, 0, 6)

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	if filter.Section != "" {
		args = append(args, filter.Section)
		query += fmt.Sprintf(` AND section=$%d`, len(args))
	}
	if filter.PolicyID != "" {
		args = append(args, filter.PolicyID)
		query += fmt.Sprintf(` AND policy_id=$%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (name ILIKE $%d OR policy_id ILIKE $%d OR content ILIKE $%d)`, n, n, n)
	}

	query += ` ORDER BY section, policy_id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	items := make([]Policy, 0)
	for rows.Next() {
		item, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policies: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetPolicyByCode(ctx context.Context, code string) (Policy, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+policyColumns+` FROM policies WHERE policy_id=$1`, code)
	return scanPolicy(row)
}

func (s *PostgresStore) GetApprovedPolicyByCode(ctx context.Context, code string) (Policy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+policyColumns+` FROM policies WHERE policy_id=$1 AND status='approved'
	`, code)
	return scanPolicy(row)
}

func (s *PostgresStore) ResolvePolicyCode(ctx context.Context, code string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM policies WHERE policy_id=$1`, code).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) InsertPolicy(ctx context.Context, item Policy) (Policy, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO policies (id, policy_id, name, section, content, status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+policyColumns+`
	`, item.ID, item.PolicyID, item.Name, item.Section, item.Content, item.Status, item.CreatedBy, item.UpdatedBy)
	inserted, err := scanPolicy(row)
	if err != nil {
		return Policy{}, fmt.Errorf("insert policy: %w", err)
	}
	return inserted, nil
}

// UpdatePolicyByCode overwrites the mutable columns of the row identified by
// the human policy code. The caller supplies the fully merged state.
func (s *PostgresStore) UpdatePolicyByCode(ctx context.Context, code string, item Policy) (Policy, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE policies
		SET name=$2, section=$3, content=$4, status=$5, updated_by=$6, updated_at=NOW()
		WHERE policy_id=$1
		RETURNING `+policyColumns+`
	`, code, item.Name, item.Section, item.Content, item.Status, item.UpdatedBy)
	return scanPolicy(row)
}

func (s *PostgresStore) SetPolicyStatus(ctx context.Context, code, status, updatedBy string) (Policy, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE policies
		SET status=$2, updated_by=$3, updated_at=NOW()
		WHERE policy_id=$1
		RETURNING `+policyColumns+`
	`, code, status, updatedBy)
	return scanPolicy(row)
}

func (s *PostgresStore) DeletePolicyByCode(ctx context.Context, code string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM policies WHERE policy_id=$1`, code); err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	return nil
}

// ---- policy versions ----

func (s *PostgresStore) MaxPolicyVersion(ctx context.Context, policyUUID string) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version_number), 0) FROM policy_versions WHERE policy_uuid=$1
	`, policyUUID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max policy version: %w", err)
	}
	return max, nil
}

func (s *PostgresStore) InsertPolicyVersion(ctx context.Context, version PolicyVersion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policy_versions (id, policy_uuid, version_number, name, section, content, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, version.ID, version.PolicyUUID, version.VersionNumber, version.Name, version.Section,
		version.Content, version.Status, version.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert policy version: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPolicyVersions(ctx context.Context, policyUUID string) ([]PolicyVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, policy_uuid, version_number, name, section, content, status, created_at, created_by
		FROM policy_versions
		WHERE policy_uuid=$1
		ORDER BY version_number DESC
	`, policyUUID)
	if err != nil {
		return nil, fmt.Errorf("list policy versions: %w", err)
	}
	defer rows.Close()

	items := make([]PolicyVersion, 0)
	for rows.Next() {
		var item PolicyVersion
		if err := rows.Scan(&item.ID, &item.PolicyUUID, &item.VersionNumber, &item.Name,
			&item.Section, &item.Content, &item.Status, &item.CreatedAt, &item.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan policy version: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policy versions: %w", err)
	}
	return items, nil
}

// ---- bylaws ----

const bylawColumns = `id, number, title, content, status, created_at, updated_at, created_by, updated_by`

func scanBylaw(row interface{ Scan(...any) error }) (Bylaw, error) {
	var item Bylaw
	err := row.Scan(&item.ID, &item.Number, &item.Title, &item.Content, &item.Status,
		&item.CreatedAt, &item.UpdatedAt, &item.CreatedBy, &item.UpdatedBy)
	return item, err
}

func (s *PostgresStore) ListBylaws(ctx context.Context, filter BylawFilter) ([]Bylaw, error) {
	query := `SELECT ` + bylawColumns + ` FROM bylaws WHERE 1=1`
	args := make([]any, 0, 4)

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (title ILIKE $%d OR content ILIKE $%d OR number::text ILIKE $%d)`, n, n, n)
	}

	query += ` ORDER BY number`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bylaws: %w", err)
	}
	defer rows.Close()

	items := make([]Bylaw, 0)
	for rows.Next() {
		item, err := scanBylaw(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bylaw: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bylaws: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetBylawByID(ctx context.Context, id string) (Bylaw, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bylawColumns+` FROM bylaws WHERE id=$1`, id)
	return scanBylaw(row)
}

func (s *PostgresStore) GetBylawByNumber(ctx context.Context, number int) (Bylaw, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bylawColumns+` FROM bylaws WHERE number=$1`, number)
	return scanBylaw(row)
}

func (s *PostgresStore) GetApprovedBylawByID(ctx context.Context, id string) (Bylaw, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bylawColumns+` FROM bylaws WHERE id=$1 AND status='approved'`, id)
	return scanBylaw(row)
}

func (s *PostgresStore) InsertBylaw(ctx context.Context, item Bylaw) (Bylaw, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO bylaws (id, number, title, content, status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+bylawColumns+`
	`, item.ID, item.Number, item.Title, item.Content, item.Status, item.CreatedBy, item.UpdatedBy)
	inserted, err := scanBylaw(row)
	if err != nil {
		return Bylaw{}, fmt.Errorf("insert bylaw: %w", err)
	}
	return inserted, nil
}

func (s *PostgresStore) UpdateBylawByID(ctx context.Context, id string, item Bylaw) (Bylaw, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE bylaws
		SET number=$2, title=$3, content=$4, status=$5, updated_by=$6, updated_at=NOW()
		WHERE id=$1
		RETURNING `+bylawColumns+`
	`, id, item.Number, item.Title, item.Content, item.Status, item.UpdatedBy)
	return scanBylaw(row)
}

func (s *PostgresStore) SetBylawStatus(ctx context.Context, id, status, updatedBy string) (Bylaw, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE bylaws
		SET status=$2, updated_by=$3, updated_at=NOW()
		WHERE id=$1
		RETURNING `+bylawColumns+`
	`, id, status, updatedBy)
	return scanBylaw(row)
}

func (s *PostgresStore) DeleteBylawByID(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bylaws WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete bylaw: %w", err)
	}
	return nil
}

// ---- suggestions ----

const suggestionColumns = `id, policy_uuid, bylaw_uuid, suggestion, status, created_at, updated_at`

func scanSuggestion(row interface{ Scan(...any) error }) (Suggestion, error) {
	var item Suggestion
	err := row.Scan(&item.ID, &item.PolicyUUID, &item.BylawUUID, &item.Text,
		&item.Status, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

func (s *PostgresStore) InsertSuggestion(ctx context.Context, item Suggestion) (Suggestion, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO suggestions (id, policy_uuid, bylaw_uuid, suggestion, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+suggestionColumns+`
	`, item.ID, item.PolicyUUID, item.BylawUUID, item.Text, item.Status)
	inserted, err := scanSuggestion(row)
	if err != nil {
		return Suggestion{}, fmt.Errorf("insert suggestion: %w", err)
	}
	return inserted, nil
}

func (s *PostgresStore) ListSuggestions(ctx context.Context, filter SuggestionFilter) ([]Suggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM suggestions WHERE 1=1`
	args := make([]any, 0, 5)

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	if filter.PolicyUUID != "" {
		args = append(args, filter.PolicyUUID)
		query += fmt.Sprintf(` AND policy_uuid=$%d`, len(args))
	}
	if filter.BylawUUID != "" {
		args = append(args, filter.BylawUUID)
		query += fmt.Sprintf(` AND bylaw_uuid=$%d`, len(args))
	}

	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	items := make([]Suggestion, 0)
	for rows.Next() {
		item, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetSuggestion(ctx context.Context, id string) (Suggestion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE id=$1`, id)
	return scanSuggestion(row)
}

func (s *PostgresStore) UpdateSuggestionStatus(ctx context.Context, id, status string) (Suggestion, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE suggestions
		SET status=$2, updated_at=NOW()
		WHERE id=$1
		RETURNING `+suggestionColumns+`
	`, id, status)
	return scanSuggestion(row)
}

func (s *PostgresStore) DeleteSuggestion(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM suggestions WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete suggestion: %w", err)
	}
	return nil
}

// PolicyRefs batch-loads the human-facing fields of the given policy rows,
// keyed by surrogate id.
func (s *PostgresStore) PolicyRefs(ctx context.Context, ids []string) (map[string]SuggestionRef, error) {
	refs := make(map[string]SuggestionRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, policy_id, name FROM policies WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load policy refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, code, name string
		if err := rows.Scan(&id, &code, &name); err != nil {
			return nil, fmt.Errorf("scan policy ref: %w", err)
		}
		refs[id] = SuggestionRef{PolicyCode: &code, PolicyName: &name}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policy refs: %w", err)
	}
	return refs, nil
}

func (s *PostgresStore) BylawRefs(ctx context.Context, ids []string) (map[string]SuggestionRef, error) {
	refs := make(map[string]SuggestionRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, number, title FROM bylaws WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load bylaw refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, title string
		var number int
		if err := rows.Scan(&id, &number, &title); err != nil {
			return nil, fmt.Errorf("scan bylaw ref: %w", err)
		}
		refs[id] = SuggestionRef{BylawNumber: &number, BylawTitle: &title}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bylaw refs: %w", err)
	}
	return refs, nil
}

// ---- policy reviews ----

func (s *PostgresStore) UpsertReview(ctx context.Context, review PolicyReview) (PolicyReview, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO policy_reviews (id, policy_id, user_email, review_status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (policy_id, user_email)
		DO UPDATE SET review_status=EXCLUDED.review_status, updated_at=NOW()
		RETURNING id, policy_id, user_email, review_status, created_at, updated_at
	`, review.ID, review.PolicyID, review.UserEmail, review.ReviewStatus)
	var saved PolicyReview
	err := row.Scan(&saved.ID, &saved.PolicyID, &saved.UserEmail, &saved.ReviewStatus, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return PolicyReview{}, fmt.Errorf("upsert review: %w", err)
	}
	return saved, nil
}

func (s *PostgresStore) ListReviews(ctx context.Context, policyCode string) ([]PolicyReview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, policy_id, user_email, review_status, created_at, updated_at
		FROM policy_reviews
		WHERE policy_id=$1
	`, policyCode)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	items := make([]PolicyReview, 0)
	for rows.Next() {
		var item PolicyReview
		if err := rows.Scan(&item.ID, &item.PolicyID, &item.UserEmail, &item.ReviewStatus, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) DeleteAllReviews(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM policy_reviews`)
	if err != nil {
		return 0, fmt.Errorf("delete reviews: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted reviews: %w", err)
	}
	return int(deleted), nil
}

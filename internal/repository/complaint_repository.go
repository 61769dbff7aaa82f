package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/complaint-api/internal/models"
)

const complaintListColumns = `c.id, c.user_id, c.subject, c.type, c.description, c.attachment_key, c.status, c.assigned_to, c.created_at, c.updated_at,
	u.full_name AS author_name, u.role AS author_role, a.full_name AS assignee_name`

const complaintListBase = `FROM complaints c
	JOIN users u ON u.id = c.user_id
	LEFT JOIN users a ON a.id = c.assigned_to`

// ComplaintRepository provides database access for complaints and their
// comment threads.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository creates a new instance of ComplaintRepository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a new complaint.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	complaint.UpdatedAt = complaint.CreatedAt

	const query = `INSERT INTO complaints (id, user_id, subject, type, description, attachment_key, status, assigned_to, created_at, updated_at) VALUES (:id, :user_id, :subject, :type, :description, :attachment_key, :status, :assigned_to, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// FindByID returns a complaint with author and assignee display fields.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.ComplaintListItem, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.id = $1 LIMIT 1", complaintListColumns, complaintListBase)
	var item models.ComplaintListItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find complaint by id: %w", err)
	}
	return &item, nil
}

// List returns complaints matching the filter, newest first.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.ComplaintListItem, error) {
	var conditions []string
	var args []interface{}

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("c.user_id = $%d", len(args)+1))
		args = append(args, *filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.NotStatus != nil {
		conditions = append(conditions, fmt.Sprintf("c.status <> $%d", len(args)+1))
		args = append(args, *filter.NotStatus)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("c.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.AuthorRole != nil {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", len(args)+1))
		args = append(args, *filter.AuthorRole)
	}
	if filter.Search != "" {
		placeholder := fmt.Sprintf("$%d", len(args)+1)
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.full_name) LIKE %s OR LOWER(c.subject) LIKE %s OR LOWER(c.type) LIKE %s)", placeholder, placeholder, placeholder))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := "1=1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d",
		complaintListColumns, complaintListBase, where, pageSize, offset)

	var items []models.ComplaintListItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return items, nil
}

// UpdateStatus sets the status of a complaint and refreshes updated_at.
// Matching zero rows means the complaint no longer exists.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	const query = `UPDATE complaints SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update complaint status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateAssignment binds the complaint to a staff member, or unassigns it
// when staffID is nil.
func (r *ComplaintRepository) UpdateAssignment(ctx context.Context, id string, staffID *string) error {
	const query = `UPDATE complaints SET assigned_to = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, staffID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update complaint assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update complaint assignment rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the complaint and, through ON DELETE CASCADE, its comments.
func (r *ComplaintRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM complaints WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete complaint rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddComment appends an admin comment to the complaint thread.
func (r *ComplaintRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO complaint_comments (id, complaint_id, admin_id, body, created_at) VALUES (:id, :complaint_id, :admin_id, :body, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("add complaint comment: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *ComplaintRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at) VALUES (:id, :user_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// ListComments returns the comment thread ordered oldest first.
func (r *ComplaintRepository) ListComments(ctx context.Context, complaintID string) ([]models.Comment, error) {
	const query = `SELECT cc.id, cc.complaint_id, cc.admin_id, u.full_name AS admin_name, cc.body, cc.created_at
	FROM complaint_comments cc
	JOIN users u ON u.id = cc.admin_id
	WHERE cc.complaint_id = $1
	ORDER BY cc.created_at ASC`
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, complaintID); err != nil {
		return nil, fmt.Errorf("list complaint comments: %w", err)
	}
	return comments, nil
}

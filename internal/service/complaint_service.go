package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdesk/complaint-api/internal/models"
	appErrors "github.com/campusdesk/complaint-api/pkg/errors"
)

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.ComplaintListItem, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.ComplaintListItem, error)
	UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error
	Delete(ctx context.Context, id string) error
	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, complaintID string) ([]models.Comment, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type attachmentStore interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
	Path(filename string) string
}

type attachmentSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

// ComplaintDetail is a complaint together with its comment thread and, when
// an attachment exists, a signed download URL.
type ComplaintDetail struct {
	models.ComplaintListItem
	Comments      []models.Comment `json:"comments"`
	AttachmentURL string           `json:"attachment_url,omitempty"`
}

// ComplaintService implements the complaint lifecycle: student submission,
// staff and admin status changes, admin comments and deletion.
type ComplaintService struct {
	repo      complaintRepository
	store     attachmentStore
	signer    attachmentSigner
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewComplaintService constructs a ComplaintService instance.
func NewComplaintService(repo complaintRepository, store attachmentStore, signer attachmentSigner, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ComplaintService{repo: repo, store: store, signer: signer, validator: validate, logger: logger}
}

// WithCache attaches the statistics cache so lifecycle writes evict stale
// aggregates.
func (s *ComplaintService) WithCache(cache *CacheService) *ComplaintService {
	s.cache = cache
	return s
}

func (s *ComplaintService) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statsCachePattern); err != nil {
		s.logger.Warn("failed to invalidate statistics cache", zap.Error(err))
	}
}

// Create submits a new complaint for the given student. Every complaint
// starts UNSOLVED and unassigned; attachment is optional.
func (s *ComplaintService) Create(ctx context.Context, userID string, req models.CreateComplaintRequest, attachmentName string, attachment []byte) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}

	complaint := &models.Complaint{
		ID:          uuid.NewString(),
		UserID:      userID,
		Subject:     req.Subject,
		Type:        req.Type,
		Description: req.Description,
		Status:      models.StatusUnsolved,
	}

	if len(attachment) > 0 {
		key := fmt.Sprintf("%s/%s%s", complaint.ID, uuid.NewString(), filepath.Ext(attachmentName))
		if _, err := s.store.Save(key, attachment); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment")
		}
		complaint.AttachmentKey = &key
	}

	if err := s.repo.Create(ctx, complaint); err != nil {
		if complaint.AttachmentKey != nil {
			if cleanupErr := s.store.Delete(*complaint.AttachmentKey); cleanupErr != nil {
				s.logger.Warn("failed to remove orphaned attachment", zap.Error(cleanupErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}

	s.invalidateStats(ctx)

	return complaint, nil
}

// ListOwn returns the student's complaints, split into the open and solved
// tabs. solved selects SOLVED rows; otherwise everything still open.
func (s *ComplaintService) ListOwn(ctx context.Context, userID string, solved bool) ([]models.ComplaintListItem, error) {
	filter := models.ComplaintFilter{UserID: &userID}
	status := models.StatusSolved
	if solved {
		filter.Status = &status
	} else {
		filter.NotStatus = &status
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return items, nil
}

// List returns complaints for the staff and admin screens.
func (s *ComplaintService) List(ctx context.Context, filter models.ComplaintFilter) ([]models.ComplaintListItem, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown complaint status")
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return items, nil
}

// Get returns a complaint with its comment thread and attachment URL.
func (s *ComplaintService) Get(ctx context.Context, id string) (*ComplaintDetail, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}

	comments, err := s.repo.ListComments(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comments")
	}

	detail := &ComplaintDetail{ComplaintListItem: *item, Comments: comments}
	if item.AttachmentKey != nil {
		token, _, err := s.signer.Generate(item.ID, *item.AttachmentKey)
		if err != nil {
			s.logger.Warn("failed to sign attachment url", zap.String("complaint_id", item.ID), zap.Error(err))
		} else {
			detail.AttachmentURL = "/api/v1/attachments/" + token
		}
	}
	return detail, nil
}

// UpdateStatus transitions a complaint. Staff may only use the reduced status
// set; admins may set any valid status. Any valid status can follow any other.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor *models.JWTClaims, id string, req models.UpdateStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown complaint status")
	}
	if actor.Role == models.RoleStaff && !req.Status.StaffAssignable() {
		return appErrors.Clone(appErrors.ErrForbidden, "staff cannot set this status")
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}

	s.invalidateStats(ctx)

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionStatusChange,
		Resource:   "complaint",
		ResourceID: &id,
		OldValues:  []byte(fmt.Sprintf(`{"status":%q}`, current.Status)),
		NewValues:  []byte(fmt.Sprintf(`{"status":%q}`, req.Status)),
	}); err != nil {
		s.logger.Warn("failed to record status change audit log", zap.Error(err))
	}

	return nil
}

// Delete removes a complaint and its attachment.
func (s *ComplaintService) Delete(ctx context.Context, actorID, id string) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete complaint")
	}

	s.invalidateStats(ctx)

	if current.AttachmentKey != nil {
		if err := s.store.Delete(*current.AttachmentKey); err != nil {
			s.logger.Warn("failed to delete attachment", zap.String("complaint_id", id), zap.Error(err))
		}
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionComplaintDelete,
		Resource:   "complaint",
		ResourceID: &id,
		OldValues:  []byte(fmt.Sprintf(`{"subject":%q}`, current.Subject)),
	}); err != nil {
		s.logger.Warn("failed to record delete audit log", zap.Error(err))
	}

	return nil
}

// AddComment appends an admin note to a complaint thread.
func (s *ComplaintService) AddComment(ctx context.Context, actorID, complaintID string, req models.AddCommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	if _, err := s.repo.FindByID(ctx, complaintID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}

	comment := &models.Comment{
		ComplaintID: complaintID,
		AdminID:     actorID,
		Body:        req.Body,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add comment")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionCommentAdd,
		Resource:   "complaint",
		ResourceID: &complaintID,
	}); err != nil {
		s.logger.Warn("failed to record comment audit log", zap.Error(err))
	}

	return comment, nil
}

// ResolveAttachment validates a signed token and returns the on-disk path of
// the referenced attachment.
func (s *ComplaintService) ResolveAttachment(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid attachment token")
	}
	return s.store.Path(relPath), nil
}

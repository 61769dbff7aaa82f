package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/campusdesk/complaint-api/internal/models"
	appErrors "github.com/campusdesk/complaint-api/pkg/errors"
)

type assignmentComplaintRepository interface {
	FindByID(ctx context.Context, id string) (*models.ComplaintListItem, error)
	UpdateAssignment(ctx context.Context, id string, staffID *string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type assignmentUserRepository interface {
	AuthorizedStaff(ctx context.Context) ([]models.StaffOption, error)
	IsAuthorizedStaff(ctx context.Context, id string) (bool, error)
}

// AssignmentService binds complaints to staff members. Only authorized staff
// are assignable; reassignment simply overwrites, and a nil staff id clears
// the binding.
type AssignmentService struct {
	complaints assignmentComplaintRepository
	users      assignmentUserRepository
	cache      *CacheService
	logger     *zap.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(complaints assignmentComplaintRepository, users assignmentUserRepository, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{complaints: complaints, users: users, logger: logger}
}

// WithCache attaches the statistics cache so assignment changes evict stale
// aggregates.
func (s *AssignmentService) WithCache(cache *CacheService) *AssignmentService {
	s.cache = cache
	return s
}

func (s *AssignmentService) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statsCachePattern); err != nil {
		s.logger.Warn("failed to invalidate statistics cache", zap.Error(err))
	}
}

// Assign sets or clears the staff member responsible for a complaint.
// Re-assigning the same staff member is idempotent: the write still lands so
// updated_at refreshes, but no audit entry is recorded.
func (s *AssignmentService) Assign(ctx context.Context, actorID, complaintID string, staffID *string) error {
	current, err := s.complaints.FindByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}

	if staffID != nil {
		ok, err := s.users.IsAuthorizedStaff(ctx, *staffID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify staff")
		}
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, "assignee must be an authorized staff member")
		}
	}

	unchanged := equalAssignment(current.AssignedTo, staffID)

	if err := s.complaints.UpdateAssignment(ctx, complaintID, staffID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}

	s.invalidateStats(ctx)

	if unchanged {
		return nil
	}

	if err := s.complaints.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionAssignChange,
		Resource:   "complaint",
		ResourceID: &complaintID,
		OldValues:  assignmentJSON(current.AssignedTo),
		NewValues:  assignmentJSON(staffID),
	}); err != nil {
		s.logger.Warn("failed to record assignment audit log", zap.Error(err))
	}

	return nil
}

// AuthorizedStaff lists the staff members eligible for assignment.
func (s *AssignmentService) AuthorizedStaff(ctx context.Context) ([]models.StaffOption, error) {
	staff, err := s.users.AuthorizedStaff(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list authorized staff")
	}
	return staff, nil
}

func equalAssignment(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func assignmentJSON(staffID *string) []byte {
	if staffID == nil {
		return []byte(`{"assigned_to":null}`)
	}
	return []byte(fmt.Sprintf(`{"assigned_to":%q}`, *staffID))
}

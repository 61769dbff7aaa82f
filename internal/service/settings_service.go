package service

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdesk/complaint-api/internal/models"
	appErrors "github.com/campusdesk/complaint-api/pkg/errors"
)

type settingRepository interface {
	ListAll(ctx context.Context) ([]models.Setting, error)
	BulkUpsert(ctx context.Context, settings []models.Setting) error
}

type settingsAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SettingsService manages the admin key/value settings store.
type SettingsService struct {
	repo      settingRepository
	auditor   settingsAuditor
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs a SettingsService instance.
func NewSettingsService(repo settingRepository, auditor settingsAuditor, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SettingsService{repo: repo, auditor: auditor, validator: validate, logger: logger}
}

// List returns every stored setting.
func (s *SettingsService) List(ctx context.Context) ([]models.Setting, error) {
	settings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list settings")
	}
	return settings, nil
}

// Update writes a batch of settings atomically.
func (s *SettingsService) Update(ctx context.Context, actorID string, req models.UpdateSettingsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}

	keys := make([]string, 0, len(req.Settings))
	for key := range req.Settings {
		if key == "" {
			return appErrors.Clone(appErrors.ErrValidation, "setting keys must not be empty")
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	settings := make([]models.Setting, 0, len(keys))
	for _, key := range keys {
		settings = append(settings, models.Setting{
			Key:       key,
			Value:     req.Settings[key],
			UpdatedBy: &actorID,
		})
	}

	if err := s.repo.BulkUpsert(ctx, settings); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}

	if s.auditor != nil {
		changed, _ := json.Marshal(keys)
		if err := s.auditor.CreateAuditLog(ctx, &models.AuditLog{
			UserID:    &actorID,
			Action:    models.AuditActionSettingsUpdate,
			Resource:  "settings",
			NewValues: changed,
		}); err != nil {
			s.logger.Warn("failed to record settings audit log", zap.Error(err))
		}
	}

	return nil
}

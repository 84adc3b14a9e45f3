package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/infrastructure/persistence/sqlite/model"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

type TrackingRepository struct {
	db *gorm.DB
}

var _ ports.TrackingRepository = (*TrackingRepository)(nil)

func NewTrackingRepository(db *gorm.DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

func (r *TrackingRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *TrackingRepository) GetLot(ctx context.Context, lotID uint64) (ports.Lot, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Lot{}, err
	}

	var row model.Lot
	if err := db.Where("lot_id = ?", lotID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Lot{}, fmt.Errorf("%w: lot %d", domainlot.ErrNotFound, lotID)
		}
		return ports.Lot{}, errs.Wrap(err, "query lot")
	}
	return mapLot(row), nil
}

func (r *TrackingRepository) ListLots(ctx context.Context, filter ports.LotFilter) ([]ports.Lot, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Lot{})
	if len(filter.States) > 0 {
		query = query.Where("state IN ?", filter.States)
	}
	if manufacturer := strings.TrimSpace(filter.Manufacturer); manufacturer != "" {
		query = query.Where("manufacturer = ?", manufacturer)
	}

	var rows []model.Lot
	if err := query.Order("lot_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query lots")
	}

	items := make([]ports.Lot, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapLot(row))
	}
	return items, nil
}

// GetLabReport returns a zero record with Performed=false when the lot has no
// report; callers must be able to probe lot state before the analysis exists.
func (r *TrackingRepository) GetLabReport(ctx context.Context, lotID uint64) (ports.LabReport, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.LabReport{}, err
	}

	var row model.LabReport
	if err := db.Where("lot_id = ?", lotID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.LabReport{LotID: lotID}, nil
		}
		return ports.LabReport{}, errs.Wrap(err, "query lab report")
	}
	return ports.LabReport{
		LotID:       row.LotID,
		Performed:   row.Performed,
		Approved:    row.Approved,
		MethanolPPM: row.MethanolPPM,
		ReportHash:  row.ReportHash,
		Laboratory:  row.Laboratory,
		AnalyzedAt:  row.AnalyzedAt,
	}, nil
}

func (r *TrackingRepository) ListLotEvents(ctx context.Context, lotID uint64) ([]ports.LotEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.LotEvent
	if err := db.Where("lot_id = ?", lotID).Order("event_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query lot events")
	}
	return mapEvents(rows), nil
}

func (r *TrackingRepository) ListEventsAfter(ctx context.Context, afterEventID uint64, limit int) ([]ports.LotEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.LotEvent{}).Where("event_id > ?", afterEventID).Order("event_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.LotEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query events")
	}
	return mapEvents(rows), nil
}

func (r *TrackingRepository) HasRole(ctx context.Context, identity string, role string) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.RoleMember{}).
		Where("role = ? AND identity = ?", role, identity).
		Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "query role membership")
	}
	return count > 0, nil
}

func (r *TrackingRepository) ListIdentityRoles(ctx context.Context, identity string) ([]string, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.RoleMember
	if err := db.Where("identity = ?", identity).Order("role asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query identity roles")
	}

	roles := make([]string, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.Role)
	}
	return roles, nil
}

func (r *TrackingRepository) ListRoleMembers(ctx context.Context, role string) ([]string, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.RoleMember
	if err := db.Where("role = ?", role).Order("identity asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query role members")
	}

	members := make([]string, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.Identity)
	}
	return members, nil
}

func (r *TrackingRepository) GetRegistryValue(ctx context.Context, key string) (string, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return "", false, err
	}

	var row model.RegistryKV
	if err := db.Where("key = ?", key).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query registry value")
	}
	return row.Value, true, nil
}

func (r *TrackingRepository) CreateLot(ctx context.Context, input ports.Lot) (ports.Lot, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Lot{}, err
	}

	row := model.Lot{
		ExternalCode: input.ExternalCode,
		Description:  input.Description,
		Manufacturer: input.Manufacturer,
		ProducedAt:   input.ProducedAt,
		State:        input.State,
		CreatedAt:    input.CreatedAt,
		UpdatedAt:    input.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Lot{}, errs.Wrap(err, "insert lot")
	}
	return mapLot(row), nil
}

func (r *TrackingRepository) SetLotState(ctx context.Context, lotID uint64, state string, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	return r.updateLot(db, lotID, map[string]any{
		"state":      state,
		"updated_at": updatedAt,
	})
}

func (r *TrackingRepository) MarkLotBlocked(ctx context.Context, lotID uint64, reason string, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	return r.updateLot(db, lotID, map[string]any{
		"state":        string(domainlot.StateBlocked),
		"block_reason": reason,
		"updated_at":   updatedAt,
	})
}

func (r *TrackingRepository) MarkLotDistributed(ctx context.Context, lotID uint64, destination string, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	return r.updateLot(db, lotID, map[string]any{
		"state":       string(domainlot.StateDistributed),
		"destination": destination,
		"updated_at":  updatedAt,
	})
}

func (r *TrackingRepository) updateLot(db *gorm.DB, lotID uint64, fields map[string]any) error {
	result := db.Model(&model.Lot{}).Where("lot_id = ?", lotID).Updates(fields)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update lot")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: lot %d", domainlot.ErrNotFound, lotID)
	}
	return nil
}

func (r *TrackingRepository) CreateLabReport(ctx context.Context, report ports.LabReport) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.LabReport{
		LotID:       report.LotID,
		Performed:   report.Performed,
		Approved:    report.Approved,
		MethanolPPM: report.MethanolPPM,
		ReportHash:  report.ReportHash,
		Laboratory:  report.Laboratory,
		AnalyzedAt:  report.AnalyzedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert lab report")
	}
	return nil
}

// AddRoleMember is idempotent: inserting an existing membership is a no-op.
func (r *TrackingRepository) AddRoleMember(ctx context.Context, role string, identity string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.RoleMember{Role: role, Identity: identity}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert role member")
	}
	return nil
}

func (r *TrackingRepository) RemoveRoleMember(ctx context.Context, role string, identity string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("role = ? AND identity = ?", role, identity).
		Delete(&model.RoleMember{}).Error; err != nil {
		return errs.Wrap(err, "delete role member")
	}
	return nil
}

func (r *TrackingRepository) SetRegistryValue(ctx context.Context, key string, value string, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.RegistryKV{Key: key, Value: value, UpdatedAt: updatedAt}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert registry value")
	}
	return nil
}

func (r *TrackingRepository) AppendEvent(ctx context.Context, input ports.LotEventCreate) (ports.LotEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.LotEvent{}, err
	}

	row := model.LotEvent{
		LotID:      input.LotID,
		Type:       input.Type,
		Payload:    input.Payload,
		RecordedAt: input.RecordedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.LotEvent{}, errs.Wrap(err, "insert lot event")
	}
	return ports.LotEvent{
		EventID:    row.EventID,
		LotID:      row.LotID,
		Type:       row.Type,
		Payload:    row.Payload,
		RecordedAt: row.RecordedAt,
	}, nil
}

func mapLot(row model.Lot) ports.Lot {
	return ports.Lot{
		LotID:        row.LotID,
		ExternalCode: row.ExternalCode,
		Description:  row.Description,
		Manufacturer: row.Manufacturer,
		ProducedAt:   row.ProducedAt,
		State:        row.State,
		BlockReason:  row.BlockReason,
		Destination:  row.Destination,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func mapEvents(rows []model.LotEvent) []ports.LotEvent {
	items := make([]ports.LotEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.LotEvent{
			EventID:    row.EventID,
			LotID:      row.LotID,
			Type:       row.Type,
			Payload:    row.Payload,
			RecordedAt: row.RecordedAt,
		})
	}
	return items
}

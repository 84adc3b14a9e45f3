package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/infrastructure/persistence/sqlite/model"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

func setupTrackingRepository(t *testing.T) *TrackingRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ledger.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Lot{},
		&model.LabReport{},
		&model.RoleMember{},
		&model.RegistryKV{},
		&model.LotEvent{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewTrackingRepository(db)
}

func insertLot(t *testing.T, repo *TrackingRepository, code string) ports.Lot {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	created, err := repo.CreateLot(context.Background(), ports.Lot{
		ExternalCode: code,
		Description:  "desc",
		Manufacturer: "acct-1",
		ProducedAt:   now,
		State:        domainlot.StateCreated.String(),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("create lot: %v", err)
	}
	return created
}

func TestCreateLotIDsAreMonotonic(t *testing.T) {
	repo := setupTrackingRepository(t)

	first := insertLot(t, repo, "A")
	second := insertLot(t, repo, "B")
	if second.LotID <= first.LotID {
		t.Fatalf("lot ids not increasing: %d then %d", first.LotID, second.LotID)
	}
}

func TestGetLotNotFound(t *testing.T) {
	repo := setupTrackingRepository(t)

	_, err := repo.GetLot(context.Background(), 42)
	if !errors.Is(err, domainlot.ErrNotFound) {
		t.Fatalf("GetLot() error = %v, want ErrNotFound", err)
	}
}

func TestGetLabReportReturnsDefault(t *testing.T) {
	repo := setupTrackingRepository(t)
	ctx := context.Background()
	lot := insertLot(t, repo, "A")

	report, err := repo.GetLabReport(ctx, lot.LotID)
	if err != nil {
		t.Fatalf("GetLabReport() error = %v", err)
	}
	if report.Performed {
		t.Fatalf("absent report Performed = true")
	}
	if report.LotID != lot.LotID {
		t.Fatalf("report.LotID = %d", report.LotID)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := repo.CreateLabReport(ctx, ports.LabReport{
		LotID:       lot.LotID,
		Performed:   true,
		Approved:    true,
		MethanolPPM: 55,
		ReportHash:  "hash",
		Laboratory:  "acct-lab",
		AnalyzedAt:  now,
	}); err != nil {
		t.Fatalf("CreateLabReport() error = %v", err)
	}

	report, err = repo.GetLabReport(ctx, lot.LotID)
	if err != nil {
		t.Fatalf("GetLabReport() error = %v", err)
	}
	if !report.Performed || report.MethanolPPM != 55 {
		t.Fatalf("report = %+v", report)
	}
}

func TestMarkLotBlockedAndDistributed(t *testing.T) {
	repo := setupTrackingRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	blocked := insertLot(t, repo, "B")
	if err := repo.MarkLotBlocked(ctx, blocked.LotID, "reason", now); err != nil {
		t.Fatalf("MarkLotBlocked() error = %v", err)
	}
	got, err := repo.GetLot(ctx, blocked.LotID)
	if err != nil {
		t.Fatalf("GetLot() error = %v", err)
	}
	if got.State != domainlot.StateBlocked.String() || got.BlockReason == nil || *got.BlockReason != "reason" {
		t.Fatalf("blocked lot = %+v", got)
	}

	shipped := insertLot(t, repo, "D")
	if err := repo.MarkLotDistributed(ctx, shipped.LotID, "dest", now); err != nil {
		t.Fatalf("MarkLotDistributed() error = %v", err)
	}
	got, err = repo.GetLot(ctx, shipped.LotID)
	if err != nil {
		t.Fatalf("GetLot() error = %v", err)
	}
	if got.State != domainlot.StateDistributed.String() || got.Destination == nil || *got.Destination != "dest" {
		t.Fatalf("distributed lot = %+v", got)
	}

	if err := repo.SetLotState(ctx, 9999, domainlot.StateApproved.String(), now); !errors.Is(err, domainlot.ErrNotFound) {
		t.Fatalf("SetLotState(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListLotsFilterByState(t *testing.T) {
	repo := setupTrackingRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	a := insertLot(t, repo, "A")
	insertLot(t, repo, "B")
	if err := repo.SetLotState(ctx, a.LotID, domainlot.StateApproved.String(), now); err != nil {
		t.Fatalf("SetLotState() error = %v", err)
	}

	items, err := repo.ListLots(ctx, ports.LotFilter{States: []string{domainlot.StateApproved.String()}})
	if err != nil {
		t.Fatalf("ListLots() error = %v", err)
	}
	if len(items) != 1 || items[0].LotID != a.LotID {
		t.Fatalf("ListLots() = %+v", items)
	}
}

func TestRoleMembershipIdempotent(t *testing.T) {
	repo := setupTrackingRepository(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.AddRoleMember(ctx, "laboratory", "acct-lab"); err != nil {
			t.Fatalf("AddRoleMember() attempt %d error = %v", i, err)
		}
	}

	members, err := repo.ListRoleMembers(ctx, "laboratory")
	if err != nil {
		t.Fatalf("ListRoleMembers() error = %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("ListRoleMembers() len = %d", len(members))
	}

	ok, err := repo.HasRole(ctx, "acct-lab", "laboratory")
	if err != nil || !ok {
		t.Fatalf("HasRole() = %v, %v", ok, err)
	}

	if err := repo.RemoveRoleMember(ctx, "laboratory", "acct-lab"); err != nil {
		t.Fatalf("RemoveRoleMember() error = %v", err)
	}
	ok, err = repo.HasRole(ctx, "acct-lab", "laboratory")
	if err != nil || ok {
		t.Fatalf("HasRole() after remove = %v, %v", ok, err)
	}
}

func TestRegistryValues(t *testing.T) {
	repo := setupTrackingRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, found, err := repo.GetRegistryValue(ctx, ports.RegistryKeyOwner)
	if err != nil {
		t.Fatalf("GetRegistryValue() error = %v", err)
	}
	if found {
		t.Fatalf("owner found before seeding")
	}

	if err := repo.SetRegistryValue(ctx, ports.RegistryKeyOwner, "acct-owner", now); err != nil {
		t.Fatalf("SetRegistryValue() error = %v", err)
	}
	if err := repo.SetRegistryValue(ctx, ports.RegistryKeyOwner, "acct-owner-2", now); err != nil {
		t.Fatalf("SetRegistryValue() upsert error = %v", err)
	}

	value, found, err := repo.GetRegistryValue(ctx, ports.RegistryKeyOwner)
	if err != nil || !found {
		t.Fatalf("GetRegistryValue() = %v, %v", found, err)
	}
	if value != "acct-owner-2" {
		t.Fatalf("GetRegistryValue() = %q", value)
	}
}

func TestAppendEventOrdering(t *testing.T) {
	repo := setupTrackingRepository(t)
	ctx := context.Background()
	lot := insertLot(t, repo, "E")
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var ids []uint64
	for _, eventType := range []string{"lot.created", "lot.blocked"} {
		event, err := repo.AppendEvent(ctx, ports.LotEventCreate{
			LotID:      lot.LotID,
			Type:       eventType,
			Payload:    "{}",
			RecordedAt: now,
		})
		if err != nil {
			t.Fatalf("AppendEvent() error = %v", err)
		}
		ids = append(ids, event.EventID)
	}
	if ids[1] <= ids[0] {
		t.Fatalf("event ids not increasing: %v", ids)
	}

	tail, err := repo.ListEventsAfter(ctx, ids[0], 10)
	if err != nil {
		t.Fatalf("ListEventsAfter() error = %v", err)
	}
	if len(tail) != 1 || tail[0].EventID != ids[1] {
		t.Fatalf("ListEventsAfter() = %+v", tail)
	}

	all, err := repo.ListLotEvents(ctx, lot.LotID)
	if err != nil {
		t.Fatalf("ListLotEvents() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListLotEvents() len = %d", len(all))
	}
}

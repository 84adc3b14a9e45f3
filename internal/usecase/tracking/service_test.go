package tracking

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	cacheinfra "github.com/thiagodalladea/bebida-segura/internal/infrastructure/cache"
	"github.com/thiagodalladea/bebida-segura/internal/infrastructure/notify"
	"github.com/thiagodalladea/bebida-segura/internal/infrastructure/persistence/sqlite/model"
	"github.com/thiagodalladea/bebida-segura/internal/infrastructure/persistence/sqlite/repository"
	"github.com/thiagodalladea/bebida-segura/internal/infrastructure/persistence/sqlite/uow"
)

const (
	testOwner        = "acct-owner"
	testManufacturer = "acct-fabricante"
	testLaboratory   = "acct-laboratorio"
	testDistributor  = "acct-distribuidora"
	testInspector    = "acct-fiscal"
	testLimitPPM     = 100
)

// setupService builds the engine on a real temp sqlite ledger with the owner
// seeded and all four roles granted to distinct identities.
func setupService(t *testing.T) *Service {
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

	repo := repository.NewTrackingRepository(db)
	svc := NewService(repo, uow.NewUnitOfWork(db), cacheinfra.NewSQLiteCache(db), notify.NopNotifier{}, testLimitPPM)

	ctx := context.Background()
	if err := svc.Initialize(ctx, InitializeInput{Owner: testOwner}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	grants := map[string]string{
		"manufacturer": testManufacturer,
		"laboratory":   testLaboratory,
		"distributor":  testDistributor,
		"inspector":    testInspector,
	}
	for role, identity := range grants {
		if err := svc.GrantRole(ctx, RoleChangeInput{Role: role, Identity: identity, Caller: testOwner}); err != nil {
			t.Fatalf("grant %s: %v", role, err)
		}
	}
	return svc
}

func createTestLot(t *testing.T, svc *Service, code string) uint64 {
	t.Helper()

	created, err := svc.CreateLot(context.Background(), CreateLotInput{
		ExternalCode: code,
		Description:  "Vodka Premium 1L",
		Caller:       testManufacturer,
	})
	if err != nil {
		t.Fatalf("create lot: %v", err)
	}
	return created.LotID
}

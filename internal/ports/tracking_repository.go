package ports

import "context"

// Registry keys persisted once at initialization.
const (
	RegistryKeyOwner          = "owner"
	RegistryKeyMethanolLimit  = "methanol_limit_ppm"
	RegistryKeySchemaSeededAt = "seeded_at"
)

type Lot struct {
	LotID        uint64
	ExternalCode string
	Description  string
	Manufacturer string
	ProducedAt   string
	State        string
	BlockReason  *string
	Destination  *string
	CreatedAt    string
	UpdatedAt    string
}

// LabReport carries the single analysis record of a lot. A zero record with
// Performed=false means "no report yet" and is not an error.
type LabReport struct {
	LotID       uint64
	Performed   bool
	Approved    bool
	MethanolPPM int64
	ReportHash  string
	Laboratory  string
	AnalyzedAt  string
}

type LotEvent struct {
	EventID    uint64
	LotID      uint64
	Type       string
	Payload    string
	RecordedAt string
}

type LotEventCreate struct {
	LotID      uint64
	Type       string
	Payload    string
	RecordedAt string
}

type LotFilter struct {
	States       []string
	Manufacturer string
}

type TrackingReadRepository interface {
	GetLot(ctx context.Context, lotID uint64) (Lot, error)
	ListLots(ctx context.Context, filter LotFilter) ([]Lot, error)
	GetLabReport(ctx context.Context, lotID uint64) (LabReport, error)
	ListLotEvents(ctx context.Context, lotID uint64) ([]LotEvent, error)
	ListEventsAfter(ctx context.Context, afterEventID uint64, limit int) ([]LotEvent, error)
	HasRole(ctx context.Context, identity string, role string) (bool, error)
	ListIdentityRoles(ctx context.Context, identity string) ([]string, error)
	ListRoleMembers(ctx context.Context, role string) ([]string, error)
	GetRegistryValue(ctx context.Context, key string) (string, bool, error)
}

type TrackingRepository interface {
	TrackingReadRepository
	CreateLot(ctx context.Context, input Lot) (Lot, error)
	SetLotState(ctx context.Context, lotID uint64, state string, updatedAt string) error
	MarkLotBlocked(ctx context.Context, lotID uint64, reason string, updatedAt string) error
	MarkLotDistributed(ctx context.Context, lotID uint64, destination string, updatedAt string) error
	CreateLabReport(ctx context.Context, report LabReport) error
	AddRoleMember(ctx context.Context, role string, identity string) error
	RemoveRoleMember(ctx context.Context, role string, identity string) error
	SetRegistryValue(ctx context.Context, key string, value string, updatedAt string) error
	AppendEvent(ctx context.Context, input LotEventCreate) (LotEvent, error)
}

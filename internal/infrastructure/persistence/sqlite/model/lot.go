package model

// Lot rows hold the lifecycle state. lot_id is AUTOINCREMENT so identifiers
// are strictly increasing and never reused.
type Lot struct {
	LotID        uint64  `gorm:"column:lot_id;primaryKey;autoIncrement"`
	ExternalCode string  `gorm:"column:external_code;type:text;not null;index"`
	Description  string  `gorm:"column:description;type:text;not null"`
	Manufacturer string  `gorm:"column:manufacturer;type:text;not null;index"`
	ProducedAt   string  `gorm:"column:produced_at;type:text;not null"`
	State        string  `gorm:"column:state;type:text;not null;index"`
	BlockReason  *string `gorm:"column:block_reason;type:text"`
	Destination  *string `gorm:"column:destination;type:text"`
	CreatedAt    string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt    string  `gorm:"column:updated_at;type:text;not null"`
}

func (Lot) TableName() string {
	return "lots"
}

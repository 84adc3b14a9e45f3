package model

// LotEvent rows are append-only; event_id reflects commit order.
type LotEvent struct {
	EventID    uint64 `gorm:"column:event_id;primaryKey;autoIncrement"`
	LotID      uint64 `gorm:"column:lot_id;not null;index"`
	Type       string `gorm:"column:type;type:text;not null"`
	Payload    string `gorm:"column:payload;type:text;not null"`
	RecordedAt string `gorm:"column:recorded_at;type:text;not null"`
}

func (LotEvent) TableName() string {
	return "lot_events"
}

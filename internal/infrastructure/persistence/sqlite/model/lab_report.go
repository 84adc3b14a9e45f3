package model

// LabReport has lot_id as primary key: at most one report per lot.
type LabReport struct {
	LotID       uint64 `gorm:"column:lot_id;primaryKey"`
	Performed   bool   `gorm:"column:performed;not null;default:0"`
	Approved    bool   `gorm:"column:approved;not null;default:0"`
	MethanolPPM int64  `gorm:"column:methanol_ppm;not null"`
	ReportHash  string `gorm:"column:report_hash;type:text;not null"`
	Laboratory  string `gorm:"column:laboratory;type:text;not null"`
	AnalyzedAt  string `gorm:"column:analyzed_at;type:text;not null"`
}

func (LabReport) TableName() string {
	return "lab_reports"
}

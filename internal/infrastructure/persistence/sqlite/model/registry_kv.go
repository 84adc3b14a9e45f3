package model

// RegistryKV holds process-wide scalars: owner identity, recorded methanol
// limit, and the cache entries.
type RegistryKV struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (RegistryKV) TableName() string {
	return "registry_kv"
}

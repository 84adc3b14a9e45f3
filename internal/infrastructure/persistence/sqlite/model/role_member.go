package model

type RoleMember struct {
	Role     string `gorm:"column:role;type:text;not null;primaryKey"`
	Identity string `gorm:"column:identity;type:text;not null;primaryKey"`
}

func (RoleMember) TableName() string {
	return "role_members"
}

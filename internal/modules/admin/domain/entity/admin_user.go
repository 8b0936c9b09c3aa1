package entity

import "time"

// AdminUser Dashboard 登录账号，Password 存 bcrypt 哈希
type AdminUser struct {
	Id        string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(191);not null;uniqueIndex:uniq_admin_email" json:"email"`
	Password  string    `gorm:"column:password;type:varchar(100);not null" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime;not null" json:"updatedAt"`
}

func (AdminUser) TableName() string { return "admin_user" }

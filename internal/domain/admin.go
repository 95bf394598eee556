package domain

import "time"

// AdminCredential stores the admin login. Password is a bcrypt hash,
// never plaintext. The record is created on the first successful login
// with the bootstrap credential pair from the configuration.
type AdminCredential struct {
	ID        int64     `json:"id,string" form:"id"`
	Username  string    `gorm:"uniqueIndex" json:"username" form:"username"`
	Password  string    `json:"-" form:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AdminCredential) TableName() string {
	return "cms_admin"
}

package domain

import "time"

// DoctorProfile is the practitioner profile shown on the public site.
// The store keeps at most one row; it is created lazily on first read.
type DoctorProfile struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `json:"name" form:"name"`
	Contact   string    `json:"contact" form:"contact"`
	Email     string    `json:"email" form:"email"`
	Address   string    `json:"address" form:"address"`
	Bio       string    `json:"bio" form:"bio"`
	Photo     string    `gorm:"size:1024" json:"photo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DoctorProfile) TableName() string {
	return "cms_doctor"
}

package domain

import "time"

// BrandSettings is the singleton site branding record.
type BrandSettings struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `json:"name" form:"name"`
	Tagline   string    `json:"tagline" form:"tagline"`
	Logo      string    `gorm:"size:1024" json:"logo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BrandSettings) TableName() string {
	return "cms_brand"
}

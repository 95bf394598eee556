package domain

import "time"

// Product is one catalog item. Image holds the public blob URL in
// object storage, or "" when no image has been uploaded.
type Product struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	Description string    `json:"description" form:"description"`
	Ingredients string    `json:"ingredients" form:"ingredients"`
	Benefits    string    `json:"benefits" form:"benefits"`
	Usage       string    `json:"usage" form:"usage"`
	Price       string    `json:"price" form:"price"`
	Image       string    `gorm:"size:1024" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "cms_product"
}

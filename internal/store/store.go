// Package store is the persistence layer for catalog, profile, brand
// and admin credential records.
package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ayurwell/ayurcms/internal/domain"
	"github.com/ayurwell/ayurcms/pkg/common"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// ListProducts returns the whole catalog, newest first.
func (s *Store) ListProducts() ([]domain.Product, error) {
	var products []domain.Product
	err := s.db.Order("created_at DESC").Find(&products).Error
	return products, err
}

func (s *Store) GetProduct(id int64) (*domain.Product, error) {
	var p domain.Product
	if err := s.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(p *domain.Product) error {
	if p.ID == 0 {
		p.ID = common.UUIDint64()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.db.Create(p).Error
}

// UpdateProduct applies updates to an existing product and returns the
// fresh row.
func (s *Store) UpdateProduct(id int64, updates map[string]interface{}) (*domain.Product, error) {
	var p domain.Product
	if err := s.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	updates["updated_at"] = time.Now()
	if err := s.db.Model(&p).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) DeleteProduct(id int64) error {
	res := s.db.Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindDoctor returns the profile row or nil when none exists yet.
func (s *Store) FindDoctor() (*domain.DoctorProfile, error) {
	var d domain.DoctorProfile
	err := s.db.First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Doctor returns the singleton profile, creating the default instance
// on first read.
func (s *Store) Doctor() (*domain.DoctorProfile, error) {
	d, err := s.FindDoctor()
	if err != nil {
		return nil, err
	}
	if d != nil {
		return d, nil
	}
	d = &domain.DoctorProfile{
		ID:      common.UUIDint64(),
		Name:    "Dr. Priya Sharma",
		Contact: "+91-9876543210",
		Email:   "dr.priya@ayurveda.com",
		Address: "123 Wellness Center, Ayurvedic Street, New Delhi - 110001",
		Bio: "Certified Ayurvedic Practitioner with 15+ years of experience in traditional healing. " +
			"Specialized in herbal remedies, panchakarma, and holistic wellness treatments.",
	}
	if err := s.SaveDoctor(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) SaveDoctor(d *domain.DoctorProfile) error {
	if d.ID == 0 {
		d.ID = common.UUIDint64()
	}
	d.UpdatedAt = time.Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = d.UpdatedAt
	}
	return s.db.Save(d).Error
}

// FindBrand returns the brand row or nil when none exists yet.
func (s *Store) FindBrand() (*domain.BrandSettings, error) {
	var b domain.BrandSettings
	err := s.db.First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Brand returns the singleton brand settings, creating the default
// instance on first read.
func (s *Store) Brand() (*domain.BrandSettings, error) {
	b, err := s.FindBrand()
	if err != nil {
		return nil, err
	}
	if b != nil {
		return b, nil
	}
	b = &domain.BrandSettings{
		ID:      common.UUIDint64(),
		Name:    "Dr. Ayurveda",
		Tagline: "Natural Healing Through Ayurveda",
	}
	if err := s.SaveBrand(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) SaveBrand(b *domain.BrandSettings) error {
	if b.ID == 0 {
		b.ID = common.UUIDint64()
	}
	if b.Name == "" {
		b.Name = "Dr. Ayurveda"
	}
	b.UpdatedAt = time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = b.UpdatedAt
	}
	return s.db.Save(b).Error
}

// FindAdmin returns the credential record for username, or nil when no
// record has been created yet.
func (s *Store) FindAdmin(username string) (*domain.AdminCredential, error) {
	var a domain.AdminCredential
	err := s.db.Where("username = ?", username).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateAdmin(username, passwordHash string) (*domain.AdminCredential, error) {
	now := time.Now()
	a := &domain.AdminCredential{
		ID:        common.UUIDint64(),
		Username:  username,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) UpdateAdminPassword(id int64, passwordHash string) error {
	return s.db.Model(&domain.AdminCredential{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password":   passwordHash,
		"updated_at": time.Now(),
	}).Error
}

// CountAdmins reports how many credential records exist.
func (s *Store) CountAdmins() (int64, error) {
	var n int64
	err := s.db.Model(&domain.AdminCredential{}).Count(&n).Error
	return n, err
}

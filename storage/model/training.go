package model

import (
	"time"

	"gorm.io/gorm"
)

// Training is a scheduled course occurrence.
type Training struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string    `json:"name"`
	Price    int64     `json:"price"`
	Location string    `json:"location,omitempty"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	CoachID  *uint     `gorm:"index" json:"coach_id,omitempty"`

	// Categories is loaded through TrainingCategory rows by the storage layer.
	Categories []Category `gorm:"-" json:"categories,omitempty"`

	// SignatoryName and SignatoryTitle are printed in the signature block.
	SignatoryName  string `json:"signatory_name,omitempty"`
	SignatoryTitle string `json:"signatory_title,omitempty"`
	// SignatureImage is an asset reference to the signatory's signature.
	SignatureImage string `json:"signature_image,omitempty"`
	// TemplateImage is an asset reference to the certificate background.
	TemplateImage string `json:"template_image,omitempty"`
	// TemplateID is the legacy numeric template reference; only consulted
	// when TemplateImage is empty.
	TemplateID *uint `json:"template_id,omitempty"`
	// TemplateVariant selects the certificate variant; the empty string is
	// the default variant.
	TemplateVariant string `json:"template_variant,omitempty"`
}

// AddTraining is the payload for creating a Training
type AddTraining struct {
	Name            string    `json:"name" validate:"required"`
	Price           int64     `json:"price" validate:"gte=0"`
	Location        string    `json:"location"`
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	EndsAt          time.Time `json:"ends_at" validate:"required,gtefield=StartsAt"`
	CoachID         *uint     `json:"coach_id"`
	CategoryCodes   []string  `json:"category_codes" validate:"required,min=1,dive,required"`
	SignatoryName   string    `json:"signatory_name"`
	SignatoryTitle  string    `json:"signatory_title"`
	SignatureImage  string    `json:"signature_image"`
	TemplateImage   string    `json:"template_image"`
	TemplateID      *uint     `json:"template_id"`
	TemplateVariant string    `json:"template_variant"`
}

// Category is a tag with a unique training code.
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Code      string         `gorm:"uniqueIndex" json:"code"`
	Name      string         `json:"name"`
}

// TrainingCategory links a Training to a Category. Soft-deleting a training
// soft-deletes its links.
type TrainingCategory struct {
	TrainingID uint           `gorm:"primaryKey"`
	CategoryID uint           `gorm:"primaryKey"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// EnrollmentCategory tags an enrollment with the categories its training had
// when the enrollment was created; used for reporting.
type EnrollmentCategory struct {
	EnrollmentID uint           `gorm:"primaryKey"`
	CategoryID   uint           `gorm:"primaryKey"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// CategoryCodes returns the codes of the training's categories
func (t Training) CategoryCodes() []string {
	codes := make([]string, len(t.Categories))
	for i, c := range t.Categories {
		codes[i] = c.Code
	}
	return codes
}

// TrainingsStore abstracts persistence of trainings.
type TrainingsStore interface {
	Create(add AddTraining) (*Training, error)
	Get(id uint) (*Training, error)
	List() ([]Training, error)
	SetCategories(id uint, codes []string) (*Training, error)
	// Delete soft-deletes the training together with its category links and
	// enrollments. Certificates are left untouched.
	Delete(id uint) error
	Restore(id uint) error
}

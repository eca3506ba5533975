package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Pack struct {
	gorm.Model
	Title       string          `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Genre       string          `gorm:"column:genre;type:varchar(100);index" json:"genre"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	CoverKey    string          `gorm:"column:cover_key;type:varchar(255)" json:"cover_key"`
	ProducerID  uint            `gorm:"column:producer_id;index;not null" json:"producer_id"`
	Samples     []Sample        `gorm:"foreignKey:PackID" json:"samples,omitempty"`
}

func (Pack) TableName() string { return "packs" }

type Sample struct {
	gorm.Model
	Title      string          `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Price      decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	BPM        int             `gorm:"column:bpm" json:"bpm"`
	MusicalKey string          `gorm:"column:musical_key;type:varchar(10)" json:"musical_key"`
	ObjectKey  string          `gorm:"column:object_key;type:varchar(255);not null" json:"-"`
	PackID     *uint           `gorm:"column:pack_id;index" json:"pack_id,omitempty"`
	ProducerID uint            `gorm:"column:producer_id;index;not null" json:"producer_id"`
}

func (Sample) TableName() string { return "samples" }

// OwnedBy reports whether the sample belongs to the given producer.
func (s *Sample) OwnedBy(producerID uint) bool {
	return s.ProducerID == producerID
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CanvasPosition is a plot's placement on the layout canvas, stored as jsonb.
type CanvasPosition struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Rotation *float64 `json:"rotation,omitempty"`
}

func (p CanvasPosition) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *CanvasPosition) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		return nil
	}
	return fmt.Errorf("cannot scan %T into CanvasPosition", value)
}

// Dimensions is an optional length/width pair, stored as jsonb.
type Dimensions struct {
	Length float64       `json:"length"`
	Width  float64       `json:"width"`
	Unit   DimensionUnit `json:"unit"`
}

func (d Dimensions) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *Dimensions) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		return nil
	}
	return fmt.Errorf("cannot scan %T into Dimensions", value)
}

// Plot is one sellable unit of a project's inventory. project_id and
// block_id are immutable after creation.
type Plot struct {
	PlotID         uuid.UUID       `gorm:"column:plot_id;type:uuid;primaryKey" json:"plot_id"`
	ProjectID      uuid.UUID       `gorm:"column:project_id;type:uuid;not null;index;uniqueIndex:idx_project_plot_number,priority:1" json:"project_id"`
	BlockID        uuid.UUID       `gorm:"column:block_id;type:uuid;not null;index" json:"block_id"`
	PlotNumber     string          `gorm:"column:plot_number;not null;uniqueIndex:idx_project_plot_number,priority:2" json:"plot_number"`
	Area           float64         `gorm:"column:area;type:decimal(18,2);not null" json:"area"`
	AreaUnit       AreaUnit        `gorm:"column:area_unit;type:varchar(16);not null;default:'SQ_FT'" json:"area_unit"`
	Dimensions     *Dimensions     `gorm:"column:dimensions;type:jsonb" json:"dimensions,omitempty"`
	Facing         Facing          `gorm:"column:facing;type:varchar(16);not null;default:'NORTH'" json:"facing"`
	PlotType       PlotType        `gorm:"column:plot_type;type:varchar(16);not null;default:'REGULAR'" json:"plot_type"`
	FrontRoadWidth *float64        `gorm:"column:front_road_width;type:decimal(10,2)" json:"front_road_width,omitempty"`
	Price          float64         `gorm:"column:price;type:decimal(18,2);not null" json:"price"`
	PricePerUnit   float64         `gorm:"column:price_per_unit;type:decimal(18,2);not null" json:"price_per_unit"`
	Status         PlotStatus      `gorm:"column:status;type:varchar(16);not null;default:'available'" json:"status"`
	BookedBy       *string         `gorm:"column:booked_by" json:"booked_by,omitempty"`
	BookingDate    *time.Time      `gorm:"column:booking_date" json:"booking_date,omitempty"`
	SoldDate       *time.Time      `gorm:"column:sold_date" json:"sold_date,omitempty"`
	CanvasPosition *CanvasPosition `gorm:"column:canvas_position;type:jsonb" json:"canvas_position,omitempty"`
	Boundaries     datatypes.JSON  `gorm:"column:boundaries;type:jsonb" json:"boundaries,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Plot) TableName() string {
	return "Plots"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (p *Plot) BeforeCreate(tx *gorm.DB) error {
	if p.PlotID == uuid.Nil {
		p.PlotID = uuid.New()
	}
	return nil
}

// BeforeUpdate rejects ownership changes; project_id and block_id are fixed at creation.
func (p *Plot) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("ProjectID") || tx.Statement.Changed("BlockID") {
		return errors.New("project_id and block_id are immutable")
	}
	return nil
}

// PlotStats is the per-status breakdown of a project's plots. Derived, never persisted.
type PlotStats struct {
	Available int `json:"available"`
	Booked    int `json:"booked"`
	Reserved  int `json:"reserved"`
	Sold      int `json:"sold"`
}

// Total returns the number of plots counted.
func (s PlotStats) Total() int {
	return s.Available + s.Booked + s.Reserved + s.Sold
}

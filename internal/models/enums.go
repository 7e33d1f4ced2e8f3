package models

// AreaUnit is the measurement unit for plot area.
type AreaUnit string

const (
	AreaUnitSqFt  AreaUnit = "SQ_FT"
	AreaUnitSqM   AreaUnit = "SQ_METER"
	AreaUnitSqYd  AreaUnit = "SQ_YARDS"
	AreaUnitAcres AreaUnit = "ACRES"
)

func (u AreaUnit) Valid() bool {
	switch u {
	case AreaUnitSqFt, AreaUnitSqM, AreaUnitSqYd, AreaUnitAcres:
		return true
	}
	return false
}

// DimensionUnit is the unit for plot length/width.
type DimensionUnit string

const (
	DimensionFeet  DimensionUnit = "FEET"
	DimensionMeter DimensionUnit = "METER"
)

func (u DimensionUnit) Valid() bool {
	return u == DimensionFeet || u == DimensionMeter
}

// Facing is the compass direction a plot faces.
type Facing string

const (
	FacingNorth     Facing = "NORTH"
	FacingSouth     Facing = "SOUTH"
	FacingEast      Facing = "EAST"
	FacingWest      Facing = "WEST"
	FacingNorthEast Facing = "NORTH_EAST"
	FacingNorthWest Facing = "NORTH_WEST"
	FacingSouthEast Facing = "SOUTH_EAST"
	FacingSouthWest Facing = "SOUTH_WEST"
)

func (f Facing) Valid() bool {
	switch f {
	case FacingNorth, FacingSouth, FacingEast, FacingWest,
		FacingNorthEast, FacingNorthWest, FacingSouthEast, FacingSouthWest:
		return true
	}
	return false
}

// PlotType classifies the plot's placement in the layout.
type PlotType string

const (
	PlotTypeRegular PlotType = "REGULAR"
	PlotTypeCorner  PlotType = "CORNER"
	PlotTypeRoad    PlotType = "ROAD"
)

func (t PlotType) Valid() bool {
	return t == PlotTypeRegular || t == PlotTypeCorner || t == PlotTypeRoad
}

// PlotStatus is the sale lifecycle status of a plot.
type PlotStatus string

const (
	PlotAvailable PlotStatus = "available"
	PlotBooked    PlotStatus = "booked"
	PlotReserved  PlotStatus = "reserved"
	PlotSold      PlotStatus = "sold"
)

func (s PlotStatus) Valid() bool {
	switch s {
	case PlotAvailable, PlotBooked, PlotReserved, PlotSold:
		return true
	}
	return false
}

// PlotStatuses lists all plot statuses in display order.
var PlotStatuses = []PlotStatus{PlotAvailable, PlotBooked, PlotReserved, PlotSold}

// BlockStatus is the lifecycle status of a block (and of a project).
type BlockStatus string

const (
	BlockActive    BlockStatus = "active"
	BlockInactive  BlockStatus = "inactive"
	BlockCompleted BlockStatus = "completed"
)

func (s BlockStatus) Valid() bool {
	return s == BlockActive || s == BlockInactive || s == BlockCompleted
}

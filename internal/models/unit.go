package models

import (
	"time"

	"github.com/google/uuid"
)

type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitEnRoute     UnitStatus = "en_route"
	UnitOnScene     UnitStatus = "on_scene"
	UnitMaintenance UnitStatus = "maintenance"
	UnitUnavailable UnitStatus = "unavailable"
)

// Unit - выездной экипаж (машина)
type Unit struct {
	ID           uuid.UUID  `json:"id"`
	Plate        string     `json:"plate"`
	CallSign     string     `json:"call_sign"`
	Type         string     `json:"type"`
	Status       UnitStatus `json:"status"`
	DepartmentID uuid.UUID  `json:"department_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Position - отметка GPS; текущая позиция = последняя по RecordedAt
type Position struct {
	ID         uuid.UUID `json:"id"`
	UnitID     uuid.UUID `json:"unit_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	SpeedKmh   float64   `json:"speed_kmh"`
	RecordedAt time.Time `json:"recorded_at"`
}

type DepartmentKind string

const (
	DepartmentStandard DepartmentKind = "standard"
	DepartmentHomicide DepartmentKind = "homicide"
)

type Department struct {
	ID   uuid.UUID      `json:"id"`
	Code string         `json:"code"`
	Name string         `json:"name"`
	Kind DepartmentKind `json:"kind"`
}

// UnitFilter - фильтр для выборки экипажей; нулевые значения не ограничивают
type UnitFilter struct {
	Status              UnitStatus
	DepartmentID        uuid.UUID
	ExcludeDepartmentID uuid.UUID
}

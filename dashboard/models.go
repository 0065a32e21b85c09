// Package dashboard holds the manufacturing KPI dataset behind the web
// dashboard: its relational model, a sample generator, the PostgreSQL loader
// and the aggregations the charts are built from.
package dashboard

import (
	"time"
)

// Project is an engineer-to-order manufacturing job.
type Project struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string    `gorm:"type:varchar(100);not null" json:"name"`
	Type             string    `gorm:"type:varchar(100);not null" json:"type"`
	Customer         string    `gorm:"type:varchar(100);not null" json:"customer"`
	StartDate        time.Time `gorm:"type:date;not null" json:"start_date"`
	DueDate          time.Time `gorm:"type:date;not null" json:"due_date"`
	Status           string    `gorm:"type:varchar(50);not null" json:"status"`
	Progress         int       `gorm:"default:0" json:"progress"`
	EstimatedHours   int       `json:"estimated_hours"`
	ActualHours      int       `gorm:"default:0" json:"actual_hours"`
	CostVariance     float64   `gorm:"default:0" json:"cost_variance"`
	ScheduleVariance float64   `gorm:"default:0" json:"schedule_variance"`
	MaterialsCost    float64   `gorm:"default:0" json:"materials_cost"`
	LaborCost        float64   `gorm:"default:0" json:"labor_cost"`
	OriginalBudget   float64   `gorm:"not null" json:"original_budget"`
	CurrentBudget    float64   `json:"current_budget"`
	Description      string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

func (Project) TableName() string { return "projects" }

// Completed reports whether the project has reached full progress.
func (p Project) Completed() bool { return p.Progress >= 100 }

// Resource is a person who can be scheduled onto projects.
type Resource struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"type:varchar(100);not null" json:"name"`
	Type           string    `gorm:"type:varchar(100);not null" json:"type"`
	Department     string    `gorm:"type:varchar(100);not null" json:"department"`
	Utilization    float64   `gorm:"default:0" json:"utilization"`
	AvailableHours int       `gorm:"default:40" json:"available_hours"`
	ScheduledHours int       `gorm:"default:0" json:"scheduled_hours"`
	ProjectCount   int       `gorm:"default:0" json:"project_count"`
	HourlyRate     float64   `gorm:"default:0" json:"hourly_rate"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

func (Resource) TableName() string { return "resources" }

type ResourceAllocation struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID      uint      `gorm:"index" json:"project_id"`
	ResourceID     uint      `gorm:"index" json:"resource_id"`
	HoursAllocated float64   `gorm:"default:0" json:"hours_allocated"`
	StartDate      time.Time `gorm:"type:date" json:"start_date"`
	EndDate        time.Time `gorm:"type:date" json:"end_date"`
	CreatedAt      time.Time `json:"-"`

	Project  Project  `gorm:"foreignKey:ProjectID" json:"-"`
	Resource Resource `gorm:"foreignKey:ResourceID" json:"-"`
}

func (ResourceAllocation) TableName() string { return "resource_allocations" }

// InventoryItem is a stocked component.
type InventoryItem struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Component       string    `gorm:"type:varchar(100);not null" json:"component"`
	OnHand          int       `gorm:"default:0" json:"on_hand"`
	Allocated       int       `gorm:"default:0" json:"allocated"`
	OnOrder         int       `gorm:"default:0" json:"on_order"`
	LeadTimeDays    int       `gorm:"default:0" json:"lead_time_days"`
	ReorderPoint    int       `gorm:"default:0" json:"reorder_point"`
	AvgMonthlyUsage float64   `gorm:"default:0" json:"avg_monthly_usage"`
	CostPerUnit     float64   `gorm:"default:0" json:"cost_per_unit"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

// Value is the on-hand stock value.
func (item InventoryItem) Value() float64 {
	return float64(item.OnHand) * item.CostPerUnit
}

type InventoryAllocation struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID         uint      `gorm:"index" json:"project_id"`
	InventoryID       uint      `gorm:"index" json:"inventory_id"`
	QuantityAllocated int       `gorm:"default:0" json:"quantity_allocated"`
	CreatedAt         time.Time `json:"-"`

	Project       Project       `gorm:"foreignKey:ProjectID" json:"-"`
	InventoryItem InventoryItem `gorm:"foreignKey:InventoryID" json:"-"`
}

func (InventoryAllocation) TableName() string { return "inventory_allocations" }

// KPIRecord is one month of plant-wide performance indicators.
type KPIRecord struct {
	ID                      uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Date                    time.Time `gorm:"type:date;not null" json:"-"`
	OnTimeDelivery          float64   `json:"on_time_delivery"`
	FirstPassYield          float64   `json:"first_pass_yield"`
	LaborEfficiency         float64   `json:"labor_efficiency"`
	CycleTimeVariance       float64   `json:"cycle_time_variance"`
	MaterialWastePercent    float64   `json:"material_waste_percent"`
	EngineeringChangeOrders int       `json:"engineering_change_orders"`
	CustomerSatisfaction    float64   `json:"customer_satisfaction"`
	SafetyIncidents         int       `json:"safety_incidents"`
	CreatedAt               time.Time `json:"-"`
	UpdatedAt               time.Time `json:"-"`
}

func (KPIRecord) TableName() string { return "kpi_records" }

// Month renders the record date as YYYY-MM.
func (k KPIRecord) Month() string { return k.Date.Format("2006-01") }

// Models lists every table in creation order.
func Models() []interface{} {
	return []interface{}{
		&Project{},
		&Resource{},
		&ResourceAllocation{},
		&InventoryItem{},
		&InventoryAllocation{},
		&KPIRecord{},
	}
}

const (
	SourceSample   = "sample"
	SourceDatabase = "database"
)

// Dataset is an immutable snapshot of everything the dashboard renders.
// KPIs are ordered by ascending date.
type Dataset struct {
	Projects  []Project       `json:"projects"`
	Resources []Resource      `json:"resources"`
	Inventory []InventoryItem `json:"inventory"`
	KPIs      []KPIRecord     `json:"kpis"`
	Source    string          `json:"source"`
	LoadedAt  time.Time       `json:"loaded_at"`
}

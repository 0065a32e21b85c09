package dashboard

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

const (
	SampleProjects  = 20
	SampleResources = 30
	SampleMonths    = 12
)

var (
	ProjectPrefixes = []string{"FR-1000", "PK-2500", "WR-750", "CP-3000", "BP-1200"}
	ProjectTypes    = []string{"Food Robot", "Packaging Kit", "Wrapping Robot", "Case Packer", "Bottle Packer"}
	ProjectStatuses = []string{"Engineering", "Procurement", "Production", "Testing", "Delivered"}
	ResourceTypes   = []string{"Engineer", "Technician", "Welder", "Electrician", "QA Specialist", "Programmer"}
	Departments     = []string{"Engineering", "Production", "QA", "Assembly"}
)

var InventoryComponents = []string{
	"Motors",
	"Sensors",
	"Controllers",
	"Actuators",
	"Conveyors",
	"Grippers",
	"Electrical Panels",
	"Vision Systems",
	"Safety Components",
	"Servo Drives",
	"Pneumatic Valves",
	"HMI Units",
	"Gearboxes",
}

// GenerateSample builds a randomized but realistic dataset anchored at now.
// Passing a seeded r yields a reproducible dataset.
func GenerateSample(r *rand.Rand, now time.Time) *Dataset {
	today := truncateDay(now)
	return &Dataset{
		Projects:  sampleProjects(r, today),
		Resources: sampleResources(r),
		Inventory: sampleInventory(r),
		KPIs:      sampleKPIs(r, today),
		Source:    SourceSample,
		LoadedAt:  now,
	}
}

func sampleProjects(r *rand.Rand, today time.Time) []Project {
	projects := make([]Project, 0, SampleProjects)
	for i := 0; i < SampleProjects; i++ {
		var (
			start    = today.AddDate(0, 0, -between(r, 0, 180))
			duration = between(r, 30, 120)
			due      = start.AddDate(0, 0, duration)
			progress int
		)
		if today.After(due) {
			progress = 100
		} else {
			elapsed := int(today.Sub(start).Hours() / 24)
			progress = int(math.Min(100, float64(elapsed)/float64(duration)*100))
			progress = clampInt(progress+between(r, -10, 20), 0, 100)
		}

		estimated := between(r, 300, 2000)
		p := Project{
			ID:               uint(i + 1),
			Name:             fmt.Sprintf("%v-%v", pick(r, ProjectPrefixes), between(r, 1000, 9999)),
			Type:             pick(r, ProjectTypes),
			Customer:         fmt.Sprintf("Customer %v", between(r, 1, 15)),
			StartDate:        start,
			DueDate:          due,
			Status:           pick(r, ProjectStatuses),
			Progress:         progress,
			EstimatedHours:   estimated,
			ActualHours:      int(float64(estimated) * float64(progress) / 100 * uniform(r, 0.8, 1.3)),
			CostVariance:     uniform(r, -15, 15),
			ScheduleVariance: uniform(r, -20, 10),
			MaterialsCost:    float64(between(r, 50000, 200000)),
			LaborCost:        float64(between(r, 30000, 150000)),
			OriginalBudget:   float64(between(r, 100000, 500000)),
		}
		p.CurrentBudget = p.OriginalBudget * (1 + p.CostVariance/100)
		projects = append(projects, p)
	}
	return projects
}

func sampleResources(r *rand.Rand) []Resource {
	resources := make([]Resource, 0, SampleResources)
	for i := 0; i < SampleResources; i++ {
		typ := pick(r, ResourceTypes)
		resources = append(resources, Resource{
			ID:             uint(i + 1),
			Name:           fmt.Sprintf("%v %v", typ, i+1),
			Type:           typ,
			Department:     pick(r, Departments),
			Utilization:    float64(between(r, 50, 100)),
			AvailableHours: between(r, 20, 40),
			ScheduledHours: between(r, 30, 45),
			ProjectCount:   between(r, 1, 4),
			HourlyRate:     float64(between(r, 25, 95)),
		})
	}
	return resources
}

func sampleInventory(r *rand.Rand) []InventoryItem {
	items := make([]InventoryItem, 0, len(InventoryComponents))
	for i, component := range InventoryComponents {
		items = append(items, InventoryItem{
			ID:              uint(i + 1),
			Component:       component,
			OnHand:          between(r, 5, 50),
			Allocated:       between(r, 3, 30),
			OnOrder:         between(r, 0, 20),
			LeadTimeDays:    between(r, 7, 60),
			ReorderPoint:    between(r, 5, 15),
			AvgMonthlyUsage: float64(between(r, 3, 25)),
			CostPerUnit:     float64(between(r, 100, 5000)),
		})
	}
	return items
}

// sampleKPIs yields SampleMonths records stepping back 30 days at a time
// from the first of the current month, sorted ascending by date.
func sampleKPIs(r *rand.Rand, today time.Time) []KPIRecord {
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	kpis := make([]KPIRecord, 0, SampleMonths)
	for i := 0; i < SampleMonths; i++ {
		kpis = append(kpis, KPIRecord{
			Date:                    first.AddDate(0, 0, -30*i),
			OnTimeDelivery:          float64(between(r, 60, 95)),
			FirstPassYield:          float64(between(r, 70, 98)),
			LaborEfficiency:         float64(between(r, 75, 95)),
			CycleTimeVariance:       uniform(r, -15, 15),
			MaterialWastePercent:    uniform(r, 2, 10),
			EngineeringChangeOrders: between(r, 2, 12),
			CustomerSatisfaction:    float64(between(r, 70, 95)),
			SafetyIncidents:         between(r, 0, 3),
		})
	}
	sort.SliceStable(kpis, func(i, j int) bool {
		return kpis[i].Date.Before(kpis[j].Date)
	})
	for i := range kpis {
		kpis[i].ID = uint(i + 1)
	}
	return kpis
}

// between returns an int in [lo, hi).
func between(r *rand.Rand, lo int, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo)
}

func uniform(r *rand.Rand, lo float64, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func pick(r *rand.Rand, xs []string) string {
	return xs[r.Intn(len(xs))]
}

func clampInt(x int, lo int, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

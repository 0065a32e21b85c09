package dashboard

import (
	"sort"
)

type ChartKind string

const (
	Bar     ChartKind = "bar"
	Pie     ChartKind = "pie"
	Donut   ChartKind = "doughnut"
	Scatter ChartKind = "scatter"
	Line    ChartKind = "line"
	BoxPlot ChartKind = "box"
)

// Point is a scatter point; R is the relative bubble size in [0,1].
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	R     float64 `json:"r,omitempty"`
	Label string  `json:"label,omitempty"`
}

// Series is one dataset within a chart.  Categorical charts fill Values,
// scatter charts fill Points and box charts fill Boxes, all aligned with
// Chart.Labels where applicable.
type Series struct {
	Name   string     `json:"name"`
	Color  string     `json:"color,omitempty"`
	Values []float64  `json:"values,omitempty"`
	Points []Point    `json:"points,omitempty"`
	Boxes  []BoxStats `json:"boxes,omitempty"`
}

// Chart is a renderer-neutral chart description.
type Chart struct {
	ID     string    `json:"id"`
	Tab    string    `json:"tab"`
	Title  string    `json:"title"`
	Kind   ChartKind `json:"kind"`
	XTitle string    `json:"x_title,omitempty"`
	YTitle string    `json:"y_title,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	Series []Series  `json:"series"`
}

// Dashboard tabs, in display order.
const (
	TabProjects  = "projects"
	TabResources = "resources"
	TabInventory = "inventory"
	TabKPIs      = "kpis"
)

var Tabs = []string{TabProjects, TabResources, TabInventory, TabKPIs}

// seriesColors cycles through the palette for multi-series charts.
var seriesColors = []string{"#0466C8", "#38B000", "#F48C06", "#D62828", "#979DAC", "#1B263B"}

func colorAt(i int) string {
	return seriesColors[i%len(seriesColors)]
}

// Charts builds every chart on the dashboard from ds.
func Charts(ds *Dataset) []Chart {
	return []Chart{
		projectsByStatus(ds),
		projectsByType(ds),
		costVsSchedule(ds),
		utilizationByDepartment(ds),
		resourcesByType(ds),
		availableVsScheduled(ds),
		inventoryStatus(ds),
		leadTimes(ds),
		inventoryValue(ds),
		kpiTrend(ds),
		qualityTrend(ds),
		safetyIncidents(ds),
	}
}

// ChartsForTab filters Charts(ds) down to one tab.
func ChartsForTab(ds *Dataset, tab string) []Chart {
	charts := []Chart{}
	for _, c := range Charts(ds) {
		if c.Tab == tab {
			charts = append(charts, c)
		}
	}
	return charts
}

func countChart(id string, tab string, title string, kind ChartKind, counts []Count) Chart {
	c := Chart{
		ID:     id,
		Tab:    tab,
		Title:  title,
		Kind:   kind,
		Labels: make([]string, 0, len(counts)),
	}
	values := make([]float64, 0, len(counts))
	for _, cnt := range counts {
		c.Labels = append(c.Labels, cnt.Key)
		values = append(values, float64(cnt.Count))
	}
	c.Series = []Series{{Name: "Count", Color: Palette["primary"], Values: values}}
	return c
}

func projectsByStatus(ds *Dataset) Chart {
	keys := make([]string, 0, len(ds.Projects))
	for _, p := range ds.Projects {
		keys = append(keys, p.Status)
	}
	c := countChart("projects-by-status", TabProjects, "Projects by Status", Bar, CountBy(keys))
	c.XTitle = "Status"
	c.YTitle = "Number of Projects"
	return c
}

func projectsByType(ds *Dataset) Chart {
	keys := make([]string, 0, len(ds.Projects))
	for _, p := range ds.Projects {
		keys = append(keys, p.Type)
	}
	return countChart("projects-by-type", TabProjects, "Projects by Type", Pie, CountBy(keys))
}

// costVsSchedule plots one series per project type, bubble size scaled to
// the largest original budget.
func costVsSchedule(ds *Dataset) Chart {
	maxBudget := 0.0
	for _, p := range ds.Projects {
		if p.OriginalBudget > maxBudget {
			maxBudget = p.OriginalBudget
		}
	}
	var (
		idx    = map[string]int{}
		series = []Series{}
	)
	for _, p := range ds.Projects {
		i, ok := idx[p.Type]
		if !ok {
			i = len(series)
			idx[p.Type] = i
			series = append(series, Series{Name: p.Type, Color: colorAt(i)})
		}
		pt := Point{X: p.ScheduleVariance, Y: p.CostVariance, Label: p.Name}
		if maxBudget > 0 {
			pt.R = p.OriginalBudget / maxBudget
		}
		series[i].Points = append(series[i].Points, pt)
	}
	return Chart{
		ID:     "cost-vs-schedule",
		Tab:    TabProjects,
		Title:  "Cost vs Schedule Variance",
		Kind:   Scatter,
		XTitle: "Schedule Variance (%)",
		YTitle: "Cost Variance (%)",
		Series: series,
	}
}

func utilizationByDepartment(ds *Dataset) Chart {
	var (
		idx    = map[string]int{}
		labels = []string{}
		values = [][]float64{}
	)
	for _, r := range ds.Resources {
		i, ok := idx[r.Department]
		if !ok {
			i = len(labels)
			idx[r.Department] = i
			labels = append(labels, r.Department)
			values = append(values, nil)
		}
		values[i] = append(values[i], r.Utilization)
	}
	boxes := make([]BoxStats, 0, len(values))
	for _, vs := range values {
		boxes = append(boxes, Box(vs))
	}
	return Chart{
		ID:     "utilization-by-department",
		Tab:    TabResources,
		Title:  "Resource Utilization Distribution",
		Kind:   BoxPlot,
		XTitle: "Department",
		YTitle: "Utilization (%)",
		Labels: labels,
		Series: []Series{{Name: "Utilization", Color: Palette["primary"], Boxes: boxes}},
	}
}

func resourcesByType(ds *Dataset) Chart {
	keys := make([]string, 0, len(ds.Resources))
	for _, r := range ds.Resources {
		keys = append(keys, r.Type)
	}
	return countChart("resources-by-type", TabResources, "Resources by Type", Pie, CountBy(keys))
}

func availableVsScheduled(ds *Dataset) Chart {
	var (
		idx    = map[string]int{}
		series = []Series{}
	)
	for _, r := range ds.Resources {
		i, ok := idx[r.Department]
		if !ok {
			i = len(series)
			idx[r.Department] = i
			series = append(series, Series{Name: r.Department, Color: colorAt(i)})
		}
		series[i].Points = append(series[i].Points, Point{
			X:     float64(r.AvailableHours),
			Y:     float64(r.ScheduledHours),
			R:     r.Utilization / 100,
			Label: r.Name,
		})
	}
	return Chart{
		ID:     "available-vs-scheduled",
		Tab:    TabResources,
		Title:  "Available vs. Scheduled Hours",
		Kind:   Scatter,
		XTitle: "Available Hours",
		YTitle: "Scheduled Hours",
		Series: series,
	}
}

func inventoryStatus(ds *Dataset) Chart {
	c := Chart{
		ID:     "inventory-status",
		Tab:    TabInventory,
		Title:  "Inventory Status by Component",
		Kind:   Bar,
		XTitle: "Component",
		YTitle: "Quantity",
	}
	onHand := Series{Name: "On Hand", Color: Palette["primary"]}
	allocated := Series{Name: "Allocated", Color: Palette["warning"]}
	onOrder := Series{Name: "On Order", Color: Palette["success"]}
	for _, item := range ds.Inventory {
		c.Labels = append(c.Labels, item.Component)
		onHand.Values = append(onHand.Values, float64(item.OnHand))
		allocated.Values = append(allocated.Values, float64(item.Allocated))
		onOrder.Values = append(onOrder.Values, float64(item.OnOrder))
	}
	c.Series = []Series{onHand, allocated, onOrder}
	return c
}

// leadTimes orders components by descending lead time.
func leadTimes(ds *Dataset) Chart {
	items := append([]InventoryItem(nil), ds.Inventory...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LeadTimeDays > items[j].LeadTimeDays
	})
	c := Chart{
		ID:     "lead-times",
		Tab:    TabInventory,
		Title:  "Component Lead Times",
		Kind:   Bar,
		XTitle: "Component",
		YTitle: "Lead Time (Days)",
	}
	values := make([]float64, 0, len(items))
	for _, item := range items {
		c.Labels = append(c.Labels, item.Component)
		values = append(values, float64(item.LeadTimeDays))
	}
	c.Series = []Series{{Name: "Lead Time", Color: Palette["secondary"], Values: values}}
	return c
}

func inventoryValue(ds *Dataset) Chart {
	c := Chart{
		ID:    "inventory-value",
		Tab:   TabInventory,
		Title: "Inventory Value by Component",
		Kind:  Donut,
	}
	values := make([]float64, 0, len(ds.Inventory))
	for _, item := range ds.Inventory {
		c.Labels = append(c.Labels, item.Component)
		values = append(values, item.Value())
	}
	c.Series = []Series{{Name: "Value", Values: values}}
	return c
}

func kpiMonths(ds *Dataset) []string {
	months := make([]string, 0, len(ds.KPIs))
	for _, k := range ds.KPIs {
		months = append(months, k.Month())
	}
	return months
}

func kpiSeries(ds *Dataset, name string, color string, fn func(KPIRecord) float64) Series {
	s := Series{Name: name, Color: color, Values: make([]float64, 0, len(ds.KPIs))}
	for _, k := range ds.KPIs {
		s.Values = append(s.Values, fn(k))
	}
	return s
}

func kpiTrend(ds *Dataset) Chart {
	return Chart{
		ID:     "kpi-trend",
		Tab:    TabKPIs,
		Title:  "KPIs Trend",
		Kind:   Line,
		XTitle: "Month",
		YTitle: "Percentage (%)",
		Labels: kpiMonths(ds),
		Series: []Series{
			kpiSeries(ds, "On-Time Delivery", colorAt(0), func(k KPIRecord) float64 { return k.OnTimeDelivery }),
			kpiSeries(ds, "First Pass Yield", colorAt(1), func(k KPIRecord) float64 { return k.FirstPassYield }),
			kpiSeries(ds, "Labor Efficiency", colorAt(2), func(k KPIRecord) float64 { return k.LaborEfficiency }),
			kpiSeries(ds, "Customer Satisfaction", colorAt(3), func(k KPIRecord) float64 { return k.CustomerSatisfaction }),
		},
	}
}

func qualityTrend(ds *Dataset) Chart {
	return Chart{
		ID:     "quality-trend",
		Tab:    TabKPIs,
		Title:  "Quality Metrics Trend",
		Kind:   Line,
		XTitle: "Month",
		YTitle: "Value",
		Labels: kpiMonths(ds),
		Series: []Series{
			kpiSeries(ds, "Material Waste (%)", colorAt(2), func(k KPIRecord) float64 { return k.MaterialWastePercent }),
			kpiSeries(ds, "Cycle Time Variance (%)", colorAt(0), func(k KPIRecord) float64 { return k.CycleTimeVariance }),
			kpiSeries(ds, "Engineering Change Orders", colorAt(3), func(k KPIRecord) float64 { return float64(k.EngineeringChangeOrders) }),
		},
	}
}

func safetyIncidents(ds *Dataset) Chart {
	return Chart{
		ID:     "safety-incidents",
		Tab:    TabKPIs,
		Title:  "Safety Incidents by Month",
		Kind:   Bar,
		XTitle: "Month",
		YTitle: "Number of Incidents",
		Labels: kpiMonths(ds),
		Series: []Series{
			kpiSeries(ds, "Safety Incidents", Palette["danger"], func(k KPIRecord) float64 { return float64(k.SafetyIncidents) }),
		},
	}
}

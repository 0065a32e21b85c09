package dashboard

import (
	"sort"
)

// Targets shown alongside the summary cards.
const (
	TargetOnTimeDelivery = 95.0
	TargetFirstPassYield = 98.0
	TargetUtilization    = 85.0
)

// Palette used by the charts and page.
var Palette = map[string]string{
	"primary":    "#0466C8",
	"secondary":  "#979DAC",
	"success":    "#38B000",
	"warning":    "#F48C06",
	"danger":     "#D62828",
	"light":      "#F5F3F4",
	"dark":       "#1B263B",
	"background": "#F8F9FA",
	"text":       "#212529",
}

// Summary backs the cards across the top of the dashboard.
type Summary struct {
	OnTimeDelivery    float64 `json:"on_time_delivery"`
	FirstPassYield    float64 `json:"first_pass_yield"`
	ActiveProjects    int     `json:"active_projects"`
	CompletedProjects int     `json:"completed_projects"`
	MeanUtilization   float64 `json:"mean_utilization"`
	OnTimeTarget      float64 `json:"on_time_target"`
	FirstPassTarget   float64 `json:"first_pass_target"`
	UtilizationTarget float64 `json:"utilization_target"`
	InventoryValue    float64 `json:"inventory_value"`
	LatestMonth       string  `json:"latest_month,omitempty"`
	Source            string  `json:"source"`
}

// Summarize computes the card values.  The KPI cards use the most recent
// month; an empty KPI series yields zeros.
func Summarize(ds *Dataset) Summary {
	s := Summary{
		OnTimeTarget:      TargetOnTimeDelivery,
		FirstPassTarget:   TargetFirstPassYield,
		UtilizationTarget: TargetUtilization,
		Source:            ds.Source,
	}
	if n := len(ds.KPIs); n > 0 {
		latest := ds.KPIs[n-1]
		s.OnTimeDelivery = latest.OnTimeDelivery
		s.FirstPassYield = latest.FirstPassYield
		s.LatestMonth = latest.Month()
	}
	for _, p := range ds.Projects {
		if p.Completed() {
			s.CompletedProjects++
		} else {
			s.ActiveProjects++
		}
	}
	utilization := make([]float64, 0, len(ds.Resources))
	for _, r := range ds.Resources {
		utilization = append(utilization, r.Utilization)
	}
	s.MeanUtilization = Mean(utilization)
	for _, item := range ds.Inventory {
		s.InventoryValue += item.Value()
	}
	return s
}

// Count is one group in a group-by count.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CountBy groups keys, ordered by first appearance.
func CountBy(keys []string) []Count {
	var (
		idx    = map[string]int{}
		counts = []Count{}
	)
	for _, k := range keys {
		i, ok := idx[k]
		if !ok {
			i = len(counts)
			idx[k] = i
			counts = append(counts, Count{Key: k})
		}
		counts[i].Count++
	}
	return counts
}

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// BoxStats is a five-number summary.
type BoxStats struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Box computes the five-number summary using linear interpolation between
// order statistics.
func Box(xs []float64) BoxStats {
	if len(xs) == 0 {
		return BoxStats{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return BoxStats{
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

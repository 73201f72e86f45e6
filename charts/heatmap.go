package charts

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"funnelscope/api/models"
)

// DefaultDisplayPeriods is the number of weekly periods shown per cohort.
const DefaultDisplayPeriods = 13

// Heatmap is a cohort-by-period matrix of retention fractions. Rates[i][p]
// is nil where no cell was observed.
type Heatmap struct {
	Cohorts []time.Time  `json:"cohorts"`
	Periods []int        `json:"periods"`
	Rates   [][]*float64 `json:"rates"`
}

// CohortHeatmap pivots cells into a matrix and keeps periods below
// maxPeriods. A non-positive maxPeriods uses DefaultDisplayPeriods.
func CohortHeatmap(cells []models.CohortCell, maxPeriods int) Heatmap {
	if maxPeriods <= 0 {
		maxPeriods = DefaultDisplayPeriods
	}

	rowOf := make(map[time.Time]int)
	var cohorts []time.Time
	width := 0
	for _, c := range cells {
		if c.PeriodNumber >= maxPeriods {
			continue
		}
		if _, ok := rowOf[c.CohortWeek]; !ok {
			rowOf[c.CohortWeek] = -1
			cohorts = append(cohorts, c.CohortWeek)
		}
		if c.PeriodNumber+1 > width {
			width = c.PeriodNumber + 1
		}
	}
	sort.Slice(cohorts, func(i, j int) bool { return cohorts[i].Before(cohorts[j]) })
	for i, w := range cohorts {
		rowOf[w] = i
	}

	h := Heatmap{
		Cohorts: cohorts,
		Periods: make([]int, width),
		Rates:   make([][]*float64, len(cohorts)),
	}
	for p := range h.Periods {
		h.Periods[p] = p
	}
	for i := range h.Rates {
		h.Rates[i] = make([]*float64, width)
	}
	for _, c := range cells {
		if c.PeriodNumber >= maxPeriods {
			continue
		}
		rate := c.RetentionRate
		h.Rates[rowOf[c.CohortWeek]][c.PeriodNumber] = &rate
	}
	return h
}

// CohortTableURL renders the heatmap as a QuickChart table with retention
// shown as percentages.
func CohortTableURL(h Heatmap) (string, error) {
	cols := []Column{{Width: 110, Title: "Cohort Week", DataIndex: "cohort"}}
	for _, p := range h.Periods {
		cols = append(cols, Column{Width: 60, Title: fmt.Sprintf("W%d", p), DataIndex: "p" + strconv.Itoa(p)})
	}

	rows := make([]interface{}, 0, len(h.Cohorts))
	for i, week := range h.Cohorts {
		row := map[string]interface{}{"cohort": week.Format("2006-01-02")}
		for p, rate := range h.Rates[i] {
			if rate == nil {
				row["p"+strconv.Itoa(p)] = ""
				continue
			}
			row["p"+strconv.Itoa(p)] = fmt.Sprintf("%.1f%%", *rate*100)
		}
		rows = append(rows, row)
	}

	return tableURL(TableConfig{
		Title:      "Weekly Cohort Retention",
		Columns:    cols,
		DataSource: rows,
	})
}

package output

import (
	"fmt"
	"html"
	"strings"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
)

// ScheduleChart draws a plan as a month grid: one row per product with its
// production, then one row per resource with the machines under maintenance
type ScheduleChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int

	plan        *entities.Plan
	maintenance *entities.Grid[int]
}

// ChartBar is one filled cell of the chart
type ChartBar struct {
	Label    string
	Month    int
	Quantity int
	X        int
	Width    int
	Color    string
	Kind     string
}

const (
	productionColor  = "#4CAF50"
	maintenanceColor = "#FF9800"
)

// NewScheduleChart sizes a chart for plan. machineCount may be nil, in which
// case maintenance rows are omitted.
func NewScheduleChart(plan *entities.Plan, machineCount []int) *ScheduleChart {
	gc := &ScheduleChart{
		Width:        800,
		Height:       200,
		MarginLeft:   150,
		MarginTop:    60,
		MarginRight:  50,
		MarginBottom: 60,
		RowHeight:    30,
		plan:         plan,
	}
	if plan == nil || !plan.HasValues() {
		return gc
	}

	if plan.MachinesAvailable != nil && len(machineCount) == plan.MachinesAvailable.Rows() {
		gc.maintenance = plan.MaintenanceSchedule(machineCount)
	}

	rows := plan.Production.Rows()
	if gc.maintenance != nil {
		rows += gc.maintenance.Rows()
	}
	gc.Width = gc.MarginLeft + gc.MarginRight + plan.NumMonths*100
	gc.Height = gc.MarginTop + gc.MarginBottom + rows*gc.RowHeight
	return gc
}

// GenerateSVG creates an SVG representation of the chart
func (gc *ScheduleChart) GenerateSVG() string {
	if gc.plan == nil || !gc.plan.HasValues() {
		return gc.generateEmptyChart()
	}

	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, gc.Width, gc.Height))
	svg.WriteString(`<defs>`)
	svg.WriteString(`<style>`)
	svg.WriteString(`.row-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.time-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.bar { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.bar-text { font-family: Arial, sans-serif; font-size: 9px; fill: white; }`)
	svg.WriteString(`</style>`)
	svg.WriteString(`</defs>`)

	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, gc.Width, gc.Height))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="30" class="title" text-anchor="middle">Production Plan - %s</text>`,
		gc.Width/2, html.EscapeString(gc.plan.Status.String())))

	labels, rows := gc.rows()
	gc.drawMonthAxis(&svg, len(rows))
	for i, bars := range rows {
		gc.drawRow(&svg, i, labels[i], bars)
	}
	gc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (gc *ScheduleChart) monthWidth() int {
	return (gc.Width - gc.MarginLeft - gc.MarginRight) / gc.plan.NumMonths
}

// rows converts the plan tables into labelled bar rows
func (gc *ScheduleChart) rows() ([]string, [][]ChartBar) {
	var labels []string
	var rows [][]ChartBar

	add := func(names []string, grid *entities.Grid[int], color, kind string) {
		for i := 0; i < grid.Rows(); i++ {
			var bars []ChartBar
			for j, v := range grid.Row(i) {
				if v <= 0 {
					continue
				}
				bars = append(bars, ChartBar{
					Label:    names[i],
					Month:    j,
					Quantity: v,
					X:        gc.MarginLeft + j*gc.monthWidth() + 2,
					Width:    gc.monthWidth() - 4,
					Color:    color,
					Kind:     kind,
				})
			}
			labels = append(labels, names[i])
			rows = append(rows, bars)
		}
	}

	add(gc.plan.ProductNames, gc.plan.Production, productionColor, "Production")
	if gc.maintenance != nil {
		add(gc.plan.ResourceNames, gc.maintenance, maintenanceColor, "Maintenance")
	}
	return labels, rows
}

func (gc *ScheduleChart) drawMonthAxis(svg *strings.Builder, numRows int) {
	gridTop := gc.MarginTop
	gridBottom := gc.MarginTop + numRows*gc.RowHeight
	for j := 0; j <= gc.plan.NumMonths; j++ {
		x := gc.MarginLeft + j*gc.monthWidth()
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			x, gridTop, x, gridBottom))
		if j < gc.plan.NumMonths {
			svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="time-label" text-anchor="middle">%s</text>`,
				x+gc.monthWidth()/2, gridBottom+20, entities.MonthName(j)))
		}
	}
}

func (gc *ScheduleChart) drawRow(svg *strings.Builder, index int, label string, bars []ChartBar) {
	y := gc.MarginTop + index*gc.RowHeight

	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="row-label" text-anchor="end">%s</text>`,
		gc.MarginLeft-15, y+gc.RowHeight/2+4, html.EscapeString(label)))
	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, y+gc.RowHeight, gc.Width-gc.MarginRight, y+gc.RowHeight))

	for _, bar := range bars {
		gc.drawBar(svg, bar, y)
	}
}

func (gc *ScheduleChart) drawBar(svg *strings.Builder, bar ChartBar, rowY int) {
	barHeight := gc.RowHeight - 4
	barY := rowY + 2

	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="bar">`,
		bar.X, barY, bar.Width, barHeight, bar.Color))
	svg.WriteString(fmt.Sprintf(`<title>%s %s, %s: %d</title></rect>`,
		bar.Kind, html.EscapeString(bar.Label), entities.MonthName(bar.Month), bar.Quantity))

	if bar.Width > 30 {
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="bar-text" text-anchor="middle">%d</text>`,
			bar.X+bar.Width/2, barY+barHeight/2+3, bar.Quantity))
	}
}

// drawLegend explains the bar colors
func (gc *ScheduleChart) drawLegend(svg *strings.Builder) {
	legendX := gc.Width - gc.MarginRight - 140
	legendY := 10

	items := []struct {
		color string
		label string
	}{
		{productionColor, "Units produced"},
	}
	if gc.maintenance != nil {
		items = append(items, struct {
			color string
			label string
		}{maintenanceColor, "Machines in maintenance"})
	}

	for i, item := range items {
		itemY := legendY + i*14
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`,
			legendX, itemY, item.color))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="time-label">%s</text>`,
			legendX+20, itemY+8, item.label))
	}
}

// generateEmptyChart is drawn when the plan has no values
func (gc *ScheduleChart) generateEmptyChart() string {
	message := "No Production Plan"
	if gc.plan != nil {
		message = fmt.Sprintf("No Production Plan (%s)", gc.plan.Status)
	}
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">%s</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, gc.Width, gc.Height, gc.Width, gc.Height, gc.Width/2, gc.Height/2, html.EscapeString(message))
}

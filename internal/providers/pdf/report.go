package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReportData is a rendered business report. Values arrive already formatted.
type ReportData struct {
	BusinessName string
	Title        string
	Period       string
	GeneratedAt  string

	Summary  []ReportLine
	Services []ReportLine
	Top      []ReportLine
	Daily    []ReportDay
}

type ReportLine struct {
	Label string
	Value string
}

type ReportDay struct {
	Date    string
	Revenue string
	Profit  string
}

func (p *PDFProvider) GenerateReport(ctx context.Context, report ReportData) ([]byte, error) {
	m := newDocument()

	m.AddRow(12,
		text.NewCol(12, report.Title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(14,
		col.New(8).Add(
			text.New(report.BusinessName, props.Text{Style: fontstyle.Bold}),
			text.New("Period: "+report.Period, props.Text{Top: 5}),
		),
		text.NewCol(4, "Generated "+report.GeneratedAt, props.Text{Size: 8, Align: align.Right}),
	)

	section(m, "Summary")
	for _, line := range report.Summary {
		labelValue(m, line)
	}

	if len(report.Services) > 0 {
		section(m, "Revenue by service")
		for _, line := range report.Services {
			labelValue(m, line)
		}
	}

	if len(report.Top) > 0 {
		section(m, "Top customers")
		for _, line := range report.Top {
			labelValue(m, line)
		}
	}

	if len(report.Daily) > 0 {
		section(m, "Daily trend")
		m.AddRow(7,
			text.NewCol(4, "Date", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(4, "Revenue", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
			text.NewCol(4, "Profit", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		)
		for _, day := range report.Daily {
			m.AddRow(6,
				text.NewCol(4, day.Date, props.Text{Size: 9}),
				text.NewCol(4, day.Revenue, props.Text{Size: 9, Align: align.Right}),
				text.NewCol(4, day.Profit, props.Text{Size: 9, Align: align.Right}),
			)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func section(m core.Maroto, title string) {
	m.AddRow(12,
		text.NewCol(12, title, props.Text{Size: 12, Style: fontstyle.Bold, Top: 5}),
	)
}

func labelValue(m core.Maroto, line ReportLine) {
	m.AddRow(7,
		text.NewCol(8, line.Label, props.Text{Size: 9}),
		text.NewCol(4, line.Value, props.Text{Size: 9, Align: align.Right}),
	)
}

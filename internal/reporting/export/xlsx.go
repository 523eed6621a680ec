package export

import (
	"strconv"

	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/internal/reporting/domain"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Summary"
	SheetDaily    = "Daily"
	SheetServices = "Services"
	SheetSales    = "Sales"
)

// XLSX builds a workbook with one sheet per report section.
func XLSX(metrics domain.Metrics, sales []saledomain.Sale, directory customerdomain.Directory) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetDaily, SheetServices, SheetSales} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	summary := append([][]string{{"Metric", "Value"}}, SummaryRows(metrics)...)
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}

	daily := [][]string{{"Date", "Revenue", "Profit"}}
	for _, point := range metrics.Daily {
		daily = append(daily, []string{
			point.Date.Format(dateLayout),
			point.Amount.StringFixed(2),
			point.Profit.StringFixed(2),
		})
	}
	if err := writeRows(f, SheetDaily, daily); err != nil {
		return nil, err
	}

	services := [][]string{{"Business type", "Orders", "Amount", "Share %"}}
	for _, share := range metrics.ServiceDistribution {
		services = append(services, []string{
			share.BusinessType,
			strconv.Itoa(share.Orders),
			share.Amount.StringFixed(2),
			share.Share.StringFixed(2),
		})
	}
	if err := writeRows(f, SheetServices, services); err != nil {
		return nil, err
	}

	if err := writeRows(f, SheetSales, append([][]string{saleHeader}, saleRows(sales, directory)...)); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/xuri/excelize/v2"
)

var ErrNoPayroll = errors.New("failed to generate report, 0 payroll entries were provided")

const (
	summarySheet  = "Summary"
	maxSheetName  = 31
	dateLayout    = "02.01.2006"
	moneyDecimals = 2
)

// Generator holds the state for the Excel report generation process.
type Generator struct {
	file        *excelize.File
	headerStyle int
	usedNames   map[string]bool
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		file:      excelize.NewFile(),
		usedNames: make(map[string]bool),
	}
}

// GeneratePayrollReport builds a workbook with a summary sheet followed by one sheet per employee
// listing that employee's payroll entries.
func GeneratePayrollReport(entries []models.Payroll) (*bytes.Buffer, error) {
	var err error

	if len(entries) == 0 {
		return nil, ErrNoPayroll
	}

	gen := NewGenerator()
	defer gen.file.Close()

	if gen.headerStyle, err = gen.newHeaderStyle(); err != nil {
		return nil, err
	}

	byEmployee := groupByEmployee(entries)

	if err = gen.addSummarySheet(byEmployee); err != nil {
		return nil, fmt.Errorf("failed to add summary sheet: %w", err)
	}
	for _, group := range byEmployee {
		if err = gen.addEmployeeSheet(group); err != nil {
			return nil, fmt.Errorf("failed to add sheet for %q: %w", group.name, err)
		}
	}

	gen.file.SetActiveSheet(0)

	if sheetIndex, _ := gen.file.GetSheetIndex("Sheet1"); sheetIndex != -1 {
		if err = gen.file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet 'Sheet1': %w", err)
		}
	}

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write data from saved file: %w", err)
	}

	return buffer, nil
}

type employeeGroup struct {
	id      int64
	name    string
	entries []models.Payroll
}

// groupByEmployee keeps employees in order of first appearance.
func groupByEmployee(entries []models.Payroll) []*employeeGroup {
	index := make(map[int64]*employeeGroup)
	var groups []*employeeGroup

	for _, entry := range entries {
		group, ok := index[entry.EmployeeID]
		if !ok {
			group = &employeeGroup{id: entry.EmployeeID, name: entry.EmployeeName}
			index[entry.EmployeeID] = group
			groups = append(groups, group)
		}
		group.entries = append(group.entries, entry)
	}

	for _, group := range groups {
		sort.SliceStable(group.entries, func(i, j int) bool {
			return group.entries[i].OrderDate.Before(group.entries[j].OrderDate)
		})
	}

	return groups
}

func (g *Generator) newHeaderStyle() (int, error) {
	style, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create new style: %w", err)
	}
	return style, nil
}

func (g *Generator) addSummarySheet(groups []*employeeGroup) error {
	if _, err := g.file.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to generate new sheet '%s': %w", summarySheet, err)
	}

	g.usedNames[strings.ToLower(summarySheet)] = true

	headers := []string{"Employee", "Entries", "Total", "Pending", "Paid"}
	widths := []float64{30, 10, 14, 14, 14} //nolint:mnd // const values for column width
	if err := g.setupSheet(summarySheet, headers, widths, len(groups)); err != nil {
		return err
	}

	for i, group := range groups {
		var total, pending float64
		for _, entry := range group.entries {
			amount := entry.CalculatedAmount.Round(moneyDecimals).InexactFloat64()
			total += amount
			if entry.Status == models.PayrollPending {
				pending += amount
			}
		}

		row := []any{group.name, len(group.entries), total, pending, total - pending}
		if err := g.setRow(summarySheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

func (g *Generator) addEmployeeSheet(group *employeeGroup) error {
	sheetName := g.uniqueSheetName(group.name)

	if _, err := g.file.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to generate new sheet '%s': %w", sheetName, err)
	}

	headers := []string{"Payroll ID", "Order ID", "Order Date", "Order Value", "Percent", "Amount", "Status", "Paid At"}
	widths := []float64{12, 10, 14, 14, 10, 14, 10, 14} //nolint:mnd // const values for column width
	if err := g.setupSheet(sheetName, headers, widths, len(group.entries)); err != nil {
		return err
	}

	for i, entry := range group.entries {
		percent := ""
		if entry.PaymentPercent.Valid {
			percent = entry.PaymentPercent.Decimal.String() + "%"
		}
		paidAt := ""
		if entry.PaidAt != nil {
			paidAt = entry.PaidAt.Format(dateLayout)
		}

		row := []any{
			entry.ID,
			entry.OrderID,
			entry.OrderDate.Format(dateLayout),
			entry.OrderValue.Round(moneyDecimals).InexactFloat64(),
			percent,
			entry.CalculatedAmount.Round(moneyDecimals).InexactFloat64(),
			string(entry.Status),
			paidAt,
		}
		if err := g.setRow(sheetName, i+2, row); err != nil { // i+2, because the first row is the header
			return err
		}
	}

	return nil
}

// setupSheet writes the header row, sets column widths and wraps the data range into a table.
func (g *Generator) setupSheet(sheetName string, headers []string, widths []float64, rowCount int) error {
	var err error

	rowHeight := 20
	if err = g.file.SetRowHeight(sheetName, 1, float64(rowHeight)); err != nil {
		return fmt.Errorf("failed to set row height for headers: %w", err)
	}
	if err = g.file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to set sheet row for headers: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("failed to resolve last column: %w", err)
	}
	if err = g.file.SetCellStyle(sheetName, "A1", lastCol+"1", g.headerStyle); err != nil {
		return fmt.Errorf("failed to set cell style for headers: %w", err)
	}

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err = g.file.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err = g.file.AddTable(sheetName, &excelize.Table{
		Range:     fmt.Sprintf("A1:%s%d", lastCol, rowCount+1),
		Name:      fmt.Sprintf("table_%d", len(g.usedNames)),
		StyleName: "TableStyleMedium9",
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}

	return nil
}

func (g *Generator) setRow(sheetName string, rowNum int, row []any) error {
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)

	if err := g.file.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("failed to set sheet row: %w", err)
	}

	return nil
}

// uniqueSheetName makes a valid sheet name out of an employee name. Two employees may share a name,
// so later ones get a numeric suffix.
func (g *Generator) uniqueSheetName(name string) string {
	base := sanitizeSheetName(name)
	if base == "" {
		base = "Employee"
	}

	candidate := truncateSheetName(base, maxSheetName)
	for n := 2; g.usedNames[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateSheetName(base, maxSheetName-len(suffix)) + suffix
	}

	g.usedNames[strings.ToLower(candidate)] = true
	return candidate
}

// sanitizeSheetName drops the characters Excel does not allow in sheet names.
func sanitizeSheetName(name string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, name))
}

// truncateSheetName truncates the given sheet name to at most limit runes.
func truncateSheetName(name string, limit int) string {
	if utf8.RuneCountInString(name) > limit {
		runes := []rune(name)
		return string(runes[:limit])
	}
	return name
}

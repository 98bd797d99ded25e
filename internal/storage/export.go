package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"leadbot/internal/leads"
)

const leadsSheet = "Leads"

var exportHeaders = []string{
	"Lead ID", "Name", "Email", "Phone Number", "Budget",
	"Vehicle Wanted", "Discord User ID", "Discord Username", "Created At",
}

// ExportLeadsToExcel writes one row per lead below a header row.
func ExportLeadsToExcel(list []leads.Lead, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leadsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(leadsSheet, cell, header)
	}

	for row, lead := range list {
		data := []interface{}{
			lead.ID,
			lead.Name,
			lead.Email,
			lead.PhoneNumber,
			lead.Budget,
			lead.VehicleWanted,
			lead.DiscordUserID,
			lead.DiscordUsername,
			lead.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(leadsSheet, cell, value)
		}
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(leadsSheet, "A1", "I1", style)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create reports directory: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

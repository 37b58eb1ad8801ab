package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"carbon-tracker/internal/models"
	"carbon-tracker/internal/store"
	"carbon-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"Date", "Type", "Category", "Amount", "Unit", "Footprint (kg CO2)", "Description"}

// ExportHandler streams an owner's activities as CSV or XLSX.
type ExportHandler struct {
	Store *store.ActivityStore
}

// NewExportHandler wires the handler to s.
func NewExportHandler(s *store.ActivityStore) *ExportHandler {
	return &ExportHandler{Store: s}
}

func exportRow(a *models.Activity) []string {
	return []string{
		a.Date.UTC().Format("2006-01-02"),
		a.Type,
		a.Category,
		strconv.FormatFloat(a.Amount, 'f', -1, 64),
		a.Unit,
		strconv.FormatFloat(a.CarbonFootprint, 'f', 4, 64),
		a.Description,
	}
}

func (h *ExportHandler) load(c *gin.Context) ([]models.Activity, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	activities, err := h.Store.List(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err, "failed to load activities")
		return nil, false
	}
	return activities, true
}

// ExportCSV writes activities newest first as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	activities, ok := h.load(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"activities_%s.csv\"",
		time.Now().Format("20060102")))
	c.Status(http.StatusOK)

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	for i := range activities {
		_ = writer.Write(exportRow(&activities[i]))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Error().Err(err).Msg("write csv export")
	}
}

// ExportXLSX writes activities newest first as a single-sheet workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	activities, ok := h.load(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheetName := "Activities"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	for idx := range activities {
		a := &activities[idx]
		row := idx + 2
		values := []interface{}{
			a.Date.UTC().Format("2006-01-02"),
			a.Type,
			a.Category,
			a.Amount,
			a.Unit,
			a.CarbonFootprint,
			a.Description,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "C", 16)
	_ = f.SetColWidth(sheetName, "D", "E", 10)
	_ = f.SetColWidth(sheetName, "F", "F", 18)
	_ = f.SetColWidth(sheetName, "G", "G", 40)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"activities_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("write xlsx export")
	}
}

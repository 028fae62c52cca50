package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
	"stock-ledger-service/internal/services"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Success      bool             `json:"success"`
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	FailedCount  int              `json:"failedCount"`
	SkippedCount int              `json:"skippedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
	CreatedIDs   []string         `json:"createdIds,omitempty"`
}

type ImportHandler struct {
	repo    repository.LedgerRepositoryInterface
	catalog *services.ItemCatalogService
}

func NewImportHandler(repo repository.LedgerRepositoryInterface, catalog *services.ItemCatalogService) *ImportHandler {
	return &ImportHandler{repo: repo, catalog: catalog}
}

// ItemImportTemplate returns the template for inventory items
func ItemImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "items",
		Version: "1.0",
		Columns: []ImportTemplateColumn{
			{Name: "code", Description: "Unique item code", Required: true, Type: "string", Example: "ITM-001"},
			{Name: "name", Description: "Item name", Required: true, Type: "string", Example: "Copper Pipe 15mm"},
			{Name: "description", Description: "Item description", Required: false, Type: "string", Example: "15mm copper pipe, 3m length"},
			{Name: "unit", Description: "Unit of measure", Required: false, Type: "string", Example: "EA"},
			{Name: "unitCost", Description: "Cost per unit", Required: false, Type: "number", Example: "12.5000"},
			{Name: "reorderLevel", Description: "Quantity at which a low stock alert fires", Required: false, Type: "number", Example: "10"},
			{Name: "reorderQuantity", Description: "Suggested reorder quantity", Required: false, Type: "number", Example: "50"},
		},
		SampleData: []map[string]string{
			{
				"code":            "ITM-PIPE-15",
				"name":            "Copper Pipe 15mm",
				"description":     "15mm copper pipe, 3m length",
				"unit":            "EA",
				"unitCost":        "12.5000",
				"reorderLevel":    "10",
				"reorderQuantity": "50",
			},
			{
				"code":            "ITM-CABLE-25",
				"name":            "Twin Core Cable 2.5mm",
				"description":     "2.5mm twin and earth cable, 100m drum",
				"unit":            "DRUM",
				"unitCost":        "89.9900",
				"reorderLevel":    "5",
				"reorderQuantity": "20",
			},
		},
	}
}

// GetItemImportTemplate returns the item import template
// GET /api/v1/items/import/template?format=json|csv|xlsx
func (h *ImportHandler) GetItemImportTemplate(c *gin.Context) {
	template := ItemImportTemplate()

	switch c.DefaultQuery("format", "json") {
	case "csv":
		h.generateCSVTemplate(c, template, "items")
	case "xlsx":
		h.generateXLSXTemplate(c, template, "Items")
	default:
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: template})
	}
}

func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template ImportTemplate, entity string) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
		if col.Required {
			headers[i] += " *"
		}
	}
	_ = writer.Write(headers)

	for _, sample := range template.SampleData {
		row := make([]string, len(template.Columns))
		for i, col := range template.Columns {
			row[i] = sample[col.Name]
		}
		_ = writer.Write(row)
	}
	writer.Flush()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.csv", entity))
	c.Data(http.StatusOK, "text/csv", []byte(sb.String()))
}

func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template ImportTemplate, sheetName string) {
	f := excelize.NewFile()
	defer f.Close()

	_ = f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		name := col.Name
		if col.Required {
			name += " *"
			_ = f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}
		_ = f.SetCellValue(sheetName, cell, name)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, colName, colName, 20)
	}

	for rowIdx, sample := range template.SampleData {
		for colIdx, col := range template.Columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheetName, cell, sample[col.Name])
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.xlsx", strings.ToLower(sheetName)))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	_ = f.Write(c.Writer)
}

// ImportItems imports inventory items from a CSV or Excel file
// POST /api/v1/items/import
func (h *ImportHandler) ImportItems(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FILE_REQUIRED", Message: "Please upload a CSV or Excel file"},
		})
		return
	}
	defer file.Close()

	skipDuplicates := c.DefaultPostForm("skipDuplicates", "false") == "true"
	validateOnly := c.DefaultPostForm("validateOnly", "false") == "true"

	rows, parseErr := h.parseFile(file, header.Filename)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "PARSE_ERROR", Message: parseErr.Error()},
		})
		return
	}

	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "EMPTY_FILE", Message: "The file contains no data rows"},
		})
		return
	}

	result := h.processItemRows(c, rows, skipDuplicates, validateOnly)
	c.JSON(http.StatusOK, result)
}

func (h *ImportHandler) parseFile(file io.Reader, filename string) ([]map[string]string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return h.parseCSV(file)
	} else if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return h.parseXLSX(file)
	}
	return nil, fmt.Errorf("only CSV and XLSX files are supported")
}

func (h *ImportHandler) parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	for i := range headers {
		headers[i] = normalizeHeader(headers[i])
	}

	var rows []map[string]string
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(lineNum + 1)
		rows = append(rows, row)
		lineNum++
	}

	return rows, nil
}

func (h *ImportHandler) parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = normalizeHeader(headers[i])
	}

	var rows []map[string]string
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(rowIdx + 2)
		rows = append(rows, row)
	}

	return rows, nil
}

func normalizeHeader(header string) string {
	header = strings.TrimSpace(strings.ToLower(header))
	return strings.TrimSuffix(header, " *")
}

func parseDecimalField(row map[string]string, field string) (decimal.Decimal, *ImportRowError) {
	raw := row[field]
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		rowNum, _ := strconv.Atoi(row["_row"])
		return decimal.Zero, &ImportRowError{
			Row:     rowNum,
			Column:  field,
			Code:    "INVALID_NUMBER",
			Message: fmt.Sprintf("%q is not a valid number", raw),
		}
	}
	return value, nil
}

func (h *ImportHandler) processItemRows(c *gin.Context, rows []map[string]string, skipDuplicates, validateOnly bool) *ImportResult {
	ctx := c.Request.Context()
	actor := currentActor(c)

	result := &ImportResult{
		TotalRows:  len(rows),
		Errors:     make([]ImportRowError, 0),
		CreatedIDs: make([]string, 0),
	}

	for _, row := range rows {
		rowNum, _ := strconv.Atoi(row["_row"])

		code := row["code"]
		name := row["name"]
		if code == "" || name == "" {
			result.FailedCount++
			result.Errors = append(result.Errors, ImportRowError{
				Row:     rowNum,
				Code:    "MISSING_REQUIRED",
				Message: "code and name are required",
			})
			continue
		}

		if _, err := h.repo.GetItemByCode(ctx, code); err == nil {
			if skipDuplicates {
				result.SkippedCount++
				continue
			}
			result.FailedCount++
			result.Errors = append(result.Errors, ImportRowError{
				Row:     rowNum,
				Column:  "code",
				Code:    "DUPLICATE_CODE",
				Message: fmt.Sprintf("an item with code %q already exists", code),
			})
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			result.FailedCount++
			result.Errors = append(result.Errors, ImportRowError{
				Row:     rowNum,
				Code:    "LOOKUP_FAILED",
				Message: "failed to check for existing item",
			})
			continue
		}

		unitCost, rowErr := parseDecimalField(row, "unitcost")
		if rowErr != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		reorderLevel, rowErr := parseDecimalField(row, "reorderlevel")
		if rowErr != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		reorderQuantity, rowErr := parseDecimalField(row, "reorderquantity")
		if rowErr != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, *rowErr)
			continue
		}

		if validateOnly {
			result.SuccessCount++
			continue
		}

		req := models.CreateItemRequest{
			Code:            code,
			Name:            name,
			Unit:            row["unit"],
			UnitCost:        unitCost,
			ReorderLevel:    reorderLevel,
			ReorderQuantity: reorderQuantity,
		}
		if description := row["description"]; description != "" {
			req.Description = &description
		}

		item, err := h.catalog.CreateItem(ctx, req, actor)
		if err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, ImportRowError{
				Row:     rowNum,
				Code:    "CREATE_FAILED",
				Message: err.Error(),
			})
			continue
		}

		result.SuccessCount++
		result.CreatedIDs = append(result.CreatedIDs, item.ID.String())
	}

	result.Success = result.FailedCount == 0
	return result
}

package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Catalog is the part of the catalog service the importer writes to
type Catalog interface {
	DomainByName(ctx context.Context, name string) (*models.Domain, error)
	LevelByName(ctx context.Context, name string) (*models.MasteryLevel, error)
	AddDomain(ctx context.Context, name, description string) (*models.Domain, error)
	ModulesIn(ctx context.Context, domainID, levelID int64) ([]models.Module, error)
	AddModule(ctx context.Context, module *models.Module) error
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	DomainColumn      string // Column with the domain name
	LevelColumn       string // Column with the mastery level name
	TitleColumn       string // Column with the module title
	DescriptionColumn string // Column with the description
	OrderColumn       string // Column with the order index
	SheetName         string // Sheet to import, the first one when empty
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		DomainColumn:      "A",
		LevelColumn:       "B",
		TitleColumn:       "C",
		DescriptionColumn: "D",
		OrderColumn:       "E",
		StartRow:          2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	DomainsCreated int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportModulesFile imports modules from an .xlsx or .csv file
func ImportModulesFile(ctx context.Context, catalog Catalog, path string, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return ImportCSV(ctx, catalog, file, config)
	}
	return ImportXLSX(ctx, catalog, file, config)
}

// ImportXLSX imports modules from a workbook
func ImportXLSX(ctx context.Context, catalog Catalog, r io.Reader, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return importRows(ctx, catalog, rows, config)
}

// ImportCSV imports modules from comma separated values
func ImportCSV(ctx context.Context, catalog Catalog, r io.Reader, config ImportConfig) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return importRows(ctx, catalog, rows, config)
}

func importRows(ctx context.Context, catalog Catalog, rows [][]string, config ImportConfig) (*ImportResult, error) {
	result := &ImportResult{Errors: make([]string, 0)}

	for i, row := range rows {
		if i < config.StartRow-1 || isBlank(row) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.TotalProcessed++
		if err := processRow(ctx, catalog, row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// processRow creates the module of one row, and its domain when missing
func processRow(ctx context.Context, catalog Catalog, row []string, config ImportConfig, result *ImportResult) error {
	domainName := cell(row, config.DomainColumn)
	levelName := cell(row, config.LevelColumn)
	title := cell(row, config.TitleColumn)
	description := cell(row, config.DescriptionColumn)
	order := cell(row, config.OrderColumn)

	if domainName == "" {
		return fmt.Errorf("domain cannot be empty")
	}
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}

	level, err := catalog.LevelByName(ctx, levelName)
	if err != nil {
		return fmt.Errorf("unknown mastery level %q", levelName)
	}

	domain, err := catalog.DomainByName(ctx, domainName)
	if errors.Is(err, database.ErrNotFound) {
		domain, err = catalog.AddDomain(ctx, domainName, "")
		if err == nil {
			result.DomainsCreated++
		}
	}
	if err != nil {
		return fmt.Errorf("failed to process domain: %w", err)
	}

	existing, err := catalog.ModulesIn(ctx, domain.ID, level.ID)
	if err != nil {
		return err
	}
	for _, m := range existing {
		if strings.EqualFold(m.Title, title) {
			result.Skipped++
			return nil
		}
	}

	module := &models.Module{
		DomainID:       domain.ID,
		MasteryLevelID: level.ID,
		Title:          title,
		OrderIndex:     parseIntOrDefault(order, len(existing)+1),
	}
	if description != "" {
		module.Description = &description
	}
	if err := catalog.AddModule(ctx, module); err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	result.Created++
	return nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// columnToIndex converts an Excel column letter to a 0-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

func parseIntOrDefault(s string, defaultVal int) int {
	if val, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && val >= 0 {
		return val
	}
	return defaultVal
}

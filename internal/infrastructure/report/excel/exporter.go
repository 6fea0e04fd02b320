package excel

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

// Exporter renders the triage workbook: one sheet with every feature and a
// roll-up sheet with per-theme counts.
type Exporter struct{}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ExportFeatures(ctx context.Context, features []domain.Feature, themes []domain.Theme) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const featuresSheet = "Features"
	if err := f.SetSheetName("Sheet1", featuresSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	themeNames := make(map[string]string, len(themes))
	for _, theme := range themes {
		themeNames[theme.ID] = theme.Name
	}

	header := []any{"Name", "Description", "Urgency", "Status", "Mentions", "Theme", "Last Mentioned"}
	if err := f.SetSheetRow(featuresSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, feature := range features {
		themeName := ""
		if feature.ThemeID != nil {
			themeName = themeNames[*feature.ThemeID]
		}
		lastMentioned := ""
		if feature.LastMentioned != nil {
			lastMentioned = feature.LastMentioned.Format("2006-01-02")
		}
		row := []any{
			feature.Name, feature.Description, string(feature.Urgency), string(feature.Status),
			feature.MentionCount, themeName, lastMentioned,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("feature row cell: %w", err)
		}
		if err := f.SetSheetRow(featuresSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write feature row: %w", err)
		}
	}

	if err := e.writeThemeSheet(f, features, themes); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) writeThemeSheet(f *excelize.File, features []domain.Feature, themes []domain.Theme) error {
	const themesSheet = "Themes"
	if _, err := f.NewSheet(themesSheet); err != nil {
		return fmt.Errorf("create themes sheet: %w", err)
	}

	counts := make(map[string]int, len(themes))
	for _, feature := range features {
		if feature.ThemeID != nil {
			counts[*feature.ThemeID]++
		}
	}

	header := []any{"Theme", "Parent", "Features"}
	if err := f.SetSheetRow(themesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write themes header: %w", err)
	}

	parentNames := make(map[string]string, len(themes))
	for _, theme := range themes {
		parentNames[theme.ID] = theme.Name
	}
	for i, theme := range themes {
		parent := ""
		if theme.ParentThemeID != nil {
			parent = parentNames[*theme.ParentThemeID]
		}
		row := []any{theme.Name, parent, counts[theme.ID]}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("theme row cell: %w", err)
		}
		if err := f.SetSheetRow(themesSheet, cell, &row); err != nil {
			return fmt.Errorf("write theme row: %w", err)
		}
	}
	return nil
}

// Filename returns a safe attachment name for the workbook.
func Filename(workspaceID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, workspaceID)
	return "features-" + safe + ".xlsx"
}

package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/slidecraft/slidecraft-backend/internal/database/repository"
)

// Service builds XLSX reports over a user's presentations
type Service struct {
	presentationRepo *repository.PresentationRepository
	slideRepo        *repository.SlideRepository
	exportsDir       string
}

// NewReportService creates a new report service instance
func NewReportService(
	presentationRepo *repository.PresentationRepository,
	slideRepo *repository.SlideRepository,
	exportsDir string) *Service {
	// Create exports directory if it doesn't exist
	if _, err := os.Stat(exportsDir); os.IsNotExist(err) {
		os.MkdirAll(exportsDir, 0755)
	}

	return &Service{
		presentationRepo: presentationRepo,
		slideRepo:        slideRepo,
		exportsDir:       exportsDir,
	}
}

// ReportResult contains the result of a report build
type ReportResult struct {
	Success  bool
	Message  string
	Filename string
}

var reportColumns = []string{
	"ID",
	"Title",
	"Language",
	"Template",
	"Requested Slides",
	"Stored Slides",
	"Table of Contents",
	"Title Slide",
	"Created At",
	"Updated At",
}

// BuildPresentationsReport writes one row per presentation owned by the user
// into a new workbook and returns the stored filename.
func (s *Service) BuildPresentationsReport(userID string) (*ReportResult, error) {
	timestamp := time.Now().Unix()
	filename := fmt.Sprintf("presentations_%s_%d.xlsx", userID, timestamp)
	filePath := filepath.Join(s.exportsDir, filename)

	presentations, err := s.presentationRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get presentations: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Presentations"
	defaultSheetName := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheetName, sheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for i, col := range reportColumns {
		cell := columnToLetter(i+1) + "1"
		f.SetCellValue(sheetName, cell, col)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"D9E1F2"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetCellStyle(sheetName, "A1", columnToLetter(len(reportColumns))+"1", headerStyle)
	}

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "B", 40)
	f.SetColWidth(sheetName, "I", "J", 22)

	if len(presentations) == 0 {
		f.SetCellValue(sheetName, "A2", "no presentations found for this user")
	}

	for i, presentation := range presentations {
		rowNum := i + 2

		title := ""
		if presentation.Title != nil {
			title = *presentation.Title
		}
		template := ""
		if presentation.Layout != nil {
			template = presentation.Layout.Name
		}

		storedSlides := 0
		if slides, err := s.slideRepo.GetByPresentationID(presentation.ID); err == nil {
			storedSlides = len(slides)
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), presentation.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), title)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), presentation.Language)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), template)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), presentation.NSlides)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), storedSlides)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowNum), presentation.IncludeTableOfContents)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowNum), presentation.IncludeTitleSlide)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowNum), presentation.CreatedAt.Format(time.RFC3339))
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", rowNum), presentation.UpdatedAt.Format(time.RFC3339))
	}

	if err := f.SaveAs(filePath); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	return &ReportResult{
		Success:  true,
		Message:  "report generated with " + strconv.Itoa(len(presentations)) + " presentations",
		Filename: filename,
	}, nil
}

// columnToLetter converts a 1-based column number to its letter reference
func columnToLetter(col int) string {
	letter := ""
	for col > 0 {
		col--
		letter = string(rune('A'+col%26)) + letter
		col /= 26
	}
	return letter
}

package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"doc-chat/internal/models"
)

// maxPageChars bounds synthetic pages for formats without native page
// numbers (docx, txt, md).
const maxPageChars = 2000

// ParsePages extracts a document into ordered page records ready for
// embedding. Formats with native pagination (pdf, pptx slides, spreadsheet
// sheets) keep their page numbers; the rest get synthetic sequential pages.
func ParsePages(filePath string) ([]models.Page, error) {
	fileName := filepath.Base(filePath)
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return parsePDF(filePath, fileName)
	case ".docx":
		return parseDOCX(filePath, fileName)
	case ".pptx":
		return parsePPTX(filePath, fileName)
	case ".xlsx":
		return parseXLSX(filePath, fileName)
	case ".ods":
		return parseODS(filePath, fileName)
	case ".md", ".markdown":
		return parseMarkdown(filePath, fileName)
	case ".txt":
		return parseText(filePath, fileName)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func parsePDF(filePath, fileName string) ([]models.Page, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var pages []models.Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		pages = append(pages, models.Page{
			FileName: fileName,
			PageNum:  int64(i),
			Content:  pageText,
		})
	}
	return pages, nil
}

func parseDOCX(filePath, fileName string) ([]models.Page, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	return pagesFromBlocks(fileName, strings.Split(content, "\n")), nil
}

func parsePPTX(filePath, fileName string) ([]models.Page, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []models.Page
	slideNum := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		slideNum++
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slideText := strings.TrimSpace(extractTextFromXML(string(data)))
		if slideText == "" {
			continue
		}
		pages = append(pages, models.Page{
			FileName: fileName,
			PageNum:  int64(slideNum),
			Content:  slideText,
		})
	}
	return pages, nil
}

func parseXLSX(filePath, fileName string) ([]models.Page, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var pages []models.Page
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, models.Page{
			FileName: fileName,
			PageNum:  int64(sheetNum + 1),
			Content:  strings.TrimSpace(text.String()),
		})
	}
	return pages, nil
}

func parseODS(filePath, fileName string) ([]models.Page, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []models.Page
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, models.Page{
			FileName: fileName,
			PageNum:  int64(sheetNum + 1),
			Content:  strings.TrimSpace(text.String()),
		})
	}
	return pages, nil
}

func parseText(filePath, fileName string) ([]models.Page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return pagesFromBlocks(fileName, strings.Split(string(data), "\n\n")), nil
}

// pagesFromBlocks groups text blocks into synthetic pages of at most
// maxPageChars, numbered from 1.
func pagesFromBlocks(fileName string, blocks []string) []models.Page {
	var pages []models.Page
	var current strings.Builder
	pageNum := int64(0)

	flush := func() {
		text := strings.TrimSpace(current.String())
		current.Reset()
		if text == "" {
			return
		}
		pageNum++
		pages = append(pages, models.Page{
			FileName: fileName,
			PageNum:  pageNum,
			Content:  text,
		})
	}

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(block)+1 > maxPageChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(block)
	}
	flush()
	return pages
}

func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}

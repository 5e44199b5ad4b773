package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/termination-service/internal/model"
)

type FileResult struct {
	FileName string
	Content  []byte
}

// ExportCases renders the case listing as a spreadsheet.
func (s *TerminationService) ExportCases(ctx context.Context, filter model.CaseFilter) (*FileResult, error) {
	views, err := s.ListCases(ctx, filter)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(views)
	if err != nil {
		return nil, err
	}

	name := "termination-cases"
	if filter.Status != nil {
		name += "-" + string(*filter.Status)
	}
	name += "-" + s.now().Format("20060102") + ".xlsx"
	return &FileResult{FileName: name, Content: content}, nil
}

// SettlementStatement renders the settlement of a case as a PDF.
func (s *TerminationService) SettlementStatement(ctx context.Context, caseID uuid.UUID) (*FileResult, error) {
	view, err := s.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !view.SettlementComputed() {
		return nil, fmt.Errorf("%w: settlement has not been calculated", ErrInvalidState)
	}
	content, err := s.pdf.Generate(*view)
	if err != nil {
		return nil, err
	}

	number := sanitizeFileName(view.ContractNumber)
	if number == "" {
		number = view.ID.String()
	}
	return &FileResult{
		FileName: fmt.Sprintf("settlement-%s.pdf", number),
		Content:  content,
	}, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}

package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

// ListingExportHeader 房源导出表头
var ListingExportHeader = []string{
	"Listing ID",
	"Title",
	"Price",
	"Area",
	"Payment Term",
	"Province Code",
	"City Code",
	"District Code",
	"Status",
	"Address",
}

// ExportExcel 按查询条件导出房源清单（后台报表用）
func (s *ListingService) ExportExcel(ctx context.Context, req QueryListingsRequest) ([]byte, error) {
	if req.Limit <= 0 {
		req.Limit = 10000
	}
	resp, err := s.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	return generateListingExcel(resp.Items)
}

func generateListingExcel(items []*domain.Listing) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo 之前不能 Close

	sheetName := "Listings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for col, header := range ListingExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, l := range items {
		summary := repository.Summary(l.ID, l.Document)
		values := []any{
			l.ID,
			summary.Title,
			strconv.FormatInt(l.PriceMinor, 10),
			l.AreaText,
			l.PaymentTerm,
			l.ProvinceCode,
			l.CityCode,
			l.DistrictCode,
			l.Status,
			summary.Address,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to build cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	var buf []byte
	w, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to render excel: %w", err)
	}
	buf = w.Bytes()
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}
	return buf, nil
}

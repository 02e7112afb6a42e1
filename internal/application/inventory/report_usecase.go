package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
)

// StockReport datos del reporte de existencias.
type StockReport struct {
	GeneratedAt time.Time
	Area        entity.Area // vacía = ambas áreas
	Rows        []*entity.InventoryLevel
	Totals      map[entity.Area]decimal.Decimal
}

// ReportUseCase genera el PDF de existencias.
type ReportUseCase struct {
	levelRepo repository.InventoryLevelRepository
	generator StockReportGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(levelRepo repository.InventoryLevelRepository, generator StockReportGenerator) *ReportUseCase {
	return &ReportUseCase{levelRepo: levelRepo, generator: generator}
}

// StockReportPDF arma el reporte (opcionalmente filtrado por área) y lo renderiza.
func (uc *ReportUseCase) StockReportPDF(ctx context.Context, area string) ([]byte, error) {
	if uc.generator == nil {
		return nil, domain.ErrNotFound
	}
	report := StockReport{
		GeneratedAt: time.Now().UTC(),
		Totals:      make(map[entity.Area]decimal.Decimal, len(entity.Areas)),
	}
	if strings.TrimSpace(area) != "" {
		a, err := entity.ParseArea(area)
		if err != nil {
			return nil, err
		}
		report.Area = a
	}

	rows, err := uc.levelRepo.List(ctx, repository.StockFilter{Area: report.Area})
	if err != nil {
		return nil, storageErr(err)
	}
	report.Rows = rows
	for _, r := range rows {
		report.Totals[r.Area] = report.Totals[r.Area].Add(r.Quantity)
	}

	pdf, err := uc.generator.GenerateStockReport(ctx, report)
	if err != nil {
		return nil, storageErr(err)
	}
	return pdf, nil
}

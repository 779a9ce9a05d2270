package usecase

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
)

const (
	catalogSheet    = "Catalogo"
	exportBatchSize = 100
)

// ExportUseCase exporta el catálogo a una hoja de cálculo.
type ExportUseCase struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(products repository.ProductRepository, categories repository.CategoryRepository) *ExportUseCase {
	return &ExportUseCase{products: products, categories: categories}
}

// ExportXLSX genera un .xlsx con nombre, categoría, precio y stock de cada producto.
func (uc *ExportUseCase) ExportXLSX(ctx context.Context) ([]byte, error) {
	catNames := map[string]string{}
	for offset := 0; ; offset += exportBatchSize {
		cats, err := uc.categories.List(ctx, exportBatchSize, offset)
		if err != nil {
			return nil, err
		}
		for _, c := range cats {
			catNames[c.ID] = c.Name
		}
		if len(cats) < exportBatchSize {
			break
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", catalogSheet); err != nil {
		return nil, fmt.Errorf("xlsx: hoja: %w", err)
	}
	header := []interface{}{"Producto", "Categoría", "Precio", "Stock", "Descripción"}
	if err := f.SetSheetRow(catalogSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: cabecera: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(catalogSheet, "A1", "E1", bold); err != nil {
		return nil, err
	}

	rowNum := 2
	for offset := 0; ; offset += exportBatchSize {
		list, err := uc.products.List(ctx, repository.ProductFilter{Limit: exportBatchSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return nil, err
			}
			values := []interface{}{p.Name, catNames[p.CategoryID], p.Price.InexactFloat64(), p.Stock, p.Description}
			if err := f.SetSheetRow(catalogSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("xlsx: fila %d: %w", rowNum, err)
			}
			rowNum++
		}
		if len(list) < exportBatchSize {
			break
		}
	}

	if rowNum > 2 {
		money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(catalogSheet, "C2", fmt.Sprintf("C%d", rowNum-1), money); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(catalogSheet, "A", "B", 30); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(catalogSheet, "E", "E", 50); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

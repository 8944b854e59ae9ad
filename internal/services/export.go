package services

import (
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pabean-labs/bc20-explorer/internal/models"
)

const exportSheetName = "Declarations"

var exportColumns = []any{
	"ID Header", "Nomor Aju", "Nomor Daftar", "Tanggal Daftar", "Jalur", "Kode Kantor",
	"Importir", "PPJK", "Penjual", "Jumlah Kontainer", "TEUS", "Jumlah Barang", "HS Pertama", "Uraian Pertama",
}

// declarationSheet streams declaration rows into a single-sheet workbook.
type declarationSheet struct {
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

func newDeclarationSheet() (*declarationSheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		_ = f.Close()
		return nil, err
	}

	sw, err := f.NewStreamWriter(exportSheetName)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	sheet := &declarationSheet{file: f, stream: sw, row: 1}
	if err := sheet.setRow(exportColumns); err != nil {
		_ = f.Close()
		return nil, err
	}
	return sheet, nil
}

func (s *declarationSheet) setRow(values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.stream.SetRow(cell, values); err != nil {
		return err
	}
	s.row++
	return nil
}

// Append writes rows below the ones already written.
func (s *declarationSheet) Append(rows []models.DeclarationSummary) error {
	for _, r := range rows {
		registered := ""
		if r.TanggalDaftar != nil {
			registered = r.TanggalDaftar.Format(time.DateOnly)
		}
		err := s.setRow([]any{
			r.ID, r.NomorAju, r.NomorDaftar, registered, r.Jalur, r.KodeKantor,
			r.ImporterName, r.BrokerName, r.SellerName, r.ContainerCount, r.TEUSum, r.GoodsCount, r.FirstHSCode, r.FirstDescription,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Rows returns the number of data rows written so far.
func (s *declarationSheet) Rows() int {
	return s.row - 2
}

// Write flushes the stream and writes the workbook to w.
func (s *declarationSheet) Write(w io.Writer) error {
	if err := s.stream.Flush(); err != nil {
		return err
	}
	return s.file.Write(w)
}

func (s *declarationSheet) Close() error {
	return s.file.Close()
}

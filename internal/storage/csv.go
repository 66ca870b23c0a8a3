package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"shipscraper/internal/domain"
	"shipscraper/internal/scrape"
)

const (
	ShipsFile  = "ships_data.csv"
	ImagesFile = "img_data.csv"
)

// ExportCSV writes both datasets as flat tabular files into dir. The
// first column of each file is the record key; absent optional image
// fields serialize as empty cells.
func ExportCSV(dir string, ships *domain.ShipDataset, images *domain.ImageDataset) error {
	if err := writeShips(filepath.Join(dir, ShipsFile), ships); err != nil {
		return err
	}
	return writeImages(filepath.Join(dir, ImagesFile), images)
}

func writeShips(path string, ships *domain.ShipDataset) error {
	rows := make([][]string, 0, ships.Len()+1)
	rows = append(rows, scrape.ColumnNames())
	for _, rec := range ships.Records() {
		rows = append(rows, scrape.RowValues(rec))
	}
	return writeCSV(path, rows)
}

func writeImages(path string, images *domain.ImageDataset) error {
	header := make([]string, 0, len(domain.ViewCategories)+1)
	header = append(header, "Name")
	for _, v := range domain.ViewCategories {
		header = append(header, string(v))
	}

	rows := make([][]string, 0, images.Len()+1)
	rows = append(rows, header)
	for _, rec := range images.Records() {
		row := make([]string, 0, len(header))
		row = append(row, rec.Name)
		for _, v := range domain.ViewCategories {
			row = append(row, rec.View(v))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

package main

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var defaultCatalogYAML []byte

var ErrUnsupportedCatalogFormat = errors.New("unsupported catalog format")

// catalogDocument is the layout of yaml and json catalog files.
type catalogDocument struct {
	Books []Book `json:"books" yaml:"books"`
}

// parquetBook is the flat row layout of parquet catalog files.
type parquetBook struct {
	ID          int64           `parquet:"id"`
	Title       string          `parquet:"title"`
	Author      string          `parquet:"author"`
	Price       float64         `parquet:"price"`
	Discount    float64         `parquet:"discount"`
	Image       string          `parquet:"image"`
	Rating      float64         `parquet:"rating"`
	Category    string          `parquet:"category"`
	Description string          `parquet:"description"`
	Format      string          `parquet:"format"`
	Collection  string          `parquet:"collection"`
	Reviews     []parquetReview `parquet:"reviews"`
}

type parquetReview struct {
	ID      int64   `parquet:"id"`
	User    string  `parquet:"user"`
	Rating  float64 `parquet:"rating"`
	Comment string  `parquet:"comment"`
	Date    string  `parquet:"date"`
}

// DefaultCatalog builds the catalog shipped with the binary.
func DefaultCatalog() (*Catalog, error) {
	books, err := DecodeCatalogYAML(defaultCatalogYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded catalog: %w", err)
	}
	return NewCatalog(books)
}

// LoadCatalog returns the embedded catalog when path is empty, otherwise
// the validated catalog read from the file. The format is picked from the
// file extension: .yaml, .yml, .json or .parquet.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	books, err := ReadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(books)
}

// ReadCatalogFile decodes the books stored into a catalog file without validating them.
func ReadCatalogFile(path string) ([]Book, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		if ext == ".json" {
			return DecodeCatalogJSON(data)
		}
		return DecodeCatalogYAML(data)
	case ".parquet":
		return readParquetCatalog(path)
	default:
		return nil, fmt.Errorf("%w: %q (supported: .yaml, .yml, .json, .parquet)", ErrUnsupportedCatalogFormat, ext)
	}
}

// DecodeCatalogYAML decodes a yaml catalog document.
func DecodeCatalogYAML(data []byte) ([]Book, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode yaml catalog: %w", err)
	}
	return doc.Books, nil
}

// DecodeCatalogJSON decodes a json catalog document.
func DecodeCatalogJSON(data []byte) ([]Book, error) {
	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode json catalog: %w", err)
	}
	return doc.Books, nil
}

// WriteCatalogFile exports books to path using the format of its extension.
func WriteCatalogFile(path string, books []Book) error {
	ext := strings.ToLower(filepath.Ext(path))
	var data []byte
	var err error
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(catalogDocument{Books: books})
	case ".json":
		data, err = json.MarshalIndent(catalogDocument{Books: books}, "", "  ")
	case ".parquet":
		return writeParquetCatalog(path, books)
	default:
		return fmt.Errorf("%w: %q (supported: .yaml, .yml, .json, .parquet)", ErrUnsupportedCatalogFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readParquetCatalog(path string) ([]Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[parquetBook](pf)
	defer reader.Close()

	books := []Book{}
	rows := make([]parquetBook, 64)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			books = append(books, row.toBook())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return books, nil
}

func writeParquetCatalog(path string, books []Book) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	rows := make([]parquetBook, 0, len(books))
	for _, b := range books {
		rows = append(rows, newParquetBook(b))
	}

	writer := parquet.NewGenericWriter[parquetBook](file)
	if _, err = writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return file.Sync()
}

func newParquetBook(b Book) parquetBook {
	price, _ := b.Price.Float64()
	discount, _ := b.Discount.Float64()
	row := parquetBook{
		ID:          int64(b.ID),
		Title:       b.Title,
		Author:      b.Author,
		Price:       price,
		Discount:    discount,
		Image:       b.Image,
		Rating:      b.Rating,
		Category:    b.Category,
		Description: b.Description,
		Format:      b.Format,
		Collection:  b.Collection,
	}
	for _, r := range b.Reviews {
		row.Reviews = append(row.Reviews, parquetReview{
			ID:      int64(r.ID),
			User:    r.User,
			Rating:  r.Rating,
			Comment: r.Comment,
			Date:    r.Date,
		})
	}
	return row
}

// toBook converts a parquet row back to a catalog record. Float prices
// are rounded to cents.
func (row parquetBook) toBook() Book {
	b := Book{
		ID:          int(row.ID),
		Title:       row.Title,
		Author:      row.Author,
		Price:       decimal.NewFromFloat(row.Price).Round(2),
		Discount:    decimal.NewFromFloat(row.Discount).Round(2),
		Image:       row.Image,
		Rating:      row.Rating,
		Category:    row.Category,
		Description: row.Description,
		Format:      row.Format,
		Collection:  row.Collection,
	}
	for _, r := range row.Reviews {
		b.Reviews = append(b.Reviews, Review{
			ID:      int(r.ID),
			User:    r.User,
			Rating:  r.Rating,
			Comment: r.Comment,
			Date:    r.Date,
		})
	}
	return b
}

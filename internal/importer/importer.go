// Package importer loads catalog CSV files into the store.
package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Kind is the type of rows a CSV file carries.
type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

// productNamespace seeds deterministic ids for rows without an id column value,
// so re-running an import updates instead of duplicating.
var productNamespace = uuid.MustParse("5b1f3c8e-2a64-4d0f-9a53-7f2e8c1d4b90")

// CatalogWriter is the catalog surface the importer writes through.
type CatalogWriter interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpsertCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
	UpsertProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and upserts categories and products.
//
// Product files have the header id,name,category,description,price,active,image.
// A row with a blank name continues the previous product and only contributes
// its image. Category files have the header name,active.
type CSVImporter struct {
	reader  *csv.Reader
	catalog CatalogWriter
	logger  *zap.Logger

	categories map[string]int64
}

func NewCSVImporter(r io.Reader, catalog CatalogWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:  csvr,
		catalog: catalog,
		logger:  logging.OrNop(logger),
	}
}

// Result counts what a run wrote.
type Result struct {
	Kind       Kind
	Products   int
	Categories int
}

type productRow struct {
	line        int
	ID          string
	Name        string
	Category    string
	Description string
	Price       string
	Active      string
	Images      []string
}

// Run reads the header, picks the file kind and upserts every row.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if err := i.loadCategories(ctx); err != nil {
		return Result{}, err
	}

	if kindOf(index) == KindCategories {
		return i.runCategories(ctx, index)
	}
	return i.runProducts(ctx, index)
}

func (i *CSVImporter) runCategories(ctx context.Context, index map[string]int) (Result, error) {
	res := Result{Kind: KindCategories}
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		name := pick(record, index, "name")
		if name == "" {
			continue
		}
		active, err := parseActive(pick(record, index, "active"))
		if err != nil {
			return res, fmt.Errorf("category %q: %w", name, err)
		}
		if _, err := i.ensureCategory(ctx, name, active); err != nil {
			return res, err
		}
		res.Categories++
	}
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (Result, error) {
	res := Result{Kind: KindProducts}
	var current *productRow
	line := 1

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line++

		row := parseProductRow(record, index)
		if row == nil {
			continue
		}
		row.line = line

		if row.Name != "" {
			if current != nil {
				if err := i.saveProduct(ctx, current, &res); err != nil {
					return res, err
				}
			}
			current = row
			continue
		}

		// Continuation rows (images) belong to the current product.
		if current != nil && len(row.Images) > 0 {
			current.Images = append(current.Images, row.Images...)
		}
	}

	if current != nil {
		if err := i.saveProduct(ctx, current, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, row *productRow, res *Result) error {
	if row.Category == "" || row.Price == "" {
		return fmt.Errorf("line %d: product %q is missing category or price", row.line, row.Name)
	}
	price, err := decimal.NewFromString(row.Price)
	if err != nil {
		return fmt.Errorf("line %d: invalid price %q: %w", row.line, row.Price, err)
	}
	active, err := parseActive(row.Active)
	if err != nil {
		return fmt.Errorf("line %d: %w", row.line, err)
	}

	before := len(i.categories)
	categoryID, err := i.ensureCategory(ctx, row.Category, true)
	if err != nil {
		return err
	}
	if len(i.categories) > before {
		res.Categories++
	}

	id := row.ID
	if id == "" {
		id = uuid.NewSHA1(productNamespace, []byte(strings.ToLower(row.Name))).String()
	}

	saved, err := i.catalog.UpsertProduct(ctx, domain.Product{
		ID:          id,
		Name:        row.Name,
		CategoryID:  categoryID,
		Description: row.Description,
		Price:       price,
		Images:      row.Images,
		Active:      active,
	})
	if err != nil {
		return fmt.Errorf("line %d: upsert product %q: %w", row.line, row.Name, err)
	}
	res.Products++
	i.logger.Debug("importer: product upserted", zap.String("product_id", saved.ID), zap.Int("line", row.line))
	return nil
}

func (i *CSVImporter) loadCategories(ctx context.Context) error {
	cats, err := i.catalog.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	i.categories = make(map[string]int64, len(cats))
	for _, c := range cats {
		i.categories[strings.ToLower(c.Name)] = c.ID
	}
	return nil
}

// ensureCategory resolves a category by name, creating it when unknown.
func (i *CSVImporter) ensureCategory(ctx context.Context, name string, active bool) (int64, error) {
	key := strings.ToLower(name)
	if id, ok := i.categories[key]; ok {
		return id, nil
	}
	c, err := i.catalog.UpsertCategory(ctx, domain.Category{Name: name, Active: active})
	if err != nil {
		return 0, fmt.Errorf("upsert category %q: %w", name, err)
	}
	i.categories[key] = c.ID
	return c.ID, nil
}

// DetectKind peeks at the header row.
func DetectKind(r io.Reader) (Kind, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	headers, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	return kindOf(headerIndex(headers)), nil
}

func kindOf(index map[string]int) Kind {
	if _, ok := index["price"]; ok {
		return KindProducts
	}
	return KindCategories
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseProductRow(record []string, index map[string]int) *productRow {
	row := &productRow{
		ID:          pick(record, index, "id"),
		Name:        pick(record, index, "name"),
		Category:    pick(record, index, "category"),
		Description: pick(record, index, "description"),
		Price:       pick(record, index, "price"),
		Active:      pick(record, index, "active"),
	}
	image := pick(record, index, "image")
	if row.Name == "" && image == "" {
		return nil
	}
	if image != "" {
		row.Images = []string{image}
	}
	return row
}

func parseActive(v string) (bool, error) {
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid active flag %q", v)
	}
	return b, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

package importer

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/logging"
	"sahara-storefront/internal/service/admin"
)

// ItemWriter is the admin add-product contract.
type ItemWriter interface {
	Create(ctx context.Context, in admin.CreateInput) (*domain.CatalogItem, error)
}

// CSVImporter reads an item sheet with a header row naming at least
// name, price, quantity and imageUrl, and adds each row to the catalog.
// Optional columns are category, color and tags (';'-separated).
type CSVImporter struct {
	reader *csv.Reader
	writer ItemWriter
	logger logrus.FieldLogger
}

func NewCSVImporter(r io.Reader, writer ItemWriter, logger logrus.FieldLogger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader: csvr,
		writer: writer,
		logger: logging.OrDiscard(logger),
	}
}

var requiredColumns = []string{"name", "price", "quantity", "imageUrl"}

// Run imports every row and returns how many items were created. Rows
// naming an item that already exists are skipped, so re-running a sheet
// is harmless.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, errors.Wrap(err, "read headers")
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[strings.ToLower(col)]; !ok {
			return 0, errors.Errorf("missing column %q", col)
		}
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, errors.Wrap(err, "read row")
		}
		if blank(record) {
			continue
		}

		in, err := parseRow(record, index)
		if err != nil {
			return imported, errors.Wrapf(err, "line %d", line)
		}
		item, err := i.writer.Create(ctx, in)
		if errors.Is(err, admin.ErrDuplicateName) {
			i.logger.WithField("name", in.Name).Info("importer: item exists, skipping")
			continue
		}
		if err != nil {
			return imported, errors.Wrapf(err, "line %d: add %q", line, in.Name)
		}
		i.logger.WithFields(logrus.Fields{"id": item.ID, "name": item.Name}).Debug("importer: item added")
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (admin.CreateInput, error) {
	in := admin.CreateInput{
		Name:     pick(record, index, "name"),
		ImageURL: pick(record, index, "imageurl"),
		Category: pick(record, index, "category"),
		Color:    pick(record, index, "color"),
	}
	if raw := pick(record, index, "price"); raw != "" {
		price, err := domain.ParsePrice(strings.TrimPrefix(raw, "£"))
		if err != nil {
			return in, err
		}
		in.Price = &price
	}
	if raw := pick(record, index, "quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return in, domain.Invalid("malformed quantity %q", raw)
		}
		in.Quantity = &qty
	}
	for _, tag := range strings.Split(pick(record, index, "tags"), ";") {
		if tag = strings.TrimSpace(tag); tag != "" {
			in.Tags = append(in.Tags, tag)
		}
	}
	return in, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

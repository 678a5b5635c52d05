package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Column positions in the HM Land Registry Price Paid CSV (no header row).
const (
	ppdColTransactionID = 0
	ppdColPrice         = 1
	ppdColDate          = 2
	ppdColPostcode      = 3
	ppdColPropertyType  = 4
	ppdColStreet        = 9
	ppdColTown          = 11
	ppdColumns          = 16
)

// PPDSale is one Price Paid row reduced to the columns comps need.
type PPDSale struct {
	TransactionID string
	Price         int
	Date          time.Time
	Postcode      string
	PropertyType  string
	Street        *string
	Town          *string
}

// PPDReader streams sales out of a Price Paid CSV file.
type PPDReader struct {
	r       *csv.Reader
	line    int
	Skipped int
}

// NewPPDReader wraps r. Rows with fewer than 16 columns are rejected.
func NewPPDReader(r io.Reader) *PPDReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return &PPDReader{r: cr}
}

// Next returns the next usable sale, or io.EOF. Rows without a postcode or
// with a non-positive price are skipped and counted in Skipped.
func (p *PPDReader) Next() (PPDSale, error) {
	for {
		rec, err := p.r.Read()
		if errors.Is(err, io.EOF) {
			return PPDSale{}, io.EOF
		}
		p.line++
		if err != nil {
			return PPDSale{}, fmt.Errorf("ppd csv: line %d: %w", p.line, err)
		}
		if len(rec) < ppdColumns {
			return PPDSale{}, fmt.Errorf("ppd csv: line %d: want %d columns, got %d", p.line, ppdColumns, len(rec))
		}

		sale, ok := parsePPDRecord(rec)
		if !ok {
			p.Skipped++
			continue
		}
		return sale, nil
	}
}

// ReadAll drains the reader in batches of batchSize, calling fn for each.
func (p *PPDReader) ReadAll(batchSize int, fn func([]PPDSale) error) error {
	batchSize = max(1, batchSize)
	batch := make([]PPDSale, 0, batchSize)
	for {
		sale, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		batch = append(batch, sale)
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func parsePPDRecord(rec []string) (PPDSale, bool) {
	postcode := strings.ToUpper(strings.TrimSpace(rec[ppdColPostcode]))
	price, err := strconv.Atoi(strings.TrimSpace(rec[ppdColPrice]))
	if postcode == "" || err != nil || price <= 0 {
		return PPDSale{}, false
	}

	// dates come as "2024-03-15 00:00"
	raw := strings.TrimSpace(rec[ppdColDate])
	if len(raw) >= len(isoDate) {
		raw = raw[:len(isoDate)]
	}
	date, err := time.Parse(isoDate, raw)
	if err != nil {
		return PPDSale{}, false
	}

	return PPDSale{
		TransactionID: strings.Trim(strings.TrimSpace(rec[ppdColTransactionID]), "{}"),
		Price:         price,
		Date:          date,
		Postcode:      postcode,
		PropertyType:  strings.ToUpper(strings.TrimSpace(rec[ppdColPropertyType])),
		Street:        optional(rec[ppdColStreet]),
		Town:          optional(rec[ppdColTown]),
	}, true
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

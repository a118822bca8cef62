package grants

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/todmy/grantmap/pkg/models"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidNumber = errors.New("invalid number")
)

// ReadOptions controls how absent values are represented
type ReadOptions struct {
	// MissingText replaces empty title, description and recipient name
	// fields. Empty by default; "nan" matches older result files.
	MissingText string
}

// ReadCSV reads records from a GrantNav export. Columns are located by header
// name, so extra columns and column order do not matter.
func ReadCSV(r io.Reader, opts ReadOptions) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := indexColumns(header)
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	var records []Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		text := func(col string) string {
			if v := get(col); v != "" {
				return v
			}
			return opts.MissingText
		}

		amount, err := parseAmount(get(ColAmountAwarded))
		if err != nil {
			return nil, fmt.Errorf("line %d, column %q: %w", line, ColAmountAwarded, err)
		}

		records = append(records, Record{
			Identifier:             get(ColIdentifier),
			AwardDate:              get(ColAwardDate),
			Title:                  text(ColTitle),
			Description:            text(ColDescription),
			Currency:               get(ColCurrency),
			AmountAwarded:          amount,
			RecipientOrgIdentifier: get(ColRecipientOrgID),
			RecipientOrgName:       text(ColRecipientOrgName),
			FundingOrgIdentifier:   get(ColFundingOrgID),
			FundingOrgName:         get(ColFundingOrgName),
		})
	}

	return records, nil
}

// NewPoint places a record at the given coordinates
func NewPoint(r Record, x, y float64) models.GrantPoint {
	p := models.GrantPoint{
		ID:             r.Identifier,
		AwardDate:      r.AwardDate,
		Title:          r.Title,
		Description:    r.Description,
		Currency:       r.Currency,
		RecipientOrgID: r.RecipientOrgIdentifier,
		RecipientOrg:   r.RecipientOrgName,
		FundingOrgID:   r.FundingOrgIdentifier,
		FundingOrg:     r.FundingOrgName,
		X:              x,
		Y:              y,
	}
	if !math.IsNaN(r.AmountAwarded) {
		amount := r.AmountAwarded
		p.Amount = &amount
	}
	return p
}

// WriteCSV writes the result file: the columns of interest followed by x and y
func WriteCSV(w io.Writer, points []models.GrantPoint) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, OutputColumns...), ColX, ColY)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, p := range points {
		amount := ""
		if p.Amount != nil {
			amount = formatFloat(*p.Amount)
		}
		row := []string{
			p.ID,
			p.AwardDate,
			p.Title,
			p.Description,
			p.Currency,
			amount,
			p.RecipientOrgID,
			p.RecipientOrg,
			p.FundingOrgID,
			p.FundingOrg,
			formatFloat(p.X),
			formatFloat(p.Y),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", p.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadPoints reads a result file written by WriteCSV
func ReadPoints(r io.Reader) ([]models.GrantPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := indexColumns(header)
	for _, col := range []string{ColIdentifier, ColX, ColY} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	var points []models.GrantPoint
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		x, err := strconv.ParseFloat(get(ColX), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d, column %q: %w", line, ColX, ErrInvalidNumber)
		}
		y, err := strconv.ParseFloat(get(ColY), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d, column %q: %w", line, ColY, ErrInvalidNumber)
		}
		amount, err := parseAmount(get(ColAmountAwarded))
		if err != nil {
			return nil, fmt.Errorf("line %d, column %q: %w", line, ColAmountAwarded, err)
		}

		points = append(points, NewPoint(Record{
			Identifier:             get(ColIdentifier),
			AwardDate:              get(ColAwardDate),
			Title:                  get(ColTitle),
			Description:            get(ColDescription),
			Currency:               get(ColCurrency),
			AmountAwarded:          amount,
			RecipientOrgIdentifier: get(ColRecipientOrgID),
			RecipientOrgName:       get(ColRecipientOrgName),
			FundingOrgIdentifier:   get(ColFundingOrgID),
			FundingOrgName:         get(ColFundingOrgName),
		}, x, y))
	}

	return points, nil
}

func indexColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		// Exports written by some tools start with a UTF-8 BOM
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

func parseAmount(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Package survey reads commute survey exports.
package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"commute-route-service/internal/domain"
)

// Columns names the header cells holding each field.
type Columns struct {
	Building string
	Address  string
	City     string
	Mode     string
}

func DefaultColumns() Columns {
	return Columns{
		Building: "Building",
		Address:  "Address",
		City:     "City",
		Mode:     "Way in",
	}
}

func (c Columns) withDefaults() Columns {
	def := DefaultColumns()
	if c.Building == "" {
		c.Building = def.Building
	}
	if c.Address == "" {
		c.Address = def.Address
	}
	if c.City == "" {
		c.City = def.City
	}
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	return c
}

// Options controls how a survey file is parsed.
type Options struct {
	Columns Columns
	// Encoding is "latin1" (spreadsheet exports) or "utf8".
	Encoding  string
	Delimiter rune
}

func DefaultOptions() Options {
	return Options{Columns: DefaultColumns(), Encoding: "latin1", Delimiter: ','}
}

// Reader yields one Commute per data row.
type Reader struct {
	csv  *csv.Reader
	log  *zap.Logger
	idx  columnIndex
	rows int
}

type columnIndex struct {
	building, address, city, mode int
	width                         int
}

// NewReader reads and checks the header row of r.
func NewReader(r io.Reader, opts Options, log *zap.Logger) (*Reader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Encoding == "" {
		opts.Encoding = "latin1"
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	opts.Columns = opts.Columns.withDefaults()

	switch opts.Encoding {
	case "latin1":
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	case "utf8":
	default:
		return nil, fmt.Errorf("survey: unsupported encoding %q", opts.Encoding)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("survey: file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("survey: read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	log.Info("survey columns", zap.String("columns", strings.Join(header, ", ")))

	idx, err := indexColumns(header, opts.Columns)
	if err != nil {
		return nil, err
	}

	return &Reader{csv: cr, log: log, idx: idx}, nil
}

func indexColumns(header []string, cols Columns) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	find := func(name string) int {
		i, ok := pos[strings.TrimSpace(name)]
		if !ok {
			missing = append(missing, fmt.Sprintf("%q", name))
			return -1
		}
		return i
	}

	idx := columnIndex{
		building: find(cols.Building),
		address:  find(cols.Address),
		city:     find(cols.City),
		mode:     find(cols.Mode),
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("survey: missing columns %s", strings.Join(missing, ", "))
	}

	for _, i := range []int{idx.building, idx.address, idx.city, idx.mode} {
		if i+1 > idx.width {
			idx.width = i + 1
		}
	}
	return idx, nil
}

// Read returns the next commute, or io.EOF after the last row.
func (r *Reader) Read() (domain.Commute, error) {
	rec, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		r.log.Info("survey processed", zap.Int("rows", r.rows))
		return domain.Commute{}, io.EOF
	}
	if err != nil {
		return domain.Commute{}, fmt.Errorf("survey: row %d: %w", r.rows+1, err)
	}
	r.rows++

	if len(rec) < r.idx.width {
		return domain.Commute{}, fmt.Errorf("survey: row %d: has %d fields, want at least %d", r.rows, len(rec), r.idx.width)
	}

	return domain.Commute{
		Row:       r.rows,
		Building:  strings.TrimSpace(rec[r.idx.building]),
		Address:   strings.TrimSpace(rec[r.idx.address]),
		City:      strings.TrimSpace(rec[r.idx.city]),
		ModeLabel: strings.TrimSpace(rec[r.idx.mode]),
	}, nil
}

// ReadAll returns every remaining commute.
func (r *Reader) ReadAll() ([]domain.Commute, error) {
	var out []domain.Commute
	for {
		c, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
}

// ReadFile opens path and reads every commute in it.
func ReadFile(path string, opts Options, log *zap.Logger) ([]domain.Commute, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("survey: open %q: %w", path, err)
	}
	defer f.Close()

	r, err := NewReader(f, opts, log)
	if err != nil {
		return nil, fmt.Errorf("survey: %q: %w", path, err)
	}
	return r.ReadAll()
}

package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"aliados/internal/logger"
	"aliados/internal/textnorm"
)

var (
	ErrNoData            = errors.New("no data could be read")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingColumn     = errors.New("required column missing")
)

// Accepted header spellings per field, after textnorm.Identifier.
var (
	campaignColumns = []string{"campana_final", "campana", "campaign_label", "campaign", "aliado", "partner"}
	periodColumns   = []string{"mes", "period", "periodo", "month", "fecha"}
	unitsColumns    = []string{"altas", "units_count", "units"}
	revenueColumns  = []string{"ingresos", "revenue"}
)

// Source names a file to load. Sheet selects a workbook sheet and is
// ignored for CSV files; empty means the first sheet.
type Source struct {
	Path  string
	Sheet string
}

// ParseSource parses "path" or "path#Sheet".
func ParseSource(s string) Source {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "#"); i > 0 {
		return Source{Path: s[:i], Sheet: s[i+1:]}
	}
	return Source{Path: s}
}

// ParseSources parses a comma separated source list, skipping blanks.
func ParseSources(list string) []Source {
	var out []Source
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, ParseSource(part))
	}
	return out
}

func (s Source) String() string {
	if s.Sheet == "" {
		return s.Path
	}
	return s.Path + "#" + s.Sheet
}

// Stats describes what a load read.
type Stats struct {
	Files          int
	Rows           int
	SkippedRows    int
	MalformedCells int
}

// Loader reads source files into datasets.
type Loader struct {
	log logger.Logger
}

// NewLoader creates a loader.
func NewLoader(log logger.Logger) *Loader {
	return &Loader{log: log.With(map[string]interface{}{"component": "loader"})}
}

// LoadAll loads the activity and goal sources concurrently. Failing to read
// any activity row is an error; an empty goal dataset is only logged since
// prediction reports handle missing goals themselves.
func (l *Loader) LoadAll(ctx context.Context, activity, goals []Source) (*Dataset, *Dataset, error) {
	var act, goal *Dataset
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ds, _, err := l.Load(ctx, Activity, activity)
		if err != nil {
			return fmt.Errorf("loading activity: %w", err)
		}
		act = ds
		return nil
	})
	g.Go(func() error {
		ds, _, err := l.Load(ctx, Goal, goals)
		if err != nil {
			if !errors.Is(err, ErrNoData) {
				return fmt.Errorf("loading goals: %w", err)
			}
			l.log.Warn("no goal rows loaded, predictions will report missing goals", nil)
			ds = New(Goal, nil)
		}
		goal = ds
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return act, goal, nil
}

// Load reads every source into one dataset of the given kind. Unreadable
// files are logged and skipped; ErrNoData is returned when no row at all
// could be read.
func (l *Loader) Load(ctx context.Context, kind Kind, sources []Source) (*Dataset, Stats, error) {
	var (
		stats   Stats
		records []Record
		lastErr error
	)
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		table, err := readTable(src)
		if err == nil {
			var recs []Record
			var fileStats Stats
			recs, fileStats, err = toRecords(table)
			if err == nil {
				records = append(records, recs...)
				stats.Files++
				stats.Rows += fileStats.Rows
				stats.SkippedRows += fileStats.SkippedRows
				stats.MalformedCells += fileStats.MalformedCells
				l.log.Info("source loaded", map[string]interface{}{
					"kind":      kind.String(),
					"source":    src.String(),
					"rows":      fileStats.Rows,
					"skipped":   fileStats.SkippedRows,
					"malformed": fileStats.MalformedCells,
				})
				continue
			}
		}
		lastErr = err
		l.log.Warn("source skipped", map[string]interface{}{
			"kind":   kind.String(),
			"source": src.String(),
			"error":  err.Error(),
		})
	}

	if len(records) == 0 {
		if lastErr != nil {
			return nil, stats, fmt.Errorf("%w: %s: %v", ErrNoData, kind, lastErr)
		}
		return nil, stats, fmt.Errorf("%w: %s", ErrNoData, kind)
	}
	return New(kind, records), stats, nil
}

func readTable(src Source) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".csv", ".txt":
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", src.Path, err)
		}
		return parseCSV(data)
	case ".xlsx", ".xlsm":
		return readWorkbook(src)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, src.Path)
	}
}

// parseCSV reads comma or semicolon separated data, whichever the header
// line uses more of.
func parseCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		r.Comma = ';'
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readWorkbook(src Source) ([][]string, error) {
	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", src.Path, err)
	}
	defer f.Close()

	sheet := src.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", src.Path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

type columns struct {
	campaign, period, units, revenue int
}

func locateColumns(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := textnorm.Identifier(h)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	find := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := idx[a]; ok {
				return i
			}
		}
		return -1
	}
	cols := columns{
		campaign: find(campaignColumns),
		period:   find(periodColumns),
		units:    find(unitsColumns),
		revenue:  find(revenueColumns),
	}
	if cols.campaign < 0 {
		return cols, fmt.Errorf("%w: campaign", ErrMissingColumn)
	}
	if cols.period < 0 {
		return cols, fmt.Errorf("%w: period", ErrMissingColumn)
	}
	return cols, nil
}

func toRecords(table [][]string) ([]Record, Stats, error) {
	var stats Stats
	if len(table) == 0 {
		return nil, stats, nil
	}
	cols, err := locateColumns(table[0])
	if err != nil {
		return nil, stats, err
	}

	records := make([]Record, 0, len(table)-1)
	for _, row := range table[1:] {
		label := strings.TrimSpace(cell(row, cols.campaign))
		period := normalizePeriodCell(cell(row, cols.period))
		if label == "" && period == "" {
			stats.SkippedRows++
			continue
		}
		units, ok := parseNumber(cell(row, cols.units))
		if !ok {
			stats.MalformedCells++
		}
		revenue, ok := parseNumber(cell(row, cols.revenue))
		if !ok {
			stats.MalformedCells++
		}
		records = append(records, Record{
			CampaignLabel: label,
			Period:        period,
			Units:         units,
			Revenue:       revenue,
		})
		stats.Rows++
	}
	return records, stats, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

var (
	numberJunk   = regexp.MustCompile(`[^0-9.,\-]`)
	serialPeriod = regexp.MustCompile(`^\d{5}(\.\d+)?$`)
)

// parseNumber reads amounts such as "1,234.50", "S/ 5000" or "1.234,5".
// Blank cells read as zero. Unparseable or negative values read as zero
// with ok=false.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	s = numberJunk.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	case hasComma:
		last := s[strings.LastIndex(s, ",")+1:]
		if len(last) == 3 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// normalizePeriodCell trims the cell and turns spreadsheet date serials
// into "YYYY-MM". Every other spelling is left as found.
func normalizePeriodCell(s string) string {
	s = strings.TrimSpace(s)
	if !serialPeriod.MatchString(s) {
		return s
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 20000 || v > 80000 {
		return s
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return s
	}
	return t.Format("2006-01")
}

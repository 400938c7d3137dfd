package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/example/wordquiz/internal/database"
	"github.com/example/wordquiz/pkg/models"
)

// Format of an import file
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromFilename picks the format by file extension; anything but .csv is read as a workbook
func FormatFromFilename(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// maxTopicName mirrors the topics.name column size
const maxTopicName = 32

// ImportConfig defines the import configuration
type ImportConfig struct {
	OriginColumn string // Column with the origin word
	TargetColumn string // Column with the translation
	TopicColumn  string // Column with the topic name
	SheetName    string // Sheet to import, first sheet when empty
	StartRow     int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		OriginColumn: "A",
		TargetColumn: "B",
		TopicColumn:  "C",
		StartRow:     2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	TopicsCreated  int      `json:"topics_created"`
	Created        int      `json:"created"`
	Linked         int      `json:"linked"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

// Importer loads word lists into topics
type Importer struct {
	topics *database.TopicRepository
	words  *database.WordRepository
	logger *slog.Logger
}

// NewImporter creates an importer writing through db
func NewImporter(db sqlx.ExtContext, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		topics: database.NewTopicRepository(db),
		words:  database.NewWordRepository(db),
		logger: logger,
	}
}

type columns struct {
	origin, target, topic int // 0-based
}

// ImportWords reads rows of origin, target and topic from r. Bad rows are reported in
// the result and do not stop the import; only unreadable input is an error.
func (im *Importer) ImportWords(ctx context.Context, r io.Reader, format Format, cfg ImportConfig) (*ImportResult, error) {
	cols, err := resolveColumns(cfg)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readWorkbook(r, cfg.SheetName)
	default:
		err = errors.Errorf("unsupported import format %q", format)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	topicIDs := make(map[string]int64)

	for i, row := range rows {
		if i < cfg.StartRow-1 || isBlank(row) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.TotalProcessed++
		if err := im.processRow(ctx, row, cols, topicIDs, result); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	im.logger.Info("words imported",
		"processed", result.TotalProcessed, "created", result.Created,
		"linked", result.Linked, "topics_created", result.TopicsCreated, "errors", len(result.Errors))
	return result, nil
}

func (im *Importer) processRow(ctx context.Context, row []string, cols columns, topicIDs map[string]int64, result *ImportResult) error {
	origin := cell(row, cols.origin)
	target := cell(row, cols.target)
	topicName := cell(row, cols.topic)
	if origin == "" || target == "" || topicName == "" {
		return errors.New("origin, target and topic are required")
	}

	topicID, err := im.topicID(ctx, topicName, topicIDs, result)
	if err != nil {
		return err
	}

	word, err := im.words.GetByOrigin(ctx, origin)
	switch {
	case errors.Is(err, models.ErrNotFound):
		word = &models.Word{Origin: origin, Target: target}
		if err := im.words.Create(ctx, word); err != nil {
			if database.IsUniqueViolation(err) {
				return errors.Errorf("translation %q is already used by another word", target)
			}
			return err
		}
		result.Created++
	case err != nil:
		return err
	case word.Target != target:
		return errors.Errorf("word %q already exists with translation %q", origin, word.Target)
	}

	added, err := im.topics.AddWord(ctx, topicID, word.ID)
	if err != nil {
		return err
	}
	if added {
		result.Linked++
	} else {
		result.Skipped++
	}
	return nil
}

func (im *Importer) topicID(ctx context.Context, name string, cache map[string]int64, result *ImportResult) (int64, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}
	if utf8.RuneCountInString(name) > maxTopicName {
		return 0, errors.Errorf("topic name %q is longer than %d characters", name, maxTopicName)
	}

	topic, err := im.topics.GetByName(ctx, name)
	if errors.Is(err, models.ErrNotFound) {
		topic = &models.Topic{Name: name}
		if err := im.topics.Create(ctx, topic); err != nil {
			return 0, err
		}
		result.TopicsCreated++
	} else if err != nil {
		return 0, err
	}

	cache[key] = topic.ID
	return topic.ID, nil
}

func resolveColumns(cfg ImportConfig) (columns, error) {
	var cols columns
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{cfg.OriginColumn, &cols.origin},
		{cfg.TargetColumn, &cols.target},
		{cfg.TopicColumn, &cols.topic},
	} {
		n, err := excelize.ColumnNameToNumber(c.name)
		if err != nil {
			return cols, errors.Wrapf(err, "invalid column %q", c.name)
		}
		*c.dst = n - 1
	}
	return cols, nil
}

func readWorkbook(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get rows of sheet %q", sheet)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/drillbot/internal/database"
	"github.com/example/drillbot/pkg/logger"
	"github.com/example/drillbot/pkg/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrSourceMissing is returned when the bank is empty and there is no file to import
var ErrSourceMissing = errors.New("question bank file not found")

// ErrNoValidRows is returned when the bank file has no importable question
var ErrNoValidRows = errors.New("question bank file has no valid rows")

// Columns expected in the header row
const (
	ColumnChapter = "chapter"
	ColumnType    = "q_type"
	ColumnText    = "text"
	ColumnOptions = "options"
	ColumnAnswer  = "answer"
)

var requiredColumns = []string{ColumnChapter, ColumnType, ColumnText, ColumnAnswer}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath  string // .xlsx, .csv, .yaml or .yml
	SheetName string // xlsx only; empty means the first sheet
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
	// Existing is the bank size when the import was not needed
	Existing int
}

// questionStore is the part of the question repository the importer needs
type questionStore interface {
	Count(ctx context.Context) (int, error)
	CreateBatch(ctx context.Context, questions []models.Question) error
}

var _ questionStore = (*database.QuestionRepository)(nil)

// ImportIfEmpty loads the bank file when the questions table is empty.
// All rows go in one transaction, so a database failure leaves the bank empty.
func ImportIfEmpty(ctx context.Context, repo questionStore, config ImportConfig) (*ImportResult, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return &ImportResult{Existing: n, Errors: make([]string, 0)}, nil
	}

	if _, err := os.Stat(config.FilePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, config.FilePath)
		}
		return nil, fmt.Errorf("failed to stat %s: %v", config.FilePath, err)
	}

	questions, result, err := ReadQuestions(config)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		for _, e := range result.Errors {
			logger.Log.Warn("import row skipped", zap.String("reason", e))
		}
		return result, fmt.Errorf("%w: %s (%d rows skipped)", ErrNoValidRows, config.FilePath, result.Skipped)
	}
	if err := repo.CreateBatch(ctx, questions); err != nil {
		return nil, err
	}
	result.Created = len(questions)

	logger.Log.Info("question bank imported",
		zap.String("file", config.FilePath),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped))
	for _, e := range result.Errors {
		logger.Log.Warn("import row skipped", zap.String("reason", e))
	}
	return result, nil
}

// ReadQuestions parses the bank file without touching the database
func ReadQuestions(config ImportConfig) ([]models.Question, *ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(config.FilePath)); ext {
	case ".csv":
		rows, err = readCSV(config.FilePath)
	case ".yaml", ".yml":
		rows, err = readYAML(config.FilePath)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(config.FilePath, config.SheetName)
	default:
		return nil, nil, fmt.Errorf("unsupported bank format %q", ext)
	}
	if err != nil {
		return nil, nil, err
	}
	return parseRows(rows)
}

// readExcel reads all rows from the sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

// readCSV reads all records, tolerating ragged rows
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// yamlRow is one question in a YAML bank. Options may be a list or a delimited string.
type yamlRow struct {
	Chapter string      `yaml:"chapter"`
	Type    string      `yaml:"q_type"`
	Text    string      `yaml:"text"`
	Options yamlOptions `yaml:"options"`
	Answer  string      `yaml:"answer"`
}

type yamlOptions []string

func (o *yamlOptions) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "" {
			*o = nil
			return nil
		}
		*o = strings.Split(node.Value, models.OptionDelimiter)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*o = list
	return nil
}

// readYAML turns a YAML list of questions into header plus rows
func readYAML(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open YAML file: %v", err)
	}
	defer file.Close()

	var items []yamlRow
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&items); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode YAML bank: %v", err)
	}

	rows := [][]string{{ColumnChapter, ColumnType, ColumnText, ColumnOptions, ColumnAnswer}}
	for _, it := range items {
		rows = append(rows, []string{
			it.Chapter, it.Type, it.Text,
			strings.Join(it.Options, models.OptionDelimiter), it.Answer,
		})
	}
	return rows, nil
}

// parseRows maps the header and converts data rows. Bad rows are skipped and reported.
func parseRows(rows [][]string) ([]models.Question, *ImportResult, error) {
	result := &ImportResult{Errors: make([]string, 0)}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("bank file has no header row")
	}

	header := make(map[string]int)
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			return nil, nil, fmt.Errorf("bank file is missing column %q", col)
		}
	}

	cell := func(row []string, col string) string {
		idx, ok := header[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	questions := make([]models.Question, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}
		result.TotalProcessed++

		q, err := buildQuestion(
			cell(row, ColumnChapter), cell(row, ColumnType), cell(row, ColumnText),
			cell(row, ColumnOptions), cell(row, ColumnAnswer))
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		questions = append(questions, q)
	}
	return questions, result, nil
}

func buildQuestion(chapter, qType, text, options, answer string) (models.Question, error) {
	t, err := models.ParseQuestionType(qType)
	if err != nil {
		return models.Question{}, err
	}
	if text == "" {
		return models.Question{}, fmt.Errorf("text cannot be empty")
	}
	if answer == "" {
		return models.Question{}, fmt.Errorf("answer cannot be empty")
	}
	if t.IsChoice() && options == "" {
		return models.Question{}, fmt.Errorf("%s question has no options", t)
	}
	return models.Question{
		Chapter: chapter,
		Type:    t,
		Text:    text,
		Options: options,
		Answer:  answer,
	}, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"modelgate/domain/outcome"
	"modelgate/ports"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Expected column headers, case-insensitive
const (
	columnGroundTruth = "ground_truth"
	columnPrediction  = "prediction"
	columnScore       = "score"
)

// OutcomeReader implements ports.OutcomeSource over Excel and CSV files.
// Files carry one labeled decision per row with ground_truth and prediction
// columns plus an optional continuous score column.
type OutcomeReader struct {
	logger *zap.Logger
}

// NewOutcomeReader creates a file-backed outcome source
func NewOutcomeReader(logger *zap.Logger) *OutcomeReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutcomeReader{logger: logger}
}

// ResolveOutcomes reads labeled outcomes from the file named by req.Source.
// Rows with unparseable labels are skipped and counted, not fatal; upstream
// filtering of unresolved ground truth is assumed to have happened already.
func (r *OutcomeReader) ResolveOutcomes(ctx context.Context, req ports.OutcomeRequest) (*outcome.LabelSet, error) {
	if _, err := os.Stat(req.Source); os.IsNotExist(err) {
		return nil, fmt.Errorf("outcome file not found: %s", req.Source)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(req.Source)) {
	case ".csv":
		rows, err = readCSVRows(req.Source)
	case ".xlsx":
		rows, err = readExcelRows(req.Source)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(req.Source))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("outcome file must have a header row and at least one data row")
	}

	truthCol, predCol, scoreCol, err := locateColumns(rows[0])
	if err != nil {
		return nil, err
	}
	withScores := req.WithScores && scoreCol >= 0

	var truth, predicted []bool
	var scores []float64
	skipped := 0

	for i := 1; i < len(rows); i++ {
		if req.Limit > 0 && len(truth) >= req.Limit {
			break
		}
		row := rows[i]
		if truthCol >= len(row) || predCol >= len(row) {
			skipped++
			continue
		}

		truthVal, ok1 := parseLabel(row[truthCol])
		predVal, ok2 := parseLabel(row[predCol])
		if !ok1 || !ok2 {
			skipped++
			continue
		}

		var scoreVal float64
		if withScores {
			if scoreCol >= len(row) {
				skipped++
				continue
			}
			scoreVal, err = strconv.ParseFloat(strings.TrimSpace(row[scoreCol]), 64)
			if err != nil {
				skipped++
				continue
			}
		}

		truth = append(truth, truthVal)
		predicted = append(predicted, predVal)
		if withScores {
			scores = append(scores, scoreVal)
		}
	}

	if skipped > 0 {
		r.logger.Warn("outcome_rows_skipped",
			zap.String("source", req.Source),
			zap.Int("skipped", skipped),
			zap.Int("kept", len(truth)),
		)
	}
	r.logger.Info("outcomes_resolved",
		zap.String("source", req.Source),
		zap.Int("rows", len(truth)),
		zap.Bool("with_scores", withScores),
	)

	if !withScores {
		scores = nil
	}
	return outcome.NewLabelSet(truth, predicted, scores)
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

func locateColumns(header []string) (truthCol, predCol, scoreCol int, err error) {
	truthCol, predCol, scoreCol = -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case columnGroundTruth:
			truthCol = i
		case columnPrediction:
			predCol = i
		case columnScore:
			scoreCol = i
		}
	}
	if truthCol < 0 || predCol < 0 {
		return 0, 0, 0, fmt.Errorf("outcome file requires %q and %q columns", columnGroundTruth, columnPrediction)
	}
	return truthCol, predCol, scoreCol, nil
}

// parseLabel accepts 1/0, true/false, yes/no in any case
func parseLabel(cell string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "1", "true", "t", "yes", "y":
		return true, true
	case "0", "false", "f", "no", "n":
		return false, true
	default:
		return false, false
	}
}

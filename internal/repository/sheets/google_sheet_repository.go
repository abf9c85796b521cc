package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/mealledger/internal/config"
)

// Repository is the tab-oriented view of a spreadsheet used by exporters.
// Rows are addressed by tab name; column spans are derived from the data.
type Repository interface {
	// AppendRows adds rows below the last filled row of the tab.
	AppendRows(ctx context.Context, tab string, rows [][]interface{}) error
	// HasRowWithPrefix reports whether any row of the tab starts with the
	// given cells, compared as displayed text.
	HasRowWithPrefix(ctx context.Context, tab string, prefix ...string) (bool, error)
}

// GoogleSheetRepository is a Repository over one spreadsheet of the Sheets API.
type GoogleSheetRepository struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository authenticates with the service account file and
// binds the configured spreadsheet.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets: init client: %w", err)
	}

	return &GoogleSheetRepository{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRows writes rows as raw values so month keys like 2024-05 stay text.
func (r *GoogleSheetRepository) AppendRows(ctx context.Context, tab string, rows [][]interface{}) error {
	width := widest(rows)
	if width == 0 {
		return nil
	}
	a1, err := tabRange(tab, width)
	if err != nil {
		return err
	}

	resp, err := r.values.Append(r.spreadsheetID, a1, &sheetsapi.ValueRange{MajorDimension: "ROWS", Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", a1, err)
	}

	updated := int64(len(rows))
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRows
	}
	r.logger.Debug("sheet rows appended", zap.String("range", a1), zap.Int64("rows", updated))
	return nil
}

// HasRowWithPrefix reads only the prefix columns of the tab.
func (r *GoogleSheetRepository) HasRowWithPrefix(ctx context.Context, tab string, prefix ...string) (bool, error) {
	a1, err := tabRange(tab, len(prefix))
	if err != nil {
		return false, err
	}

	resp, err := r.values.Get(r.spreadsheetID, a1).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("sheets: read %s: %w", a1, err)
	}

	for _, row := range resp.Values {
		if rowHasPrefix(row, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func rowHasPrefix(row []interface{}, prefix []string) bool {
	if len(prefix) == 0 || len(row) < len(prefix) {
		return false
	}
	for i, want := range prefix {
		if strings.TrimSpace(fmt.Sprint(row[i])) != want {
			return false
		}
	}
	return true
}

// tabRange spans columns A through the width-th column of the tab.
func tabRange(tab string, width int) (string, error) {
	if strings.TrimSpace(tab) == "" {
		return "", fmt.Errorf("sheets: tab name is required")
	}
	if width < 1 {
		return "", fmt.Errorf("sheets: range width must be positive")
	}
	name := tab
	if strings.ContainsAny(tab, " '!") {
		name = "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	}
	return fmt.Sprintf("%s!A:%s", name, columnLetter(width)), nil
}

// columnLetter maps 1 to A and 27 to AA.
func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func widest(rows [][]interface{}) int {
	w := 0
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/service/rollup"
)

type fakeRepository struct {
	existing [][]interface{}
	written  map[string][][]interface{}
	readErr  error
}

func (f *fakeRepository) AppendRows(_ context.Context, tab string, rows [][]interface{}) error {
	if f.written == nil {
		f.written = make(map[string][][]interface{})
	}
	f.written[tab] = append(f.written[tab], rows...)
	return nil
}

func (f *fakeRepository) HasRowWithPrefix(_ context.Context, _ string, prefix ...string) (bool, error) {
	if f.readErr != nil {
		return false, f.readErr
	}
	for _, row := range f.existing {
		if rowHasPrefix(row, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func sampleRollup() rollup.Rollup {
	return rollup.Compute("org-a", []models.StockLedgerEntry{
		{Date: "2024-04-28", ItemID: models.ItemRice, Quantity: 20, Type: models.EntryIn},
		{Date: "2024-05-15", ItemID: models.ItemRice, Quantity: 5, Type: models.EntryOut},
		{Date: "2024-05-16", ItemID: models.ItemDal, Quantity: 1, Type: models.EntryOut},
	}, "2024-05", models.StockedItems())
}

func TestExportRollupWritesOneRowPerItem(t *testing.T) {
	repo := &fakeRepository{existing: [][]interface{}{{"month", "organizer"}, {"2024-04", "org-a"}}}
	exporter := NewRollupExporter(repo, nil)

	written, err := exporter.ExportRollup(context.Background(), sampleRollup(), "Govt Primary School")
	require.NoError(t, err)
	assert.True(t, written)

	rows := repo.written[rollupTab]
	require.Len(t, rows, len(models.StockedItems()))
	assert.Equal(t, []interface{}{"2024-05", "org-a", "Govt Primary School", "Rice", "kg", 20.0, 0.0, 5.0, 15.0, 0}, rows[0])
	assert.Equal(t, []interface{}{"2024-05", "org-a", "Govt Primary School", "Dal", "kg", 0.0, 0.0, 1.0, 0.0, 1}, rows[1])
}

func TestExportRollupSkipsAlreadyExportedMonth(t *testing.T) {
	repo := &fakeRepository{existing: [][]interface{}{{"2024-05", "org-a"}}}
	exporter := NewRollupExporter(repo, nil)

	written, err := exporter.ExportRollup(context.Background(), sampleRollup(), "Govt Primary School")
	require.NoError(t, err)

	assert.False(t, written)
	assert.Empty(t, repo.written)
}

func TestExportRollupReadFailure(t *testing.T) {
	repo := &fakeRepository{readErr: errors.New("permission denied")}
	exporter := NewRollupExporter(repo, nil)

	_, err := exporter.ExportRollup(context.Background(), sampleRollup(), "")

	require.Error(t, err)
	assert.Empty(t, repo.written)
}

package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/mealledger/internal/domain/models"
)

func quantityOf(calc Calculation, itemID string) float64 {
	for _, ic := range calc.Items {
		if ic.ItemID == itemID {
			return ic.Quantity
		}
	}
	return -1
}

func TestComputeRiceForPrimaryAttendance(t *testing.T) {
	config := models.PortionConfig{RiceGrams: 100}

	calc := Compute(config, NewSelection(models.ItemRice), 50)

	assert.Equal(t, 5.0, quantityOf(calc, models.ItemRice))
	require.Len(t, calc.ItemsUsed, 1)
	assert.Equal(t, models.ItemUsage{ItemID: models.ItemRice, Quantity: 5.0}, calc.ItemsUsed[0])
}

func TestComputeMatchesRateTimesAttendance(t *testing.T) {
	table := models.DefaultPricingTable()
	for _, tier := range models.SchoolTypes() {
		config := table[tier]
		for _, n := range []int{1, 7, 33, 250, 1001} {
			calc := Compute(config, NewSelection(), n)
			for _, item := range models.StockItems() {
				rate, ok := config.Rate(item.ID)
				require.True(t, ok)

				want := rate * float64(n)
				if item.Stocked {
					want = rate * float64(n) / 1000
				}
				assert.Equal(t, want, quantityOf(calc, item.ID), "tier %s item %s n %d", tier, item.ID, n)
			}
		}
	}
}

func TestComputeCostBreakdown(t *testing.T) {
	config := models.DefaultPricingTable()[models.SchoolPrimary]

	calc := Compute(config, NewSelection(), 50)

	assert.Equal(t, models.CostBreakdown{Veg: 125, Grocery: 75, Gas: 50}, calc.CostBreakdown)
	assert.Equal(t, 250.0, calc.TotalCost)
	assert.Equal(t, calc.CostBreakdown.Total(), calc.TotalCost)
}

func TestComputeSkipsDeselectedItems(t *testing.T) {
	config := models.DefaultPricingTable()[models.SchoolPrimary]

	calc := Compute(config, NewSelection(models.ItemDal, models.ItemGas), 40)

	assert.Equal(t, 0.0, quantityOf(calc, models.ItemRice))
	assert.Equal(t, 0.6, quantityOf(calc, models.ItemDal))
	assert.Equal(t, models.CostBreakdown{Gas: 40}, calc.CostBreakdown)
	assert.Equal(t, 40.0, calc.TotalCost)
	assert.Equal(t, []models.ItemUsage{{ItemID: models.ItemDal, Quantity: 0.6}}, calc.ItemsUsed)
}

func TestComputeExcludesPricedAndZeroItemsFromUsage(t *testing.T) {
	config := models.DefaultPricingTable()[models.SchoolPrimary]
	config.ChickpeasGrams = 0

	calc := Compute(config, NewSelection(), 10)

	ids := make([]string, 0, len(calc.ItemsUsed))
	for _, u := range calc.ItemsUsed {
		ids = append(ids, u.ItemID)
	}
	assert.Equal(t, []string{models.ItemRice, models.ItemDal, models.ItemOil, models.ItemGreenBeans}, ids)
}

func TestComputeZeroAttendanceRecordsNothing(t *testing.T) {
	calc := Compute(models.DefaultPricingTable()[models.SchoolMiddle], NewSelection(), 0)

	assert.Empty(t, calc.ItemsUsed)
	assert.Zero(t, calc.TotalCost)
}

func TestSelectionIDsFollowCatalogOrder(t *testing.T) {
	sel := NewSelection(models.ItemGas, models.ItemRice, models.ItemOil)

	assert.Equal(t, []string{models.ItemRice, models.ItemOil, models.ItemGas}, sel.IDs())
	assert.Len(t, NewSelection().IDs(), 8)
}

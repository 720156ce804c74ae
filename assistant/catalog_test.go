package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogByID(t *testing.T) {
	c := NewCatalog(nil)

	uc, err := c.ByID(UseCaseTravelTime)
	require.NoError(t, err)
	assert.Equal(t, "Traveltime", uc.Description)
	assert.Equal(t, []FieldName{FieldTransportMedium, FieldStartLocation, FieldDestLocation}, uc.RequiredFields)

	_, err = c.ByID(UseCaseID(42))
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, UseCaseID(42), notFound.ID)
}

func TestCatalogAllKeepsDeclaredOrder(t *testing.T) {
	c := NewCatalog(nil)
	all := c.All()
	require.Len(t, all, 8)
	assert.Equal(t, UseCaseStocks, all[0].ID)
	assert.Equal(t, UseCaseFlightInfo, all[7].ID)
}

func TestCatalogDescriptionsUnique(t *testing.T) {
	c := NewCatalog(nil)
	seen := map[string]bool{}
	for _, uc := range c.All() {
		assert.False(t, seen[uc.Description], "duplicate description %q", uc.Description)
		seen[uc.Description] = true
	}
}

func TestRequiredFieldsForUnion(t *testing.T) {
	c := NewCatalog(nil)

	fields := c.RequiredFieldsFor([]UseCaseID{UseCaseStocks, UseCaseNews, UseCaseWeather})
	assert.Equal(t, map[FieldName]struct{}{
		FieldStockName: {},
		FieldNewsTopic: {},
		FieldCity:      {},
	}, fields)

	// Unknown ids are skipped, input order does not matter.
	reversed := c.RequiredFieldsFor([]UseCaseID{UseCaseWeather, UseCaseID(99), UseCaseNews, UseCaseStocks})
	assert.Equal(t, fields, reversed)

	assert.Empty(t, c.RequiredFieldsFor(nil))
}

func TestRequiredFieldsForDeduplicates(t *testing.T) {
	c := NewCatalog(nil)

	fields := c.RequiredFieldsFor([]UseCaseID{UseCaseWeather, UseCaseWeather})
	assert.Len(t, fields, 1)
}

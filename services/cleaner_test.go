package services

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertyedge/models"
	"propertyedge/utils"
)

func newTestLogger() *utils.Logger {
	return utils.NewLoggerWithOptions(utils.LoggerOptions{Writer: io.Discard, NoColor: true})
}

func TestCleanerParseMoney(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{"£325,000", intPtr(325000)},
		{"350000", intPtr(350000)},
		{"Guide Price £ 1,250,000", intPtr(1250000)},
		{"", nil},
		{"POA", nil},
		{"£0", nil},
	}

	for _, tt := range tests {
		got := parseMoney(tt.raw)
		if tt.want == nil {
			if got != nil {
				t.Errorf("parseMoney(%q) = %d; want absent", tt.raw, *got)
			}
			continue
		}
		if got == nil || *got != *tt.want {
			t.Errorf("parseMoney(%q) = %v; want %d", tt.raw, got, *tt.want)
		}
	}
}

func TestCleanerParseNumbers(t *testing.T) {
	assert.Equal(t, 3, *parseInt("3"))
	assert.Equal(t, 2, *parseInt("2 bedrooms"))
	assert.Equal(t, 0, *parseInt("0"), "a studio has zero bedrooms, not an unknown count")
	assert.Nil(t, parseInt("Ask agent"))

	assert.Equal(t, 72.5, *parsePositiveFloat("72.5"))
	assert.Equal(t, 1001.0, *parsePositiveFloat("1,001 sq ft"))
	assert.Nil(t, parsePositiveFloat("0"))
	assert.Nil(t, parsePositiveFloat(""))
}

func TestCleanerClean(t *testing.T) {
	c := NewCleaner(newTestLogger())
	facts := c.Clean(&models.RawListing{
		URL:          " https://www.rightmove.co.uk/properties/1 ",
		PropertyID:   "1",
		Address:      "  12   Example Road,\n London ",
		Postcode:     "SW1A 1AA",
		Price:        "£350,000",
		Bedrooms:     "2",
		Bathrooms:    "",
		PropertyType: "Flat",
		Tenure:       "LEASEHOLD",
		FloorArea:    "72.5",
		EPCRating:    " c ",
		KeyFeatures:  []string{" Balcony ", "", "Close to   station"},
	})
	require.NotNil(t, facts)

	assert.Equal(t, "https://www.rightmove.co.uk/properties/1", facts.URL)
	assert.Equal(t, "12 Example Road, London", *facts.Address)
	assert.Equal(t, 350000, *facts.Price)
	assert.Equal(t, 2, *facts.Bedrooms)
	assert.Nil(t, facts.Bathrooms)
	assert.Equal(t, "C", *facts.EPCRating)
	assert.Equal(t, 72.5, *facts.FloorAreaSqm)
	assert.Equal(t, 780.0, *facts.FloorAreaSqft, "72.5 / 0.092903 ≈ 780.4")
	assert.Equal(t, []string{"Balcony", "Close to station"}, facts.KeyFeatures)
}

func TestCleanerFloorAreaFromFeatures(t *testing.T) {
	c := NewCleaner(newTestLogger())
	facts := c.Clean(&models.RawListing{
		PropertyID:  "2",
		KeyFeatures: []string{"Three bedrooms", "Approx. 1001 sq ft", "Garden"},
	})

	require.NotNil(t, facts.FloorAreaSqft)
	assert.Equal(t, 1001.0, *facts.FloorAreaSqft)
	assert.Equal(t, 93.0, *facts.FloorAreaSqm, "1001 × 0.092903 = 92.996 → 93.00")
	assert.Nil(t, facts.Price)
	assert.Nil(t, facts.Tenure)
}

func TestCleanerNoFloorArea(t *testing.T) {
	c := NewCleaner(newTestLogger())
	facts := c.Clean(&models.RawListing{KeyFeatures: []string{"Garage", "Sqft unknown"}})
	assert.Nil(t, facts.FloorAreaSqm)
	assert.Nil(t, facts.FloorAreaSqft)
	assert.Len(t, facts.KeyFeatures, 2)
}

func TestCleanerNilInput(t *testing.T) {
	assert.Nil(t, NewCleaner(newTestLogger()).Clean(nil))
}

func intPtr(v int) *int { return &v }

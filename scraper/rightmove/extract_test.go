package rightmove

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingURL = "https://www.rightmove.co.uk/properties/123456789#/?channel=RES_BUY"

const nextDataPage = `<!doctype html>
<html><head>
<script type="application/ld+json">{ not json </script>
<script type="application/ld+json">
[{"@type": "Residence", "name": "2 bed flat for sale",
  "offers": {"price": 350000, "priceCurrency": "GBP"},
  "address": {"streetAddress": "12 Example Road", "addressLocality": "London", "postalCode": "SW1A 1AA"}}]
</script>
<script id="__NEXT_DATA__" type="application/json">
{"props": {"pageProps": {"propertyData": {
  "bedrooms": 2, "bathroomCount": 1, "propertyType": "Flat",
  "tenure": {"tenureType": "LEASEHOLD"},
  "floorArea": {"value": 72.5},
  "epc": {"rating": "c"},
  "keyFeatures": ["Balcony", "", "Lift", 7]
}}}}
</script>
</head><body><div data-testid="price">£1</div></body></html>`

func TestExtractFromJSONLDAndNextData(t *testing.T) {
	raw, err := Extract(nextDataPage, listingURL)
	require.NoError(t, err)

	assert.Equal(t, listingURL, raw.URL)
	assert.Equal(t, "123456789", raw.PropertyID)
	assert.Equal(t, "350000", raw.Price, "JSON-LD price beats the visible price")
	assert.Equal(t, "SW1A 1AA", raw.Postcode)
	assert.Equal(t, "12 Example Road, London, SW1A 1AA", raw.Address)
	assert.Equal(t, "2", raw.Bedrooms)
	assert.Equal(t, "1", raw.Bathrooms)
	assert.Equal(t, "Flat", raw.PropertyType, "page data type beats the JSON-LD @type hint")
	assert.Equal(t, "LEASEHOLD", raw.Tenure)
	assert.Equal(t, "72.5", raw.FloorArea)
	assert.Equal(t, "c", raw.EPCRating)
	assert.Equal(t, []string{"Balcony", "Lift", "7"}, raw.KeyFeatures)
}

const pageModelPage = `<html><head>
<script>
  window.PAGE_MODEL = {"propertyData": {
    "prices": {"primaryPrice": "£425,000"},
    "address": {"displayAddress": "Mill Lane, Leeds", "outcode": "LS1", "incode": "4AP"},
    "bedrooms": 3, "bathrooms": 2, "propertySubType": "Semi-Detached",
    "tenure": {"tenureType": "FREEHOLD"},
    "sizings": [{"unit": "sqft", "maximumSize": 1001}, {"unit": "sqm", "maximumSize": 93}],
    "keyFeatures": ["Garage", "Garden"]
  }};
  window.adInfo = {};
</script>
</head><body></body></html>`

func TestExtractFromPageModel(t *testing.T) {
	raw, err := Extract(pageModelPage, "https://www.rightmove.co.uk/properties/42")
	require.NoError(t, err)

	assert.Equal(t, "42", raw.PropertyID)
	assert.Equal(t, "£425,000", raw.Price)
	assert.Equal(t, "Mill Lane, Leeds", raw.Address)
	assert.Equal(t, "LS1 4AP", raw.Postcode)
	assert.Equal(t, "3", raw.Bedrooms)
	assert.Equal(t, "2", raw.Bathrooms)
	assert.Equal(t, "Semi-Detached", raw.PropertyType)
	assert.Equal(t, "FREEHOLD", raw.Tenure)
	assert.Equal(t, "93", raw.FloorArea)
	assert.Equal(t, []string{"Garage", "Garden"}, raw.KeyFeatures)
}

func TestExtractFallbacks(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{"@type": "Residence", "address": "not an object"}</script>
</head><body>
<div class="property-header-price"><strong>£ 299,950</strong> <small>Guide Price</small></div>
</body></html>`

	raw, err := Extract(page, "https://www.rightmove.co.uk/properties/7")
	require.NoError(t, err)
	assert.Equal(t, "£ 299,950 Guide Price", raw.Price)
	assert.Equal(t, "Residence", raw.PropertyType, "the @type hint is used when nothing else names a type")
	assert.Empty(t, raw.Postcode)
	assert.Empty(t, raw.Bedrooms)
	assert.Nil(t, raw.KeyFeatures)
}

func TestExtractEmptyPage(t *testing.T) {
	raw, err := Extract("", "https://www.rightmove.co.uk/properties/7")
	require.NoError(t, err)
	assert.Empty(t, raw.Price)
	assert.Empty(t, raw.PropertyType)
}

func TestExtractRequiresPropertyID(t *testing.T) {
	_, err := Extract(nextDataPage, "https://www.rightmove.co.uk/house-prices")
	assert.ErrorIs(t, err, ErrNoPropertyID)
}

func TestParsePropertyID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.rightmove.co.uk/properties/123456789", "123456789", false},
		{"https://www.rightmove.co.uk/properties/987?foo=1#/", "987", false},
		{"rightmove.co.uk/properties/12/34", "12", false},
		{"https://www.rightmove.co.uk/properties/", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePropertyID(tt.url)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrNoPropertyID, tt.url)
			continue
		}
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}
}

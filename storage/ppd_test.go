package storage

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostcodeSector(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SW1A 1AA", "SW1A 1"},
		{"sw1a1aa", "SW1A 1"},
		{"  M1 2AB ", "M1 2"},
		{"EC2R 8AH", "EC2R 8"},
		{"B33 8TH", "B33 8"},
		{"SW1A", "SW1A"},
		{"NOT A POSTCODE", "NOT"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PostcodeSector(tt.in), "PostcodeSector(%q)", tt.in)
	}
}

func TestLooksLikeFlat(t *testing.T) {
	assert.True(t, LooksLikeFlat("Flat"))
	assert.True(t, LooksLikeFlat("Ground floor Apartment"))
	assert.False(t, LooksLikeFlat("Semi-Detached"))
	assert.False(t, LooksLikeFlat(""))
}

func TestCompQueryCutoff(t *testing.T) {
	now := time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

	q := CompQuery{Months: 18}
	assert.Equal(t, time.Date(2025, 4, 22, 0, 0, 0, 0, time.UTC), q.Cutoff(now), "18 months is 540 days")

	assert.Equal(t, q.Cutoff(now), CompQuery{}.Cutoff(now), "zero months uses the default window")
}

const ppdSample = `"{A1}","320000","2026-05-02 00:00","SW1A 1AB","F","N","L","10","","HIGH STREET","","LONDON","WESTMINSTER","GREATER LONDON","A","A"
"{A2}","0","2026-05-03 00:00","SW1A 1AD","F","N","L","11","","HIGH STREET","","LONDON","WESTMINSTER","GREATER LONDON","A","A"
"{A3}","450000","2026-01-20 00:00","","T","N","F","4","","MAIN ROAD","","LONDON","WESTMINSTER","GREATER LONDON","A","A"
"{A4}","295000","2025-12-01 00:00","sw1a 1ae","S","N","F","2","","","","","WESTMINSTER","GREATER LONDON","A","A"
`

func TestPPDReader(t *testing.T) {
	r := NewPPDReader(strings.NewReader(ppdSample))

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "A1", first.TransactionID)
	assert.Equal(t, 320000, first.Price)
	assert.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "SW1A 1AB", first.Postcode)
	assert.Equal(t, PPDFlat, first.PropertyType)
	require.NotNil(t, first.Street)
	assert.Equal(t, "HIGH STREET", *first.Street)
	assert.Equal(t, "LONDON", *first.Town)

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "SW1A 1AE", second.Postcode)
	assert.Nil(t, second.Street)
	assert.Nil(t, second.Town)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, r.Skipped, "zero price and blank postcode are skipped")
}

func TestPPDReaderRejectsShortRows(t *testing.T) {
	r := NewPPDReader(strings.NewReader("a,b,c\n"))
	_, err := r.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestPPDReaderReadAllBatches(t *testing.T) {
	r := NewPPDReader(strings.NewReader(ppdSample))
	var sizes []int
	err := r.ReadAll(1, func(b []PPDSale) error {
		sizes = append(sizes, len(b))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, sizes)
}

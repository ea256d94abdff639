package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analysis "github.com/obrennan/moneybuckets"
)

func TestParseYearFlag(t *testing.T) {
	y, err := parseYearFlag("2024")
	require.NoError(t, err)
	assert.Equal(t, analysis.TaxYear(2024), y)

	y, err = parseYearFlag("")
	require.NoError(t, err)
	assert.Equal(t, analysis.TaxYearOf(analysis.Today()), y)

	_, err = parseYearFlag("twentytwo")
	assert.Error(t, err)
}

func TestParseBands(t *testing.T) {
	c := &taxCmd{allowance: 12570, bands: "37700=0.20,112570=0.40,=0.45"}
	bands, err := c.parseBands(2025)
	require.NoError(t, err)

	assert.Equal(t, analysis.TaxYear(2025), bands.Year)
	assert.True(t, bands.Allowance.Equal(analysis.M(12570, "GBP")), "allowance = %s", bands.Allowance)
	require.Len(t, bands.Bands, 3)
	assert.True(t, bands.Bands[0].UpTo.Equal(analysis.M(37700, "GBP")))
	assert.Equal(t, "0.2", bands.Bands[0].Rate.String())
	// an empty top means the band is unbounded
	assert.True(t, bands.Bands[2].UpTo.Equal(analysis.M(0, "GBP")))
	assert.Equal(t, "0.45", bands.Bands[2].Rate.String())
}

func TestParseBandsRejectsMalformedSpecs(t *testing.T) {
	tests := []string{
		"37700",          // no separator
		"37700=fast",     // bad rate
		"a lot=0.20",     // bad top
		"37700=0.20,,",   // empty pair
	}
	for _, spec := range tests {
		c := &taxCmd{allowance: 12570, bands: spec}
		_, err := c.parseBands(2025)
		assert.Error(t, err, "spec %q", spec)
	}
}

func TestDecodeLedgerFileMissing(t *testing.T) {
	old := *ledgerFile
	defer func() { *ledgerFile = old }()
	*ledgerFile = filepath.Join(t.TempDir(), "no-such.jsonl")

	ledger, err := DecodeLedgerFile()
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.Len())
}

func TestDecodePricesFileMissing(t *testing.T) {
	old := *pricesFile
	defer func() { *pricesFile = old }()
	*pricesFile = filepath.Join(t.TempDir(), "no-such.jsonl")

	table, err := DecodePricesFile()
	require.NoError(t, err)
	assert.Empty(t, table.Securities())
}

func TestDecodeLedgerFile(t *testing.T) {
	old := *ledgerFile
	defer func() { *ledgerFile = old }()
	path := filepath.Join(t.TempDir(), "transactions.jsonl")
	line := `{"date":"2023-05-01","category":"transfer","debit":"employer","credit":"current","amount":2500,"currency":"GBP"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(line), 0644))
	*ledgerFile = path

	ledger, err := DecodeLedgerFile()
	require.NoError(t, err)
	require.Equal(t, 1, ledger.Len())
}

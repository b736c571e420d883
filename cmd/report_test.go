package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billed/bill"
)

func TestParseCSVToBills(t *testing.T) {
	rows := [][]string{
		{"email", "type", "name", "amount", "date", "status"},
		{"employee@test.tld", "Transports", "vol", "348.50", "2023-01-01", "pending"},
		{"employee@test.tld", "Hôtel et logement", "nuitée", "120", "2023-01-02", "accepted"},
	}

	bills, err := ParseCSVToBills(rows)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, 348.50, bills[0].Amount)
	assert.Equal(t, bill.StatusAccepted, bills[1].Status)
}

func TestParseCSVToBillsRejectsBadRows(t *testing.T) {
	_, err := ParseCSVToBills([][]string{
		{"email", "type", "name", "amount", "date", "status"},
		{"employee@test.tld", "Transports", "vol"},
	})
	assert.Error(t, err)

	_, err = ParseCSVToBills([][]string{
		{"email", "type", "name", "amount", "date", "status"},
		{"employee@test.tld", "Transports", "vol", "beaucoup", "2023-01-01", "pending"},
	})
	assert.Error(t, err)

	_, err = ParseCSVToBills(nil)
	assert.Error(t, err)
}

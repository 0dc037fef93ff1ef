package widerow

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func dumpWithRow(key string, columns int) string {

	cols := make([]string, columns)
	for i := range cols {
		cols[i] = fmt.Sprintf(`["col%04d","value%04d",1400000000000]`, i, i)
	}

	return fmt.Sprintf(`{"key": "%s","columns": [%s]}`, hex.EncodeToString([]byte(key)), strings.Join(cols, ","))
}

func TestScanFlagsOnlyRowsOverThreshold(t *testing.T) {

	small := dumpWithRow("small", 2)
	wide := dumpWithRow("wide_row", 100)
	dump := "[" + small + "," + wide + "]"

	// between the two row sizes, so exactly one row is over
	threshold := int64(len(small) + 10)
	assert.Greater(t, int64(len(wide)), threshold)

	rows, gerr := Scan([]byte(dump), threshold)
	assert.Nil(t, gerr)
	assert.Len(t, rows, 1)
	assert.Equal(t, "wide_row", rows[0].Key)
	assert.Equal(t, int64(len(wide)), rows[0].Size)
	assert.Equal(t, 100, rows[0].Columns)
}

func TestScanBoundary(t *testing.T) {

	row := dumpWithRow("row", 1)
	dump := "[" + row + "]"

	// size equal to the threshold is not wide
	rows, gerr := Scan([]byte(dump), int64(len(row)))
	assert.Nil(t, gerr)
	assert.Empty(t, rows)

	rows, gerr = Scan([]byte(dump), int64(len(row))-1)
	assert.Nil(t, gerr)
	assert.Len(t, rows, 1)
}

func TestScanEmptyAndMalformed(t *testing.T) {

	rows, gerr := Scan([]byte("[]"), DefaultThreshold)
	assert.Nil(t, gerr)
	assert.Empty(t, rows)

	_, gerr = Scan([]byte("{not an array"), DefaultThreshold)
	assert.NotNil(t, gerr)
}

func TestDecodeKey(t *testing.T) {

	assert.Equal(t, "user:1234", DecodeKey(hex.EncodeToString([]byte("user:1234"))))

	// non printable bytes keep the hex form
	assert.Equal(t, "00ff01", DecodeKey("00ff01"))

	// not hex at all
	assert.Equal(t, "zzzz", DecodeKey("zzzz"))
}

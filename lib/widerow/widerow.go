package widerow

import (
	"encoding/hex"
	"net/http"
	"unicode"

	"github.com/buger/jsonparser"
	"github.com/uol/gobol"

	"github.com/casstools/casstools/lib/opserr"
)

//
// Wide row detection over sstable2json dumps. A dump is a JSON array of
// rows; the serialized size of a row element is a good proxy for its
// on-disk size, so rows whose element exceeds the threshold are flagged.
//

// DefaultThreshold - rows serialized beyond this many bytes are flagged
const DefaultThreshold = int64(64 * 1024 * 1024)

// Row - a wide row found in an sstable dump
type Row struct {
	Key     string `json:"key"`
	Size    int64  `json:"size"`
	Columns int    `json:"columns"`
}

// Scan - walks a sstable2json dump and returns the rows wider than the
// threshold, in input order
func Scan(data []byte, threshold int64) ([]Row, gobol.Error) {

	var rows []Row

	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, cbErr error) {

		size := int64(len(value))
		if size <= threshold {
			return
		}

		key, _ := jsonparser.GetString(value, "key")

		columns := 0
		jsonparser.ArrayEach(value, func(_ []byte, _ jsonparser.ValueType, _ int, _ error) {
			columns++
		}, "columns")

		rows = append(rows, Row{
			Key:     DecodeKey(key),
			Size:    size,
			Columns: columns,
		})
	})

	if err != nil {
		return nil, errParse("Scan", err)
	}

	return rows, nil
}

// DecodeKey - sstable2json prints partition keys hex encoded; decode when
// the bytes are printable, otherwise keep the hex form
func DecodeKey(key string) string {

	decoded, err := hex.DecodeString(key)
	if err != nil || len(decoded) == 0 {
		return key
	}

	for _, b := range decoded {
		if b > unicode.MaxASCII || !unicode.IsPrint(rune(b)) {
			return key
		}
	}

	return string(decoded)
}

func errParse(function string, err error) gobol.Error {
	return opserr.New(
		err,
		"malformed sstable2json input: "+err.Error(),
		"widerow",
		function,
		http.StatusBadRequest,
	)
}

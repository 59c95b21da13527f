package dataset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	apperrors "carmarket/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText decodes raw table bytes, trying UTF-8 first and then the
// legacy single-byte encodings these exports commonly ship in. Returns
// the decoded text and the name of the encoding that succeeded.
func decodeText(raw []byte) (string, string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), "utf-8", nil
	}

	fallbacks := []struct {
		name string
		cm   *charmap.Charmap
	}{
		{"windows-1252", charmap.Windows1252},
		{"iso-8859-1", charmap.ISO8859_1},
	}
	for _, fb := range fallbacks {
		decoded, err := fb.cm.NewDecoder().Bytes(raw)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded), fb.name, nil
		}
	}

	return "", "", apperrors.NewEncodingError("no supported encoding decodes the file", nil)
}

// readFrame loads a table file into a string-typed dataframe. CSV is
// the native format; .xlsx files are read from their first sheet.
func readFrame(path string) (dataframe.DataFrame, string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return dataframe.DataFrame{}, "", err
	}

	text, encoding, err := decodeText(raw)
	if err != nil {
		return dataframe.DataFrame{}, "", err
	}

	df := dataframe.ReadCSV(strings.NewReader(text),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String))
	if df.Err != nil {
		return dataframe.DataFrame{}, "", apperrors.NewParsingError(
			fmt.Sprintf("cannot parse %s", filepath.Base(path)), df.Err)
	}

	return df, encoding, nil
}

// readXLSX reads the first sheet of an Excel workbook into a
// string-typed dataframe.
func readXLSX(path string) (dataframe.DataFrame, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, "", err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, "", apperrors.NewParsingError(
			fmt.Sprintf("%s has no sheets", filepath.Base(path)), nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return dataframe.DataFrame{}, "", apperrors.NewParsingError(
			fmt.Sprintf("cannot read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, "", apperrors.NewParsingError(
			fmt.Sprintf("%s is empty", filepath.Base(path)), nil)
	}

	// excelize returns ragged rows; square them to the header width
	width := len(rows[0])
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
		rows[i] = rows[i][:width]
	}

	df := dataframe.LoadRecords(rows,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String))
	if df.Err != nil {
		return dataframe.DataFrame{}, "", apperrors.NewParsingError(
			fmt.Sprintf("cannot parse %s", filepath.Base(path)), df.Err)
	}

	return df, "xlsx", nil
}

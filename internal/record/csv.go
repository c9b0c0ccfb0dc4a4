package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ErrInputNotFound is returned when the row-set file for a forum and year
// does not exist.
var ErrInputNotFound = errors.New("row set not found")

// Write encodes rs as CSV with the fixed header.
func Write(w io.Writer, rs RowSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rs.Records {
		if err := cw.Write([]string{r.IsoDate(), r.Author, r.Title, r.Permalink}); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates or truncates path and writes rs to it.
func WriteFile(path string, rs RowSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create row set file: %w", err)
	}
	if err := Write(f, rs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a CSV row set. The header must match Header exactly.
func Read(r io.Reader) (RowSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return RowSet{}, fmt.Errorf("read header: empty file")
		}
		return RowSet{}, fmt.Errorf("read header: %w", err)
	}
	// Files written by spreadsheet tools sometimes carry a BOM.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if strings.Join(header, ",") != strings.Join(Header, ",") {
		return RowSet{}, fmt.Errorf("unexpected header %q", strings.Join(header, ","))
	}

	var rs RowSet
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return RowSet{}, fmt.Errorf("read row: %w", err)
		}

		ts, err := time.ParseInLocation(IsoDateLayout, row[0], time.UTC)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return RowSet{}, fmt.Errorf("line %d: invalid isodate %q", line, row[0])
		}

		rs.Append(Record{
			Timestamp: ts,
			Author:    row[1],
			Title:     row[2],
			Permalink: row[3],
		})
	}

	return rs, nil
}

// ReadFile reads the row set stored at path.
func ReadFile(path string) (RowSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RowSet{}, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return RowSet{}, fmt.Errorf("open row set file: %w", err)
	}
	defer f.Close()

	rs, err := Read(f)
	if err != nil {
		return RowSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Load reads the row set for forum and year from dir.
func Load(dir, forum string, year int) (RowSet, error) {
	return ReadFile(Path(dir, forum, year))
}

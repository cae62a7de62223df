package source

import (
	"fmt"
	"io"
	"strconv"

	"github.com/valyala/fastjson"

	"github.com/jittakal/xesgen/internal/errors"
)

var parserPool fastjson.ParserPool

// ReadJSON reads a JSON array of flat objects. The keys of the first object,
// in document order, form the header. Every later object must carry exactly
// those keys.
func ReadJSON(in io.Reader) (*Table, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read json: %w", err)
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse json: %w", errors.ErrMalformedInput, err)
	}
	items, err := v.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: json input must be an array of objects: %w", errors.ErrMalformedInput, err)
	}
	if len(items) == 0 {
		return nil, errors.ErrEmptyInput
	}

	first, err := items[0].Object()
	if err != nil {
		return nil, fmt.Errorf("%w: json record 1: %w", errors.ErrMalformedInput, err)
	}
	header := make([]string, 0, first.Len())
	first.Visit(func(key []byte, _ *fastjson.Value) {
		header = append(header, string(key))
	})

	rows := make([][]string, 0, len(items))
	for i, item := range items {
		obj, err := item.Object()
		if err != nil {
			return nil, fmt.Errorf("%w: json record %d: %w", errors.ErrMalformedInput, i+1, err)
		}
		if obj.Len() != len(header) {
			return nil, &errors.ArityError{Row: i + 1, Expected: len(header), Actual: obj.Len()}
		}

		row := make([]string, len(header))
		for j, key := range header {
			field := obj.Get(key)
			if field == nil {
				return nil, &errors.RowError{Row: i + 1, Err: fmt.Errorf("%w: missing field %q", errors.ErrMalformedInput, key)}
			}
			row[j] = fieldText(field)
		}
		rows = append(rows, row)
	}

	return &Table{Header: header, Rows: rows}, nil
}

// fieldText renders a JSON value the way it would appear in a CSV cell.
func fieldText(v *fastjson.Value) string {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNull:
		return ""
	case fastjson.TypeTrue:
		return strconv.FormatBool(true)
	case fastjson.TypeFalse:
		return strconv.FormatBool(false)
	default:
		return v.String()
	}
}

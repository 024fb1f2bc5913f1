package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/syssam/sqlcond/where"
)

// DecodeJSON decodes a JSON document. Numbers decode as json.Number, so
// large integers and decimals keep their exact text. An empty document
// decodes to nil.
func DecodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeJSON(dec)
	switch {
	case errors.Is(err, io.EOF):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("codec: decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("codec: decode json: unexpected data after the document")
	}
	return expand(v)
}

func decodeJSON(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '{':
		m := where.Map{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			v, err := decodeJSON(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			m = append(m, where.Pair{Key: kt.(string), Value: v})
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return m, nil
	case '[':
		l := []any{}
		for dec.More() {
			v, err := decodeJSON(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			l = append(l, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return l, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", d)
}

// unexpectedEOF turns an EOF inside a document into io.ErrUnexpectedEOF.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

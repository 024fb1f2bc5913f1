package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/sqlcond/where"
)

// DecodeMsgpack decodes one MessagePack value. Integers decode as int64 or
// uint64, and bin values as []byte.
func DecodeMsgpack(r io.Reader) (any, error) {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	dec.SetMapDecoder(decodeMap)
	v, err := dec.DecodeInterface()
	switch {
	case errors.Is(err, io.EOF):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("codec: decode msgpack: %w", err)
	}
	return expand(v)
}

// decodeMap decodes a map into a where.Map, keeping the encoded order.
func decodeMap(d *msgpack.Decoder) (any, error) {
	n, err := d.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	m := make(where.Map, 0, n)
	for i := 0; i < n; i++ {
		k, err := d.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("map key must be a string, got %T", k)
		}
		v, err := d.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		m = append(m, where.Pair{Key: key, Value: v})
	}
	return m, nil
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/syssam/sqlcond/where/codec"
)

// stdinName names the standard input in arguments and output.
const stdinName = "-"

// document is one decoded condition document.
type document struct {
	Name      string
	Condition any
}

// readDocuments decodes the named files, or the standard input when no file
// is given. An empty format selects the decoder by file extension.
func readDocuments(paths []string, format string, stdin io.Reader) ([]document, error) {
	if len(paths) == 0 {
		paths = []string{stdinName}
	}
	docs := make([]document, 0, len(paths))
	for _, p := range paths {
		doc, err := readDocument(p, format, stdin)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func readDocument(path, format string, stdin io.Reader) (document, error) {
	f := codec.FormatOf(path)
	if format != "" {
		var err error
		if f, err = codec.ParseFormat(format); err != nil {
			return document{}, err
		}
	}
	r := stdin
	if path != stdinName {
		file, err := os.Open(path)
		if err != nil {
			return document{}, err
		}
		defer file.Close()
		r = file
	}
	v, err := codec.Decode(r, f)
	if err != nil {
		return document{}, fmt.Errorf("%s: %w", path, err)
	}
	return document{Name: path, Condition: v}, nil
}

func conditions(docs []document) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = d.Condition
	}
	return out
}

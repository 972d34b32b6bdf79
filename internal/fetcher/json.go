package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/rotisserie/eris"
)

// ErrNotArray is returned when a body that should be a JSON array is not.
var ErrNotArray = eris.New("json: body is not an array")

// DecodeArray reads a top-level JSON array one element at a time and stops
// after max elements when max > 0, leaving the rest of the body unread. An
// empty body decodes as an empty array. A body cut off mid-array fails with
// io.ErrUnexpectedEOF and no partial result.
func DecodeArray[T any](ctx context.Context, r io.Reader, max int) ([]T, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "json: read array start")
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, eris.Wrapf(ErrNotArray, "json: body starts with %v", tok)
	}

	var out []T
	for dec.More() {
		if max > 0 && len(out) >= max {
			return out, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "json: decode array")
		}
		var item T
		if err := dec.Decode(&item); err != nil {
			return nil, eris.Wrapf(err, "json: decode element %d", len(out))
		}
		out = append(out, item)
	}

	if _, err := dec.Token(); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, eris.Wrap(err, "json: read array end")
	}
	return out, nil
}

// GetJSON downloads url and decodes the body as a single JSON value.
func GetJSON[T any](ctx context.Context, f Fetcher, url string) (*T, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	var v T
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		return nil, eris.Wrapf(err, "json: decode %s", url)
	}
	return &v, nil
}

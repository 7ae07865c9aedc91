package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// envelope is the reply shape shared by every backend endpoint.
type envelope[T any] struct {
	Message string          `json:"message"`
	Status  flexString      `json:"status"`
	Data    json.RawMessage `json:"data"`
}

// flexString accepts both "status": "200" and "status": 200.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// decodeData parses Data into T. An absent or null payload yields the zero value.
func (e envelope[T]) decodeData() (T, error) {
	var out T
	if len(e.Data) == 0 || bytes.Equal(e.Data, []byte("null")) {
		return out, nil
	}
	err := json.Unmarshal(e.Data, &out)
	return out, err
}

// decodeList parses Data as a list; anything that is not an array yields an empty list.
func decodeList[T any](e envelope[[]T]) ([]T, error) {
	trimmed := bytes.TrimSpace(e.Data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func statusCode(s flexString) int {
	n, _ := strconv.Atoi(string(s))
	return n
}

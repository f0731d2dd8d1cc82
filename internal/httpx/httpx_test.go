package httpx

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONRejectsUnknownAndTrailing(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(strings.NewReader(`{"name":"x"}`), &v))
	assert.Equal(t, "x", v.Name)

	assert.Error(t, DecodeJSON(strings.NewReader(`{"nope":1}`), &v))
	assert.Error(t, DecodeJSON(strings.NewReader(`{"name":"a"}{"name":"b"}`), &v))
}

func TestDecodeJSONMap(t *testing.T) {
	m, err := DecodeJSONMap(strings.NewReader(`{"doctorId": 12, "patientName": "Jane"}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("12"), m["doctorId"])
	assert.Equal(t, "Jane", m["patientName"])

	_, err = DecodeJSONMap(strings.NewReader(`null`))
	assert.Error(t, err)
	_, err = DecodeJSONMap(strings.NewReader(`[1]`))
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "abc"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}

func TestParseLimitOffset(t *testing.T) {
	limit, offset, err := ParseLimitOffset(url.Values{}, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(20), limit)
	assert.Equal(t, int64(0), offset)

	limit, offset, err = ParseLimitOffset(url.Values{"limit": {"500"}, "offset": {"10"}}, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), limit)
	assert.Equal(t, int64(10), offset)

	_, _, err = ParseLimitOffset(url.Values{"limit": {"0"}}, 20, 100)
	assert.Error(t, err)
	_, _, err = ParseLimitOffset(url.Values{"offset": {"-1"}}, 20, 100)
	assert.Error(t, err)
}

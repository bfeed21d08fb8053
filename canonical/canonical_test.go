package canonical

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseObject(t *testing.T, text string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var obj map[string]any
	require.NoError(t, dec.Decode(&obj))
	return obj
}

func TestMarshalSortsKeys(t *testing.T) {
	obj := parseObject(t, `{"b":2,"a":1}`)
	canon, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, string(canon))
}

func TestMarshalSortsNestedKeys(t *testing.T) {
	obj := parseObject(t, `{"outer":{"z":true,"a":[{"y":1,"x":2}]}}`)
	canon, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"outer":{"a":[{"x":2,"y":1}],"z":true}}`, string(canon))
}

func TestMarshalCompactAndUnescaped(t *testing.T) {
	obj := parseObject(t, `{"url":"https://example.com/?a=1&b=<2>","n":null}`)
	canon, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"n":null,"url":"https://example.com/?a=1&b=<2>"}`, string(canon))
}

func TestHashInvariantUnderKeyOrder(t *testing.T) {
	h1, err := Hash(parseObject(t, `{"a":1,"b":2}`))
	require.NoError(t, err)
	h2, err := Hash(parseObject(t, `{"b":2,"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestHashDistinguishesObjects(t *testing.T) {
	h1, err := Hash(parseObject(t, `{"a":1}`))
	require.NoError(t, err)
	h2, err := Hash(parseObject(t, `{"a":2}`))
	require.NoError(t, err)
	h3, err := Hash(parseObject(t, `{"b":1}`))
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.NotEqual(t, h2, h3)
}

func TestHashFormat(t *testing.T) {
	h, err := Hash(parseObject(t, `{"x":1}`))
	require.NoError(t, err)
	assert.Len(t, h, 64)
	assert.Equal(t, strings.ToLower(h), h)
}

func TestHashStableAcrossEquivalentFloatLiterals(t *testing.T) {
	h1, err := Hash(parseObject(t, `{"v":100.0}`))
	require.NoError(t, err)
	h2, err := Hash(parseObject(t, `{"v":1e2}`))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestMarshalRejectsNonJSONValue(t *testing.T) {
	_, err := Marshal(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

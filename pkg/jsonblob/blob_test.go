package jsonblob

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobMarshalRoundTrip(t *testing.T) {
	original := Blob{0x00, 0x01, 0xfe, 0xff}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Buffer","data":"AAH+/w=="}`, string(data))

	var decoded Blob
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestBlobBase64(t *testing.T) {
	assert.Equal(t, "aGVsbG8=", Blob("hello").Base64())
	assert.Equal(t, "", Blob(nil).Base64())
}

func TestBlobUnmarshalForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Blob
	}{
		{"tagged base64", `{"type":"Buffer","data":"aGVsbG8="}`, Blob("hello")},
		{"tagged byte array", `{"type":"Buffer","data":[104,101,108,108,111]}`, Blob("hello")},
		{"buffer flag with value", `{"buffer":true,"value":"aGVsbG8="}`, Blob("hello")},
		{"plain base64 string", `"aGVsbG8="`, Blob("hello")},
		{"empty data", `{"type":"Buffer","data":""}`, Blob{}},
		{"missing data", `{"type":"Buffer"}`, Blob{}},
		{"null", `null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Blob
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlobUnmarshalRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"untagged object", `{"data":"aGVsbG8="}`},
		{"bad base64", `{"type":"Buffer","data":"!!!"}`},
		{"byte out of range", `{"type":"Buffer","data":[300]}`},
		{"bool payload", `{"type":"Buffer","data":true}`},
		{"bad base64 string", `"!!!"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Blob
			assert.Error(t, json.Unmarshal([]byte(tt.input), &got))
		})
	}
}

func TestReviveNestedTree(t *testing.T) {
	input := `{
		"keyData": {"type": "Buffer", "data": "AQID"},
		"nested": {"list": [{"type": "Buffer", "data": [4, 5]}, "plain"]},
		"count": 2
	}`

	var tree interface{}
	require.NoError(t, json.Unmarshal([]byte(input), &tree))

	revived, ok := Revive(tree).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, Blob{1, 2, 3}, revived["keyData"])

	nested, ok := revived["nested"].(map[string]interface{})
	require.True(t, ok)
	list, ok := nested["list"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, Blob{4, 5}, list[0])
	assert.Equal(t, "plain", list[1])
	assert.Equal(t, float64(2), revived["count"])
}

func TestReviveLeavesPlainObjects(t *testing.T) {
	tree := map[string]interface{}{
		"type": "other",
		"data": "aGVsbG8=",
	}

	revived, ok := Revive(tree).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "other", revived["type"])
	assert.Equal(t, "aGVsbG8=", revived["data"])
}

func TestReviveThroughMarshal(t *testing.T) {
	original := map[string]interface{}{
		"public":  Blob{9, 8, 7},
		"label":   "noise",
		"keyList": []interface{}{Blob{1}, Blob{2}},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var tree interface{}
	require.NoError(t, json.Unmarshal(data, &tree))
	revived, ok := Revive(tree).(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, Blob{9, 8, 7}, revived["public"])
	assert.Equal(t, "noise", revived["label"])
	keyList, ok := revived["keyList"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, Blob{1}, keyList[0])
	assert.Equal(t, Blob{2}, keyList[1])
}

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringAcceptsTextAndScalars(t *testing.T) {
	cases := map[string]string{
		`"500 manna + salvage"`: "500 manna + salvage",
		`1200`:                  "1200",
		`12.5`:                  "12.5",
		`true`:                  "true",
		`null`:                  "",
	}
	for in, want := range cases {
		var f FlexString
		require.NoError(t, json.Unmarshal([]byte(in), &f), in)
		assert.Equal(t, want, f.String(), in)
	}
}

func TestFlexStringRejectsStructures(t *testing.T) {
	var f FlexString
	assert.Error(t, json.Unmarshal([]byte(`{"amount":1}`), &f))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &f))
}

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMapCloneCopiesNestedValues(t *testing.T) {
	var live JSONMap
	require.NoError(t, live.Scan([]byte(`{"city":"Guwahati","address":{"pin":"781001"},"tags":["fragile",{"lane":"A"}]}`)))

	snapshot := live.Clone()

	live["city"] = "Shillong"
	live["address"].(map[string]any)["pin"] = "793001"
	live["tags"].([]any)[0] = "bulk"
	live["tags"].([]any)[1].(map[string]any)["lane"] = "B"

	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.JSONEq(t, `{"city":"Guwahati","address":{"pin":"781001"},"tags":["fragile",{"lane":"A"}]}`, string(raw))
}

func TestJSONMapCloneNil(t *testing.T) {
	var empty JSONMap
	assert.Nil(t, empty.Clone())

	nested := JSONMap{"inner": JSONMap{"k": "v"}, "missing": nil}
	clone := nested.Clone()
	nested["inner"].(JSONMap)["k"] = "changed"
	assert.Equal(t, "v", clone["inner"].(JSONMap)["k"])
	assert.Nil(t, clone["missing"])
}

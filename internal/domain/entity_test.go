package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireguardPeer_JSONKeepsExtras(t *testing.T) {
	peer := WireguardPeer{
		Id:        "*3",
		Name:      "laptop",
		Interface: "wg0",
		Disabled:  NewBoolString("false"),
		Extra: map[string]any{
			"comment": "office",
			"name":    "must not override",
		},
	}

	data, err := json.Marshal(peer)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "laptop", raw["name"])
	assert.Equal(t, "office", raw["comment"])
	assert.Equal(t, "false", raw["disabled"])

	var decoded WireguardPeer
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "*3", decoded.Id)
	assert.Equal(t, "wg0", decoded.Interface)
	assert.Equal(t, map[string]any{"comment": "office"}, decoded.Extra)
	assert.False(t, decoded.IsDisabled())
}

func TestWireguardInterface_JSONWithoutExtras(t *testing.T) {
	iface := WireguardInterface{Id: "*1", Name: "wg0", ListenPort: "51820", Running: NewBool(true)}

	data, err := json.Marshal(iface)
	require.NoError(t, err)

	var decoded WireguardInterface
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded.Extra)
	assert.Equal(t, "51820", decoded.ListenPort)
	assert.True(t, decoded.Running.Bool())
	assert.False(t, decoded.Disabled.IsSet())
}

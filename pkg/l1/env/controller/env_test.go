package controller

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/pursuit/pkg/l1"
)

func TestLabels(t *testing.T) {
	var labels Labels
	require.NoError(t, labels.Set("site=lab"))
	require.NoError(t, labels.Set("rig=a=1"))
	require.Equal(t, Labels{"site": "lab", "rig": "a=1"}, labels)
	require.Error(t, labels.Set("novalue"))
	require.Error(t, labels.Set("=x"))
}

func TestNewEnv(t *testing.T) {
	c := &Config{Info: l1.ControllerInfo{Ref: l1.ControllerRef{Type: "tracker"}}}
	_, err := c.NewEnv()
	require.Error(t, err)

	c.Info.Ref.ID = "a/b"
	_, err = c.NewEnv()
	require.Error(t, err)

	c.Info.Ref.ID = "m1"
	env, err := c.NewEnv()
	require.NoError(t, err)
	require.Empty(t, env.Registrar.Registrars)
	require.Empty(t, env.RegistryURLs)

	c.MQTTBrokerURL = "mqtt://localhost:1883/pursuit/"
	env, err = c.NewEnv()
	require.NoError(t, err)
	require.Len(t, env.Registrar.Registrars, 1)

	c.MQTTBrokerURL = "http://localhost"
	_, err = c.NewEnv()
	require.Error(t, err)
}

func TestDefaultID(t *testing.T) {
	require.NotEmpty(t, NewConfig().Info.Ref.ID)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siggy-land/siggy/conf"
	"github.com/siggy-land/siggy/internal/secret"
)

func TestCookieCodecSecureOnlyInProduction(t *testing.T) {
	key := secret.Resolve("test-secret", nil)

	assert.True(t, cookieCodec(&conf.GlobalConfiguration{Env: conf.EnvProduction}, key).Secure())
	assert.False(t, cookieCodec(&conf.GlobalConfiguration{Env: "development"}, key).Secure())
	assert.False(t, cookieCodec(&conf.GlobalConfiguration{}, key).Secure())
}

func TestResolveSecretPrefersAuthSecret(t *testing.T) {
	config := &conf.GlobalConfiguration{
		Explicit: conf.ExplicitSecret{AuthSecret: "plain", SiggyAuthSecret: "prefixed"},
	}
	config.FallbackSecret = "seed"

	key := resolveSecret(config)
	assert.Equal(t, secret.SourceExplicit, key.Source())
	assert.Equal(t, []byte("plain"), key.Bytes())

	config.Explicit.AuthSecret = ""
	assert.Equal(t, []byte("prefixed"), resolveSecret(config).Bytes())

	config.Explicit.SiggyAuthSecret = ""
	assert.Equal(t, secret.SourceDerived, resolveSecret(config).Source())
}

func TestNewRegistryGathersRuntimeMetrics(t *testing.T) {
	require.NotPanics(t, func() { newRegistry() })

	families, err := newRegistry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
}

package router

import (
	"testing"

	"github.com/snipper-app/snipper/config"
	"github.com/stretchr/testify/assert"
)

func TestFiberAppTrustsConfiguredProxies(t *testing.T) {
	cfg := &config.ProductionConfig{
		Server: config.ServerConfig{
			ProxyHeader:    "X-Real-IP",
			TrustedProxies: []string{"10.0.0.1"},
		},
	}

	r := NewFiberRouter(cfg, nil, nil)
	appCfg := r.GetApp().Config()

	assert.Equal(t, "X-Real-IP", appCfg.ProxyHeader)
	assert.True(t, appCfg.TrustProxy)
	assert.Equal(t, []string{"10.0.0.1"}, appCfg.TrustProxyConfig.Proxies)
}

func TestFiberAppWithoutTrustedProxies(t *testing.T) {
	cfg := &config.ProductionConfig{Server: config.ServerConfig{}}

	r := NewFiberRouter(cfg, nil, nil)
	assert.False(t, r.GetApp().Config().TrustProxy)
}

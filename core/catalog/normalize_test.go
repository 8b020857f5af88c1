package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Grafana", "grafana"},
		{"  Home Assistant  ", "homeassistant"},
		{"Grafana - Login", "grafana"},
		{"Portainer | Dashboard", "portainer"},
		{"qBittorrent WebUI", "qbittorrent"},
		{"Uptime Kuma Sign In", "uptimekuma"},
		{"Pi-hole Admin Dashboard", "pihole"},
		{"Sign In", "signin"},
		{"Freshome", "freshome"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

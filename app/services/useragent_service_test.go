package services

import (
	"testing"

	"github.com/snipper-app/snipper/utils"
	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	parser := NewUserAgentParser()

	t.Run("DesktopChrome", func(t *testing.T) {
		info := parser.Parse("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Equal(t, "Chrome", info.Browser)
		assert.Equal(t, "Windows 10", info.OS)
		assert.Equal(t, "Desktop", info.Device)
	})

	t.Run("MobileSafari", func(t *testing.T) {
		info := parser.Parse("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
		assert.Equal(t, "Safari", info.Browser)
		assert.Equal(t, "Mobile", info.Device)
	})

	t.Run("Bot", func(t *testing.T) {
		info := parser.Parse("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		assert.Equal(t, "Bot", info.Device)
	})

	t.Run("EmptyUserAgent", func(t *testing.T) {
		info := parser.Parse("")
		assert.Equal(t, utils.UnknownValue, info.Browser)
		assert.Equal(t, utils.UnknownValue, info.OS)
		assert.Equal(t, utils.UnknownValue, info.Device)
	})

	t.Run("GarbageUserAgent", func(t *testing.T) {
		info := parser.Parse("definitely-not-a-browser")
		assert.Equal(t, utils.UnknownValue, info.Browser)
		assert.Equal(t, "Desktop", info.Device)
	})
}

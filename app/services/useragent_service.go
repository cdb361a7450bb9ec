// Package services provides external service integrations and technical concerns like geo lookups and user-agent parsing
package services

import (
	"github.com/mssola/useragent"
	"github.com/snipper-app/snipper/utils"
)

// DeviceInfo holds the browser, OS and device category derived from a raw
// user-agent string. Fields degrade to the "Unknown" sentinel, never to an error.
type DeviceInfo struct {
	Browser string
	OS      string
	Device  string
}

// UserAgentParser maps a raw user-agent string to browser/OS/device
type UserAgentParser interface {
	Parse(rawUA string) DeviceInfo
}

type UserAgentParserImpl struct{}

func NewUserAgentParser() UserAgentParser {
	return &UserAgentParserImpl{}
}

func (p *UserAgentParserImpl) Parse(rawUA string) DeviceInfo {
	if rawUA == "" {
		return DeviceInfo{
			Browser: utils.UnknownValue,
			OS:      utils.UnknownValue,
			Device:  utils.UnknownValue,
		}
	}

	ua := useragent.New(rawUA)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = utils.UnknownValue
	}

	os := ua.OS()
	if os == "" {
		os = utils.UnknownValue
	}

	device := "Desktop"
	if ua.Mobile() {
		device = "Mobile"
	} else if ua.Bot() {
		device = "Bot"
	}

	return DeviceInfo{Browser: browser, OS: os, Device: device}
}

package main

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ripmedia/internal/model"
)

var titleCaser = cases.Title(language.English)

func titleCase(value string) string {
	if value == "" {
		return "-"
	}
	return titleCaser.String(value)
}

func providerLabel(p model.Provider) string {
	switch p {
	case model.ProviderYouTube:
		return "YouTube"
	case model.ProviderSoundCloud:
		return "SoundCloud"
	case model.ProviderTwitter:
		return "X/Twitter"
	case "":
		return "-"
	default:
		return titleCase(string(p))
	}
}

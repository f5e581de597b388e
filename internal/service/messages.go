package service

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Outcome is the single user-visible result of an import or export run.
type Outcome struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}

const (
	msgMissingCredentials = "Missing credentials. Check whether you entered an API URL, an username and a password"
	msgBadCredentials     = "Could not authenticate the API user with the given credentials. Make sure that you entered the correct data."
	msgFieldRequired      = "This field is required."
)

var printer = message.NewPrinter(language.English)

func init() {
	message.Set(language.English, "%d story was successfully exported.",
		plural.Selectf(1, "%d",
			plural.One, "%d story was successfully exported.",
			plural.Other, "%d stories were successfully exported.",
		))
	message.Set(language.English, "%d story was successfully imported.",
		plural.Selectf(1, "%d",
			plural.One, "%d story was successfully imported.",
			plural.Other, "%d stories were successfully imported.",
		))
}

func exportedMessage(count int) string {
	return printer.Sprintf("%d story was successfully exported.", count)
}

func importedMessage(count int) string {
	return printer.Sprintf("%d story was successfully imported.", count)
}

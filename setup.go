package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// tokenEnvVar supplies the API token when the -token flag is not given.
const tokenEnvVar = "TABCLIP_API_TOKEN"

// credentials hold the API token and document id for one session. They
// live in memory only and are never written anywhere.
type credentials struct {
	Token string
	DocID string
}

// resolveCredentials fills in whatever the flags and environment left
// blank by prompting for it.
func resolveCredentials(token, docID string) (credentials, error) {
	if token == "" {
		token = os.Getenv(tokenEnvVar)
	}

	creds := credentials{
		Token: strings.TrimSpace(token),
		DocID: strings.TrimSpace(docID),
	}

	var fields []huh.Field
	if creds.Token == "" {
		fields = append(fields, huh.NewInput().
			Title("API token").
			Description("Generate one in your account settings.").
			EchoMode(huh.EchoModePassword).
			Validate(notEmpty("a token")).
			Value(&creds.Token))
	}
	if creds.DocID == "" {
		fields = append(fields, huh.NewInput().
			Title("Document id").
			Description("The id from the document's URL.").
			Validate(notEmpty("a document id")).
			Value(&creds.DocID))
	}
	if len(fields) == 0 {
		return creds, nil
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return credentials{}, err
	}

	creds.Token = strings.TrimSpace(creds.Token)
	creds.DocID = strings.TrimSpace(creds.DocID)
	return creds, nil
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

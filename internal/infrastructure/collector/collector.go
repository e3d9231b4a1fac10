// Package collector holds the source adapters that turn public developer
// communities into signal records.
package collector

import (
	"net/http"

	"ContentMachine/internal/scanner"
)

// Credentials carries optional per-source API keys.
type Credentials struct {
	GitHubToken      string
	StackExchangeKey string
}

// RegisterAll adds every built-in collector to reg, sharing one HTTP client.
func RegisterAll(reg *scanner.Registry, client *http.Client, creds Credentials) {
	client = defaultClient(client)
	reg.Register(NewGitHub(client, creds.GitHubToken))
	reg.Register(NewHackerNews(client))
	reg.Register(NewReddit(client))
	reg.Register(NewStackExchange(client, creds.StackExchangeKey))
}

package supabase

import (
	"fmt"
	"strings"

	"github.com/supabase-community/postgrest-go"
)

// Config holds the Supabase REST endpoint and API key.
type Config struct {
	URL     string
	AnonKey string
}

// NewClient builds a PostgREST client for the project's REST surface.
// The anon key is sent both as apikey and bearer token, the same way the
// hosted client libraries do.
func NewClient(cfg Config) (*postgrest.Client, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, fmt.Errorf("supabase: url and anon key are required")
	}

	base := strings.TrimSuffix(cfg.URL, "/") + "/rest/v1"
	headers := map[string]string{
		"apikey":        cfg.AnonKey,
		"Authorization": "Bearer " + cfg.AnonKey,
	}

	client := postgrest.NewClient(base, "public", headers)
	if client.ClientError != nil {
		return nil, fmt.Errorf("supabase: new client: %w", client.ClientError)
	}

	return client, nil
}

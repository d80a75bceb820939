package cmd

import (
	"fmt"
	"net/url"
	"strings"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// Outbox relay
	RelaySchedule    string
	RelayBatchSize   int
	RelayMaxAttempts int

	// WorkflowDir holds per-workspace workflow overrides named <workspace-id>.yaml.
	WorkflowDir string

	LogLevel     string
	Environment  string
	OTLPEndpoint string
	OTLPInsecure bool
	StdoutTraces bool
}

// DSN renders the connection string understood by both pgx and lib/pq.
func (c Config) DSN() string {
	parts := []string{
		"host=" + quoteDSN(c.DBHost),
		"port=" + quoteDSN(c.DBPort),
		"user=" + quoteDSN(c.DBUser),
		"password=" + quoteDSN(c.DBPassword),
		"dbname=" + quoteDSN(c.DBName),
		"sslmode=" + quoteDSN(c.DBSslMode),
	}
	return strings.Join(parts, " ")
}

// RedactedDSN is safe to log.
func (c Config) RedactedDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, "xxxxx"),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: "sslmode=" + c.DBSslMode,
	}
	return u.String()
}

func (c Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"HTTP_PORT", c.HTTPPort},
		{"DB_HOST", c.DBHost},
		{"DB_PORT", c.DBPort},
		{"DB_USER", c.DBUser},
		{"DB_NAME", c.DBName},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

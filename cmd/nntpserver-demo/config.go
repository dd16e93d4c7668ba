package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds everything needed to stand up one listening nntpserver.Server.
type Config struct {
	Backend           string `json:"backend"`
	ListenAddress     string `json:"listen_address"`
	TLSCertFile       string `json:"tls_cert_file"`
	TLSKeyFile        string `json:"tls_key_file"`
	RequireSecureAuth bool   `json:"require_secure_auth"`
	MaxLineLength     int    `json:"max_line_length"`
	IdleTimeoutSecs   int    `json:"idle_timeout_seconds"`
	LogLevel          string `json:"log_level"`
}

func (c *Config) idleTimeout() time.Duration {
	if c.IdleTimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(c.IdleTimeoutSecs) * time.Second
}

// defaultConfig mirrors the zero-config path: localhost, plaintext, no
// idle timeout, the staticbackend reference backend.
func defaultConfig() *Config {
	return &Config{
		Backend:       "static",
		ListenAddress: "127.0.0.1:1190",
		LogLevel:      "info",
	}
}

// LoadConfig tries to load configuration from a provided path, or from
// common locations if path is empty. It supports JSON files and simple
// .env-style files. Use NNTPSERVER_CONFIG to override the path.
func LoadConfig(path string) (*Config, error) {
	if env := os.Getenv("NNTPSERVER_CONFIG"); env != "" && path == "" {
		path = env
	}

	if path == "" {
		candidates := []string{
			"./nntpserver.json",
			"./nntpserver.config.json",
		}
		if dir, err := os.UserConfigDir(); err == nil {
			candidates = append(candidates, filepath.Join(dir, "nntpserver", "config.json"))
		}
		candidates = append(candidates, "/etc/nntpserver/config.json")
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return defaultConfig(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	cfg := defaultConfig()
	if strings.HasSuffix(strings.ToLower(path), ".env") {
		m, err := parseEnvFile(f)
		if err != nil {
			return nil, err
		}
		applyEnvMap(cfg, m)
		return cfg, nil
	}

	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// parseEnvFile reads KEY=VALUE lines into a map.
func parseEnvFile(f *os.File) (map[string]string, error) {
	s := bufio.NewScanner(f)
	m := make(map[string]string)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.Trim(strings.TrimSpace(v), `"`)
		m[k] = v
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// applyEnvMap overlays NNTPSERVER_* keys onto cfg.
func applyEnvMap(cfg *Config, m map[string]string) {
	if v := m["NNTPSERVER_BACKEND"]; v != "" {
		cfg.Backend = v
	}
	if v := m["NNTPSERVER_LISTEN_ADDRESS"]; v != "" {
		cfg.ListenAddress = v
	}
	if v := m["NNTPSERVER_TLS_CERT_FILE"]; v != "" {
		cfg.TLSCertFile = v
	}
	if v := m["NNTPSERVER_TLS_KEY_FILE"]; v != "" {
		cfg.TLSKeyFile = v
	}
	if v := m["NNTPSERVER_REQUIRE_SECURE_AUTH"]; v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RequireSecureAuth = b
		}
	}
	if v := m["NNTPSERVER_MAX_LINE_LENGTH"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxLineLength = n
		}
	}
	if v := m["NNTPSERVER_IDLE_TIMEOUT_SECONDS"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.IdleTimeoutSecs = n
		}
	}
	if v := m["NNTPSERVER_LOG_LEVEL"]; v != "" {
		cfg.LogLevel = v
	}
}

var errUnknownBackend = errors.New("unknown backend name")

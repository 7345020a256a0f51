package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Template is written by `ayra init`.
const Template = `# Ayra Configuration File
# Every key can be overridden with an AYRA_ environment variable,
# e.g. AYRA_SITE_ADDR=0.0.0.0:8080.

logging:
  level: info          # debug, info, warn, error
  format: console      # console or json
  output: ""           # empty for stderr, or a file path
  rotation: true
  max_size_mb: 50
  max_backups: 3
  max_age_days: 14

database:
  path: ~/.local/share/ayra/ayra.db
  busy_timeout_ms: 5000

playback:
  base_delay: 1200ms
  loop: true
  loop_pause: 2s
  default_scenario: healthcare

demo:
  reply_delay: 500ms

carousel:
  interval: 6s
  autoplay: true

site:
  addr: 127.0.0.1:8080
  metrics_enabled: true

rpc:
  enabled: true
  host: 127.0.0.1
  port: 50161
  rate_limit:
    enabled: true
    requests_per_second: 20
    burst: 40

redis:
  enabled: false
  addr: 127.0.0.1:6379
  prefix: "ayra:pref:"

tui:
  theme: ""            # dark or light; empty uses the stored preference
`

// WriteTemplate writes Template to dir/config.yaml. It returns false when
// the file exists and force is not set.
func WriteTemplate(dir string, force bool) (string, bool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil && !force {
		return path, false, nil
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return path, false, fmt.Errorf("write config: %w", err)
	}
	return path, true, nil
}

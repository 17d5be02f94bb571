package supervisor

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultWatchdogMillis = 150
	defaultProbeMillis    = 50
	defaultAwaitMillis    = 1000
)

// Config holds the supervisor timing parameters. The absolute values are
// deployment fixtures, not contractual bounds; keep the watchdog at least
// twice the expected signal interval to stay clear of scheduler jitter.
type Config struct {
	WatchdogMillis int `yaml:"watchdog_millis"`
	ProbeMillis    int `yaml:"probe_millis"`
	AwaitMillis    int `yaml:"await_millis"`
}

// DefaultConfig returns the reference timings
func DefaultConfig() *Config {
	return &Config{
		WatchdogMillis: defaultWatchdogMillis,
		ProbeMillis:    defaultProbeMillis,
		AwaitMillis:    defaultAwaitMillis,
	}
}

// LoadConfig reads a YAML config file. Missing or zero fields are filled
// with defaults; negative values are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config issue: ")
	}
	conf := &Config{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, errors.Wrap(err, "parse config issue: ")
	}
	if conf.WatchdogMillis < 0 || conf.ProbeMillis < 0 || conf.AwaitMillis < 0 {
		return nil, errors.New("config durations must be non-negative")
	}
	def := DefaultConfig()
	if conf.WatchdogMillis == 0 {
		conf.WatchdogMillis = def.WatchdogMillis
	}
	if conf.ProbeMillis == 0 {
		conf.ProbeMillis = def.ProbeMillis
	}
	if conf.AwaitMillis == 0 {
		conf.AwaitMillis = def.AwaitMillis
	}
	return conf, nil
}

// Watchdog is the liveness bound for the supervised source
func (c *Config) Watchdog() time.Duration {
	return time.Duration(c.WatchdogMillis) * time.Millisecond
}

// Probe is the delay of the default readiness probe
func (c *Config) Probe() time.Duration {
	return time.Duration(c.ProbeMillis) * time.Millisecond
}

// Await bounds blocking callers of AwaitReady
func (c *Config) Await() time.Duration {
	return time.Duration(c.AwaitMillis) * time.Millisecond
}

// config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultPortalURL is the public ADCVD message search page.
const DefaultPortalURL = "https://trade.cbp.dhs.gov/ace/adcvd/adcvd-public/#"

type ServerConfig struct {
	Port string `yaml:"port"`
}

type PortalConfig struct {
	URL             string `yaml:"url"`
	WaitTimeoutStr  string `yaml:"wait_timeout"`
	SettleDelayStr  string `yaml:"settle_delay"`
	Headless        bool   `yaml:"headless"`
	InstallBrowsers bool   `yaml:"install_browsers"`

	WaitTimeout time.Duration `yaml:"-"` // Parsed duration
	SettleDelay time.Duration `yaml:"-"` // Parsed duration
}

type ScraperSelectorsConfig struct {
	MessageInput string `yaml:"message_input"`
	SearchButton string `yaml:"search_button"`
	DetailsTable string `yaml:"details_table"`
	MessageBody  string `yaml:"message_body"`
}

type NERConfig struct {
	// ModelPath points at a prose model directory; empty means the embedded model.
	ModelPath string `yaml:"model_path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

type OutputConfig struct {
	Filename string `yaml:"filename"`
}

type Config struct {
	Server           ServerConfig           `yaml:"server"`
	Portal           PortalConfig           `yaml:"portal"`
	ScraperSelectors ScraperSelectorsConfig `yaml:"scraper_selectors"`
	NER              NERConfig              `yaml:"ner"`
	Log              LogConfig              `yaml:"log"`
	Output           OutputConfig           `yaml:"output"`
}

// Default returns a Config populated with the values used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Portal: PortalConfig{
			URL:            DefaultPortalURL,
			WaitTimeoutStr: "20s",
			SettleDelayStr: "5s",
			Headless:       true,
			WaitTimeout:    20 * time.Second,
			SettleDelay:    5 * time.Second,
		},
		ScraperSelectors: ScraperSelectorsConfig{
			MessageInput: "input[placeholder='Message #/Case #']",
			SearchButton: "xpath=//button[normalize-space()='Search']",
			DetailsTable: "table#detailsMessageHeaderTables",
			MessageBody:  "textarea#msg-text-body",
		},
		Log:    LogConfig{Level: "info", Format: "console"},
		Output: OutputConfig{Filename: "cbp_extracted_data.xlsx"},
	}
}

// potentialPaths are tried in order when LoadConfig is called with an empty path.
var potentialPaths = []string{
	"config.yaml",
	"config/config.yaml",
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// an optional .env file and ADCVD_* environment variables, in that order.
// A missing file is only an error when configPath was given explicitly.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		for _, p := range potentialPaths {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read config file %s", configPath)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, eris.Wrapf(err, "failed to unmarshal config %s", configPath)
		}
	}

	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "failed to load .env")
	}
	applyEnv(cfg)

	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("ADCVD_PORT", &cfg.Server.Port)
	setString("ADCVD_PORTAL_URL", &cfg.Portal.URL)
	setString("ADCVD_WAIT_TIMEOUT", &cfg.Portal.WaitTimeoutStr)
	setString("ADCVD_SETTLE_DELAY", &cfg.Portal.SettleDelayStr)
	setBool("ADCVD_HEADLESS", &cfg.Portal.Headless)
	setBool("ADCVD_INSTALL_BROWSERS", &cfg.Portal.InstallBrowsers)
	setString("ADCVD_NER_MODEL_PATH", &cfg.NER.ModelPath)
	setString("ADCVD_LOG_LEVEL", &cfg.Log.Level)
	setString("ADCVD_LOG_FORMAT", &cfg.Log.Format)
	setString("ADCVD_OUTPUT_FILENAME", &cfg.Output.Filename)
}

func (c *Config) parseDurations() error {
	var err error
	if c.Portal.WaitTimeout, err = parseDuration(c.Portal.WaitTimeoutStr, 20*time.Second); err != nil {
		return eris.Wrap(err, "failed to parse portal.wait_timeout")
	}
	if c.Portal.SettleDelay, err = parseDuration(c.Portal.SettleDelayStr, 5*time.Second); err != nil {
		return eris.Wrap(err, "failed to parse portal.settle_delay")
	}
	return nil
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, eris.Errorf("negative duration %q", s)
	}
	return d, nil
}

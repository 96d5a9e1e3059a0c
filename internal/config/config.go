package config

import (
	"log"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "MOVIECATALOG_CONFIG"
	databaseEnv   = "MOVIECATALOG_DB"
	headersEnv    = "MOVIECATALOG_HEADERS"
	sourceKindEnv = "MOVIECATALOG_SOURCE"
	logLevelEnv   = "MOVIECATALOG_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig `yaml:"database"`
	Source    SourceConfig   `yaml:"source"`
	Selectors SelectorConfig `yaml:"selectors"`
	Logging   LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig points at the local catalog file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SourceConfig describes where chart and title pages come from.
type SourceConfig struct {
	// Kind selects the fetcher: "http" or "fixture".
	Kind         string        `yaml:"kind"`
	ListURL      string        `yaml:"listUrl"`
	TitleBaseURL string        `yaml:"titleBaseUrl"`
	HeadersFile  string        `yaml:"headersFile"`
	FixtureDir   string        `yaml:"fixtureDir"`
	Timeout      time.Duration `yaml:"timeout"`
	Policy       PolicyConfig  `yaml:"policy"`
}

// PolicyConfig decides what a failed title page does to the rebuild.
// Each value is one of "warn", "drop" or "abort".
type PolicyConfig struct {
	GatewayTimeout string `yaml:"gatewayTimeout"`
	OtherFailure   string `yaml:"otherFailure"`
}

// SelectorConfig holds every CSS selector the parser relies on.
type SelectorConfig struct {
	ListEntry       string `yaml:"listEntry"`
	TitleLink       string `yaml:"titleLink"`
	TitleName       string `yaml:"titleName"`
	Rating          string `yaml:"rating"`
	RatingValue     string `yaml:"ratingValue"`
	MetadataItem    string `yaml:"metadataItem"`
	Genres          string `yaml:"genres"`
	GenreChip       string `yaml:"genreChip"`
	PrincipalCredit string `yaml:"principalCredit"`
	CreditLink      string `yaml:"creditLink"`
	DetailsSection  string `yaml:"detailsSection"`
	Languages       string `yaml:"languages"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// An explicit path wins over MOVIECATALOG_CONFIG.
func Load(path string) Config {
	cfg := defaultConfig()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
				log.Printf("config: cannot merge %s: %v (falling back to defaults)", path, err)
				cfg = defaultConfig()
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(headersEnv); v != "" {
		c.Source.HeadersFile = v
	}

	if v := os.Getenv(sourceKindEnv); v != "" {
		c.Source.Kind = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "movies.db"},
		Source: SourceConfig{
			Kind:         "http",
			ListURL:      "https://www.imdb.com/chart/moviemeter/?ref_=nv_mv_mpm",
			TitleBaseURL: "https://www.imdb.com/title/",
			HeadersFile:  "headers.json",
			Timeout:      30 * time.Second,
			Policy: PolicyConfig{
				GatewayTimeout: "warn",
				OtherFailure:   "drop",
			},
		},
		Selectors: DefaultSelectors(),
		Logging:   LoggingConfig{Level: "info"},
	}
}

// DefaultSelectors matches the chart and title page markup the parser was written against.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		ListEntry:       "li.ipc-metadata-list-summary-item",
		TitleLink:       "a.ipc-title-link-wrapper",
		TitleName:       "h3",
		Rating:          "span.ipc-rating-star--imdb",
		RatingValue:     "span.ipc-rating-star--rating",
		MetadataItem:    "span.cli-title-metadata-item",
		Genres:          `[data-testid="genres"]`,
		GenreChip:       "span.ipc-chip__text",
		PrincipalCredit: `li.ipc-metadata-list__item[data-testid="title-pc-principal-credit"]`,
		CreditLink:      "a.ipc-metadata-list-item__list-content-item--link",
		DetailsSection:  `[data-testid="title-details-section"]`,
		Languages:       `li[data-testid="title-details-languages"]`,
	}
}

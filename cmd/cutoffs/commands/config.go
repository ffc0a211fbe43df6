package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"schoolcutoffs/internal/scrapers/onemap"
	"schoolcutoffs/internal/scrapers/schoolfinder"
	"schoolcutoffs/internal/scrapers/sgschooling"
	"schoolcutoffs/internal/store"
	"schoolcutoffs/pkg/configutil"

	"github.com/joho/godotenv"
)

type Config struct {
	BaseUrl     string `json:"base_url"`
	ListingPath string `json:"listing_path"`
	UserAgent   string `json:"user_agent"`
	// RequestDelay and Timeout are in seconds.
	RequestDelay     float64 `json:"request_delay"`
	MaxRetries       int     `json:"max_retries"`
	Timeout          float64 `json:"timeout"`
	CloudflareBypass bool    `json:"cloudflare_bypass"`
	DumpDir          string  `json:"dump_dir"`

	ListingYear  int   `json:"listing_year"`
	HistoryYears []int `json:"history_years"`

	OutputFile      string `json:"output_file"`
	OfferingsFile   string `json:"offerings_file"`
	CoordinatesFile string `json:"coordinates_file"`

	Database store.Config `json:"database"`

	SchoolFinder struct {
		BaseUrl     string  `json:"base_url"`
		ShowBrowser bool    `json:"show_browser"`
		PageDelay   float64 `json:"page_delay"`
	} `json:"schoolfinder"`

	OneMap struct {
		BaseUrl      string  `json:"base_url"`
		RequestDelay float64 `json:"request_delay"`
	} `json:"onemap"`
}

func defaultConfig() Config {
	c := Config{
		BaseUrl:         sgschooling.DefaultBaseUrl,
		ListingPath:     sgschooling.DefaultListingPath,
		UserAgent:       sgschooling.DefaultUserAgent,
		RequestDelay:    2,
		MaxRetries:      3,
		Timeout:         30,
		ListingYear:     sgschooling.DefaultListingYear,
		HistoryYears:    sgschooling.DefaultHistoryYears,
		OutputFile:      "data/schools.csv",
		OfferingsFile:   "data/higher_mother_tongue.json",
		CoordinatesFile: "data/school_coordinates.json",
	}
	c.SchoolFinder.BaseUrl = schoolfinder.DefaultBaseUrl
	c.SchoolFinder.PageDelay = 2
	c.OneMap.BaseUrl = onemap.DefaultBaseUrl
	c.OneMap.RequestDelay = 0.3
	return c
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// LoadConfig layers the defaults, the config file (when present), the .env
// file (when present) and finally the environment.
func LoadConfig(path string, lookup func(string) (string, bool)) (Config, error) {
	config := defaultConfig()
	err := configutil.MergeConfig(path, &config)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("read config: %w", err)
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	err = applyEnv(&config, lookup)
	return config, err
}

func applyEnv(config *Config, lookup func(string) (string, bool)) error {
	parseFloat := func(name string, out *float64) error {
		value, ok := lookup(name)
		if !ok || value == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*out = parsed
		return nil
	}

	err := parseFloat("REQUEST_DELAY", &config.RequestDelay)
	if err != nil {
		return err
	}
	err = parseFloat("TIMEOUT", &config.Timeout)
	if err != nil {
		return err
	}
	if value, ok := lookup("MAX_RETRIES"); ok && value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("MAX_RETRIES: %w", err)
		}
		config.MaxRetries = parsed
	}
	if value, ok := lookup("OUTPUT_FILE"); ok && value != "" {
		config.OutputFile = value
	}
	if value, ok := lookup("DATABASE_URL"); ok && value != "" {
		config.Database.Url = value
	}
	return nil
}

func (c Config) scraperOptions() sgschooling.Options {
	return sgschooling.Options{
		BaseUrl:          c.BaseUrl,
		ListingPath:      c.ListingPath,
		RequestDelay:     seconds(c.RequestDelay),
		MaxRetries:       c.MaxRetries,
		Timeout:          seconds(c.Timeout),
		UserAgent:        c.UserAgent,
		CloudflareBypass: c.CloudflareBypass,
		DumpDir:          c.DumpDir,
		ListingYear:      c.ListingYear,
		HistoryYears:     c.HistoryYears,
	}
}

func (c Config) schoolFinderOptions() schoolfinder.Options {
	return schoolfinder.Options{
		BaseUrl:   c.SchoolFinder.BaseUrl,
		Headless:  !c.SchoolFinder.ShowBrowser,
		PageDelay: seconds(c.SchoolFinder.PageDelay),
	}
}

func (c Config) oneMapOptions() onemap.Options {
	return onemap.Options{
		BaseUrl:      c.OneMap.BaseUrl,
		RequestDelay: seconds(c.OneMap.RequestDelay),
		Timeout:      seconds(c.Timeout),
	}
}

// years is the listing year followed by the history years.
func (c Config) years() []int {
	return c.scraperOptions().WithDefaults().Years()
}

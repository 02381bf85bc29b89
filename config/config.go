package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig is the full application configuration, loaded from a YAML
// file with environment overrides applied on top.
type AppConfig struct {
	System  SystemConfig  `yaml:"system" json:"system"`
	Logger  LoggerConfig  `yaml:"logger" json:"logger"`
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`
	Chat    ChatConfig    `yaml:"chat" json:"chat"`
}

type SystemConfig struct {
	Listen    string `yaml:"listen" json:"listen"`
	StaticDir string `yaml:"static_dir" json:"static_dir"`
	Location  string `yaml:"location" json:"location"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type CatalogConfig struct {
	MainPath   string `yaml:"main_path" json:"main_path"`
	LaptopPath string `yaml:"laptop_path" json:"laptop_path"`
	MobilePath string `yaml:"mobile_path" json:"mobile_path"`
	// ReloadCron re-reads the catalog sources on a cron schedule.
	// Empty disables reloading, the startup snapshot then lives for
	// the whole process.
	ReloadCron string `yaml:"reload_cron" json:"reload_cron"`
}

type ChatConfig struct {
	APIURL string `yaml:"api_url" json:"api_url"`
	Token  string `yaml:"token" json:"token"`
	// TimeoutSec bounds the upstream chat call, zero means default.
	TimeoutSec int `yaml:"timeout_sec" json:"timeout_sec"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		System: SystemConfig{
			Listen:    ":8000",
			StaticDir: "static",
			Location:  "UTC",
		},
		Logger: LoggerConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "mobigenie.log",
		},
		Catalog: CatalogConfig{
			MainPath:   "data/main_product_data.csv",
			LaptopPath: "data/laptop_product_accessories.csv",
			MobilePath: "data/mobile_product_accessories.csv",
		},
		Chat: ChatConfig{},
	}
}

// LoadConfig reads the YAML file at path over the defaults. A missing
// file is not an error, the defaults apply. The HF_TOKEN environment
// variable always overrides the configured chat token.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", path)
			}
		case os.IsNotExist(err):
			// fall through to defaults
		default:
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}
	if token := os.Getenv("HF_TOKEN"); token != "" {
		cfg.Chat.Token = token
	}
	return cfg, nil
}

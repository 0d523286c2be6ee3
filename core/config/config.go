package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/tristendillon/forge/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "forge.yaml"

type Config struct {
	ProjectName string `yaml:"project_name" mapstructure:"project_name" validate:"required"`
	Docs        Docs   `yaml:"docs" mapstructure:"docs"`
	Temp        Temp   `yaml:"temp" mapstructure:"temp"`
	Server      Server `yaml:"server" mapstructure:"server"`
	Lint        Lint   `yaml:"lint" mapstructure:"lint"`
	Format      Format `yaml:"format" mapstructure:"format"`
	Dll         Dll    `yaml:"dll" mapstructure:"dll"`
	Watch       Watch  `yaml:"watch" mapstructure:"watch"`
	Walk        Walk   `yaml:"walk" mapstructure:"walk"`
}

type Docs struct {
	Dir       string `yaml:"dir" mapstructure:"dir" validate:"required"`
	Extension string `yaml:"extension" mapstructure:"extension" validate:"required,startswith=."`
	// Wrapper overrides the renderer module the entry imports.
	Wrapper string `yaml:"wrapper,omitempty" mapstructure:"wrapper"`
}

type Temp struct {
	Dir string `yaml:"dir" mapstructure:"dir" validate:"required"`
}

type Server struct {
	Host         string `yaml:"host" mapstructure:"host" validate:"required"`
	UseHTTPS     bool   `yaml:"use_https" mapstructure:"use_https"`
	CertFile     string `yaml:"cert_file,omitempty" mapstructure:"cert_file" validate:"required_if=UseHTTPS true"`
	KeyFile      string `yaml:"key_file,omitempty" mapstructure:"key_file" validate:"required_if=UseHTTPS true"`
	PublicPath   string `yaml:"public_path" mapstructure:"public_path" validate:"required,startswith=/"`
	HTMLTemplate string `yaml:"html_template,omitempty" mapstructure:"html_template"`
}

type Lint struct {
	Command string `yaml:"command,omitempty" mapstructure:"command"`
}

type Format struct {
	Command string `yaml:"command,omitempty" mapstructure:"command"`
}

type Dll struct {
	Modules    []string `yaml:"modules" mapstructure:"modules" validate:"required,min=1,dive,required"`
	GlobalName string   `yaml:"global_name" mapstructure:"global_name" validate:"required,alphanum"`
	StaticPath string   `yaml:"static_path" mapstructure:"static_path" validate:"required,startswith=/"`
}

type Watch struct {
	Ignore []string `yaml:"ignore,omitempty" mapstructure:"ignore"`
}

type Walk struct {
	Exclude []string `yaml:"exclude,omitempty" mapstructure:"exclude"`
}

func Default() *Config {
	return &Config{
		ProjectName: "forge",
		Docs: Docs{
			Dir:       "docs",
			Extension: ".tsx",
		},
		Temp: Temp{
			Dir: ".temp",
		},
		Server: Server{
			Host:       "127.0.0.1",
			PublicPath: "/",
		},
		Dll: Dll{
			Modules:    []string{"react", "react-dom", "react-hot-loader"},
			GlobalName: "forgeDll",
			StaticPath: "/dll/",
		},
	}
}

var configFileOverride string

// SetConfigFileOverride makes Load read path instead of <root>/forge.yaml.
func SetConfigFileOverride(path string) {
	configFileOverride = path
}

// ConfigFileOverride returns the path set by SetConfigFileOverride, if any.
func ConfigFileOverride() string {
	return configFileOverride
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("project_name", d.ProjectName)
	v.SetDefault("docs.dir", d.Docs.Dir)
	v.SetDefault("docs.extension", d.Docs.Extension)
	v.SetDefault("docs.wrapper", d.Docs.Wrapper)
	v.SetDefault("temp.dir", d.Temp.Dir)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.use_https", d.Server.UseHTTPS)
	v.SetDefault("server.cert_file", d.Server.CertFile)
	v.SetDefault("server.key_file", d.Server.KeyFile)
	v.SetDefault("server.public_path", d.Server.PublicPath)
	v.SetDefault("server.html_template", d.Server.HTMLTemplate)
	v.SetDefault("lint.command", d.Lint.Command)
	v.SetDefault("format.command", d.Format.Command)
	v.SetDefault("dll.modules", d.Dll.Modules)
	v.SetDefault("dll.global_name", d.Dll.GlobalName)
	v.SetDefault("dll.static_path", d.Dll.StaticPath)
	v.SetDefault("watch.ignore", []string{})
	v.SetDefault("walk.exclude", []string{})
}

// Load reads forge.yaml from root, layering FORGE_* environment overrides on
// top of the defaults. A missing file is not an error.
func Load(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	filePath := configFileOverride
	if filePath == "" {
		filePath = filepath.Join(root, FileName)
	}

	if _, err := os.Stat(filePath); err == nil {
		v.SetConfigFile(filePath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
		}
		logger.Debug("Config file found: %s", filePath)
	} else if configFileOverride != "" {
		return nil, fmt.Errorf("config file not found: %s", filePath)
	} else {
		logger.Debug("No config file found, using default config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	logger.Debug("Config: %+v", cfg)

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// TempPath joins elem onto the project temp directory.
func (c *Config) TempPath(root string, elem ...string) string {
	return filepath.Join(append([]string{root, c.Temp.Dir}, elem...)...)
}

// EntryPath is the fixed location of the generated docs entry module.
func (c *Config) EntryPath(root string) string {
	return c.TempPath(root, "docs-entry.tsx")
}

// ServeDir is the directory the dev server serves static files from.
func (c *Config) ServeDir(root string) string {
	return c.TempPath(root, "docs-serve")
}

func (c *Config) DllOutDir(root string) string {
	return filepath.Join(c.ServeDir(root), filepath.FromSlash(strings.Trim(c.Dll.StaticPath, "/")))
}

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pagemill/pagemill"
	"github.com/pagemill/pagemill/source"
)

type sourceConfig struct {
	Type   string `yaml:"type"` // "dir", "http" or "git"
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
}

type config struct {
	Bind      string                 `yaml:"bind"`
	Network   string                 `yaml:"network"`
	CacheDir  string                 `yaml:"cache_dir"`
	StaticDir string                 `yaml:"static_dir"`
	Templates string                 `yaml:"templates"`
	Unsafe    bool                   `yaml:"unsafe"`
	Site      map[string]interface{} `yaml:"site"`
	Source    sourceConfig           `yaml:"source"`
}

func loadConfig(path string) (config, error) {
	cfg := config{
		Bind:     "localhost:8080",
		Network:  "tcp",
		CacheDir: "cache",
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %q", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %q", path)
	}
	return cfg, nil
}

func (c config) contentSource() (pagemill.Source, error) {
	switch c.Source.Type {
	case "dir":
		return source.Dir{Root: c.Source.Path}, nil
	case "http":
		return source.NewHTTP(c.Source.URL), nil
	case "git":
		return source.Git{Path: c.Source.Path, Branch: c.Source.Branch}, nil
	}
	return nil, errors.Errorf("unknown source type: %q", c.Source.Type)
}

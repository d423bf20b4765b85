package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"momentum_bot/internal/modules/config"
)

const masked = "***"

// render — итоговый конфиг (defaults + yaml + env) в yaml, секреты скрыты.
func render(cfg config.Config) (string, error) {
	if cfg.Exchange.APIKey != "" {
		cfg.Exchange.APIKey = masked
	}
	if cfg.Exchange.APISecret != "" {
		cfg.Exchange.APISecret = masked
	}
	if cfg.Telegram.Token != "" {
		cfg.Telegram.Token = masked
	}
	if cfg.Store.RedisPassword != "" {
		cfg.Store.RedisPassword = masked
	}
	if cfg.Store.DSN != "" {
		cfg.Store.DSN = masked
	}

	bs, err := yaml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, "marshal config to yaml")
	}
	return string(bs), nil
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	out, err := render(*cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

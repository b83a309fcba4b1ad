// Package config resolves runtime settings from an optional listmatch.yaml
// file and LISTMATCH_ environment variables. Every setting has a default, so
// running without any configuration works.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/listmatch/internal/match"
	"github.com/listmatch/internal/score"
)

// Config is the resolved runtime configuration.
type Config struct {
	Thresholds map[match.Strategy]float64
	Params     score.Params
	ShortlistK int
	PruneRatio float64
	Workers    int
	CacheSize  int

	HTTPAddr    string
	LogLevel    string
	DatabaseURL string
}

// Load reads listmatch.yaml from dir and the working directory, then applies
// LISTMATCH_ environment variables on top. A missing config file is fine.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("listmatch")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix("listmatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	return &Config{
		Thresholds: map[match.Strategy]float64{
			match.FullName:        v.GetFloat64("thresholds.fullname"),
			match.LastNameAddress: v.GetFloat64("thresholds.lastnameaddress"),
			match.FullAddress:     v.GetFloat64("thresholds.fulladdress"),
		},
		Params: score.Params{
			StreetGate:      v.GetFloat64("score.street_gate"),
			StreetCapFactor: v.GetFloat64("score.street_cap_factor"),
			StreetCapMax:    v.GetFloat64("score.street_cap_max"),
			NearDiff:        v.GetInt("score.near_diff"),
			MidDiff:         v.GetInt("score.mid_diff"),
			NearFactor:      v.GetFloat64("score.near_factor"),
			NearMax:         v.GetFloat64("score.near_max"),
			MidFactor:       v.GetFloat64("score.mid_factor"),
			MidMax:          v.GetFloat64("score.mid_max"),
			FarFactor:       v.GetFloat64("score.far_factor"),
			FarMax:          v.GetFloat64("score.far_max"),
		},
		ShortlistK:  v.GetInt("engine.shortlist_k"),
		PruneRatio:  v.GetFloat64("engine.prune_ratio"),
		Workers:     v.GetInt("engine.workers"),
		CacheSize:   v.GetInt("engine.cache_size"),
		HTTPAddr:    v.GetString("http.addr"),
		LogLevel:    v.GetString("log.level"),
		DatabaseURL: v.GetString("database.url"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	opts := match.DefaultOptions()
	params := score.DefaultParams()

	v.SetDefault("thresholds.fullname", opts.Thresholds[match.FullName])
	v.SetDefault("thresholds.lastnameaddress", opts.Thresholds[match.LastNameAddress])
	v.SetDefault("thresholds.fulladdress", opts.Thresholds[match.FullAddress])

	v.SetDefault("score.street_gate", params.StreetGate)
	v.SetDefault("score.street_cap_factor", params.StreetCapFactor)
	v.SetDefault("score.street_cap_max", params.StreetCapMax)
	v.SetDefault("score.near_diff", params.NearDiff)
	v.SetDefault("score.mid_diff", params.MidDiff)
	v.SetDefault("score.near_factor", params.NearFactor)
	v.SetDefault("score.near_max", params.NearMax)
	v.SetDefault("score.mid_factor", params.MidFactor)
	v.SetDefault("score.mid_max", params.MidMax)
	v.SetDefault("score.far_factor", params.FarFactor)
	v.SetDefault("score.far_max", params.FarMax)

	v.SetDefault("engine.shortlist_k", opts.ShortlistK)
	v.SetDefault("engine.prune_ratio", opts.PruneRatio)
	v.SetDefault("engine.workers", 0)
	v.SetDefault("engine.cache_size", opts.CacheSize)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.url", "")
}

// MatchOptions converts the configuration into engine options.
func (c *Config) MatchOptions() match.Options {
	return match.Options{
		Thresholds: c.Thresholds,
		Params:     c.Params,
		ShortlistK: c.ShortlistK,
		PruneRatio: c.PruneRatio,
		Workers:    c.Workers,
		CacheSize:  c.CacheSize,
	}
}

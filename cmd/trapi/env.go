package main

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/KenkenGoda/trapi/pkg/errors"
)

// Env holds the settings read from TRAPI_* environment variables. Flags
// take precedence where both exist.
type Env struct {
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON      bool   `envconfig:"LOG_JSON" default:"false"`
	Concurrency  int    `envconfig:"CONCURRENCY" default:"0"`
	ReduceMemory bool   `envconfig:"REDUCE_MEMORY" default:"true"`
	Seed         uint64 `envconfig:"SEED" default:"42"`
}

// LoadEnv reads Env from the environment.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("TRAPI", &env); err != nil {
		return nil, errors.Wrap(err, "reading TRAPI_* environment")
	}
	return &env, nil
}

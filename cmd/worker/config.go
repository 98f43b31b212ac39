package main

import (
	"errors"
	"net/url"

	"github.com/spf13/viper"
	"github.com/srand/beam/worker/pkg/log"
	"github.com/srand/beam/worker/pkg/utils"
)

type Config struct {
	Grpc utils.GRPCOptions `mapstructure:"grpc"`

	// gRPC URI of the scheduler's lease service.
	SchedulerGrpcUri string `mapstructure:"scheduler_grpc_uri"`

	// Addresses to listen on for HTTP.
	ListenHttp []string `mapstructure:"listen_http"`

	// Directory used for spilled objects. In-memory when empty.
	PlasmaDir string `mapstructure:"plasma_dir"`
}

func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := utils.UnmarshalConfig(*viper.GetViper(), config); err != nil {
		return nil, err
	}

	return config, nil
}

// Checks if the worker configuration is valid.
func (c *Config) Validate() error {
	if c.SchedulerGrpcUri == "" {
		return errors.New("A scheduler URI is required")
	}

	if _, err := url.Parse(c.SchedulerGrpcUri); err != nil {
		return errors.New("The scheduler URI is not a valid URI")
	}

	return nil
}

func (c *Config) Log() {
	log.Info("Worker configuration:")
	log.Infof("  scheduler_grpc_uri = %s", c.SchedulerGrpcUri)
	log.Infof("  listen_http = %v", c.ListenHttp)
	log.Infof("  plasma_dir = %s", c.PlasmaDir)
	c.Grpc.Log()
}

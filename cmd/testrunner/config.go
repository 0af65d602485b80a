package main

import (
	"github.com/spf13/viper"
	"github.com/srand/jolt/testrunner/pkg/runner"
	"github.com/srand/jolt/testrunner/pkg/utils"
)

func LoadConfig() (*runner.RunnerConfig, error) {
	config := &runner.RunnerConfig{}

	err := utils.UnmarshalConfig(viper.GetViper(), config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

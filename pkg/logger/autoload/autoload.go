// Package autoload initializes the global logger from LOGGER_* env vars
// as a side effect of being imported.
package autoload

import (
	configx "github.com/forno-labs/pizzabot/pkg/config"
	logx "github.com/forno-labs/pizzabot/pkg/logger"
)

func init() {
	cfg, err := configx.New[logx.Config]("LOGGER")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*cfg)
}

package tree

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	defaultFlowWorkers   = 4
	defaultFlowQueueSize = 100
)

// Config tunes the runtime's flow executor.
type Config struct {
	// FlowWorkers is the number of workers running flow tasks.
	FlowWorkers int `env:"TREEKIT_FLOW_WORKERS" envDefault:"4"`
	// FlowQueueSize is the flow task queue capacity.
	FlowQueueSize int `env:"TREEKIT_FLOW_QUEUE_SIZE" envDefault:"100"`
}

// LoadConfig reads executor configuration from the environment. On parse
// failure it returns the defaults alongside the error.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{FlowWorkers: defaultFlowWorkers, FlowQueueSize: defaultFlowQueueSize},
			fmt.Errorf("tree: parse env config: %w", err)
	}
	return cfg, nil
}

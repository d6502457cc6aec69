package bootstrap

import (
	"github.com/datakit-go/datakit/config"
)

// Config constrains the typed configuration an App hosts. Embedding
// config.Runtime by value provides all three methods through promotion:
//
//	type trainConfig struct {
//		config.Runtime `yaml:",inline" mapstructure:",squash"`
//		Shards []string `yaml:"shards" mapstructure:"shards"`
//	}
//
// A *trainConfig then satisfies Config as-is.
type Config interface {
	GetRuntime() *config.Runtime
	ApplyDefaults()
	Validate() error
}

package client

import "time"

const ServiceName = "ampere-client"

type Config struct {
	Name    string  `yaml:"name" mapstructure:"name"`
	Venue   Venue   `yaml:"venue" mapstructure:"venue"`
	Log     Log     `yaml:"log" mapstructure:"log"`
	Metrics Metrics `yaml:"metrics" mapstructure:"metrics"`
	Nats    Nats    `yaml:"nats" mapstructure:"nats"`
	Capture Capture `yaml:"capture" mapstructure:"capture"`
}

type Venue struct {
	Addr        string        `yaml:"addr" mapstructure:"addr"`
	DialTimeout time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
}

type Log struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

type Metrics struct {
	// 为空时不起 /metrics
	Addr string `yaml:"addr" mapstructure:"addr"`
}

type Nats struct {
	// 为空时不转发事件
	URL    string `yaml:"url" mapstructure:"url"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

type Capture struct {
	// 不为空时把交易所原始字节流追加到这个文件，-replay 可以直接回放
	File string `yaml:"file" mapstructure:"file"`
}

func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"name":               ServiceName,
		"venue.addr":         "127.0.0.1:20000",
		"venue.dial_timeout": "5s",
		"log.level":          "info",
		"nats.prefix":        "ampere",
	}
}

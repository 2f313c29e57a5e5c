package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Options 控制加载行为，零值即约定：config/{service}.yaml
type Options struct {
	// File 显式指定配置文件路径（命令行 -f），为空时按约定查找
	File string
	// Defaults 没有在文件/环境变量里出现的 key 用这里的值
	Defaults map[string]interface{}
	// OnChange 热更新成功后回调（例如调整日志级别）
	OnChange func()
}

// Load 读 yaml + 环境变量覆盖，并监听文件热更新到 out
func Load(service string, out interface{}, opt Options) (*viper.Viper, error) {
	v := viper.New()
	if opt.File != "" {
		v.SetConfigFile(opt.File)
	} else {
		// 约定：config/{service}.yaml
		v.SetConfigName(service)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".") // 兜底
	}
	for k, val := range opt.Defaults {
		v.SetDefault(k, val)
	}

	// 环境变量覆盖，例如：
	//   AMPERE_CLIENT_VENUE_ADDR 覆盖 venue.addr
	v.SetEnvPrefix(envPrefix(service))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", service, err)
	}
	if err := v.Unmarshal(out); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", service, err)
	}

	log.Printf("[%s] config loaded from %s", service, v.ConfigFileUsed())

	// 监听文件变更，热更新到 out
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("[%s] config file changed: %s", service, e.Name)

		if err := v.Unmarshal(out); err != nil {
			log.Printf("[%s] reload config error: %v", service, err)
			return
		}
		log.Printf("[%s] config reloaded OK", service)
		if opt.OnChange != nil {
			opt.OnChange()
		}
	})
	v.WatchConfig()

	return v, nil
}

// ampere-client -> AMPERE_CLIENT
func envPrefix(service string) string {
	return strings.ToUpper(strings.ReplaceAll(service, "-", "_"))
}

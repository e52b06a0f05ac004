package viper

import (
	"io"
	"path/filepath"
	"strings"

	spfviper "github.com/spf13/viper"

	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

// Config 封装 spf13/viper 实例，对外提供精简的 YAML/JSON 配置加载接口。
type Config struct {
	v *spfviper.Viper
}

// New 创建一个空的 Config。
//
// envPrefix 非空时启用环境变量覆盖：键名中的 "-" 与 "." 替换为 "_" 后加上前缀，
// 例如前缀 OBJCODEC 下 codec.max-depth 对应 OBJCODEC_CODEC_MAX_DEPTH。
func New(envPrefix string) *Config {
	v := spfviper.New()
	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
		v.AutomaticEnv()
	}
	return &Config{v: v}
}

// SetDefault 为 key 设置默认值，AutomaticEnv 只对已知的键生效，因此需要环境变量覆盖的键应先设置默认值。
func (c *Config) SetDefault(key string, value any) {
	c.v.SetDefault(key, value)
}

// LoadFile 将 YAML 或 JSON 配置文件加载到 Config 中，文件类型通过扩展名推断。
func (c *Config) LoadFile(path string) error {
	c.v.SetConfigFile(path)
	if typ := configType(path); typ != "" {
		c.v.SetConfigType(typ)
	}
	if err := c.v.ReadInConfig(); err != nil {
		return merr.WrapErrIoFailed(path, err)
	}
	return nil
}

// LoadReader 从 r 读取 typ（yaml/json）格式的配置。
func (c *Config) LoadReader(r io.Reader, typ string) error {
	c.v.SetConfigType(typ)
	if err := c.v.ReadConfig(r); err != nil {
		return merr.WrapErrParameterInvalidMsg("invalid %s config: %s", typ, err.Error())
	}
	return nil
}

func configType(path string) string {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return ""
	}
}

// Unmarshal 将完整配置反序列化到 dst，dst 应为结构体或 map 的指针。
func (c *Config) Unmarshal(dst any) error {
	return c.v.Unmarshal(dst)
}

// UnmarshalKey 将指定 key 对应的子配置反序列化到 dst。
func (c *Config) UnmarshalKey(key string, dst any) error {
	return c.v.UnmarshalKey(key, dst)
}

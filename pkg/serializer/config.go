package serializer

import (
	"github.com/lk2023060901/objcodec/internal/codec"
	"github.com/lk2023060901/objcodec/internal/compressor"
	"github.com/lk2023060901/objcodec/internal/json"
	"github.com/lk2023060901/objcodec/pkg/log"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
	"github.com/lk2023060901/objcodec/pkg/util/viper"
)

// EnvPrefix 是配置项环境变量覆盖使用的前缀，例如 OBJCODEC_MAX_DEPTH。
const EnvPrefix = "OBJCODEC"

// Config 是编解码器的可序列化配置（yaml/json）。
type Config struct {
	// MaxDepth 为最大嵌套深度，<= 0 时使用默认值 512。
	MaxDepth int `json:"max-depth" mapstructure:"max-depth"`
	// MaxSequenceLength 为解码时允许的最大元素个数，<= 0 表示只受 int32 约束。
	MaxSequenceLength int `json:"max-sequence-length" mapstructure:"max-sequence-length"`
	// MaxTextLength 为解码时允许的最大文本字节数，<= 0 表示只受 int32 约束。
	MaxTextLength int `json:"max-text-length" mapstructure:"max-text-length"`
	// MaxAllocBytes 为解码时单块分配与单次解压输出允许的最大字节数，<= 0 时使用内置上限。
	MaxAllocBytes int `json:"max-alloc-bytes" mapstructure:"max-alloc-bytes"`
	// Compression 为 CompressedSerializer 使用的压缩算法：none 或 zstd。
	Compression string `json:"compression" mapstructure:"compression"`
	// Log 不为空时用于初始化全局日志。
	Log *log.Config `json:"log,omitempty" mapstructure:"log"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:          codec.DefaultMaxDepth,
		MaxSequenceLength: 1 << 24,
		MaxTextLength:     1 << 26,
		MaxAllocBytes:     1 << 30,
		Compression:       compressor.TypeNone,
	}
}

// LoadConfig 从 yaml/json 文件加载配置，未出现的键保持默认值，环境变量优先于文件内容。
func LoadConfig(path string) (*Config, error) {
	v := viper.New(EnvPrefix)
	def := DefaultConfig()
	v.SetDefault("max-depth", def.MaxDepth)
	v.SetDefault("max-sequence-length", def.MaxSequenceLength)
	v.SetDefault("max-text-length", def.MaxTextLength)
	v.SetDefault("max-alloc-bytes", def.MaxAllocBytes)
	v.SetDefault("compression", def.Compression)
	if err := v.LoadFile(path); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, merr.WrapErrParameterInvalidMsg("invalid codec config %s: %s", path, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置取值是否合法。
func (c *Config) Validate() error {
	return compressor.Validate(c.Compression)
}

// Options 将配置转换为 New 可用的选项。
func (c *Config) Options() []Option {
	return []Option{
		WithMaxDepth(c.MaxDepth),
		WithMaxSequenceLength(c.MaxSequenceLength),
		WithMaxTextLength(c.MaxTextLength),
		WithMaxAllocBytes(c.MaxAllocBytes),
	}
}

func (c *Config) String() string {
	return json.MarshalString(c)
}

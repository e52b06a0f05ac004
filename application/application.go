package application

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/objcodec/internal/compressor"
	"github.com/lk2023060901/objcodec/pkg/log"
	"github.com/lk2023060901/objcodec/pkg/serializer"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

const (
	defaultConfigPath = "./objcodec.yaml"
	envConfigPath     = "OBJCODEC_CONFIG_FILE_PATH"
)

// Application 是使用 objcodec 的进程的运行时容器，负责加载配置、初始化日志并构建 Codec。
type Application struct {
	args       []string
	cfg        *serializer.Config
	codec      *serializer.Codec
	serializer serializer.Serializer
}

// New 创建一个 Application，args 通常为 os.Args[1:]。
func New(args []string) *Application {
	return &Application{args: args}
}

// Run 解析配置并完成初始化。配置文件路径的优先级从低到高：
//  1. 默认：./objcodec.yaml（不存在时使用默认配置）
//  2. 环境变量：OBJCODEC_CONFIG_FILE_PATH
//  3. 命令行：--config <path> 或 --config=<path>
func (a *Application) Run() error {
	if err := a.initGlobalLoggerFromEnv(); err != nil {
		return err
	}

	path, explicit, err := a.configPath()
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig(path, explicit)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.codec, err = serializer.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	a.serializer = serializer.BinarySerializer{Codec: a.codec}
	if c := strings.ToLower(cfg.Compression); c != "" && c != compressor.TypeNone {
		a.serializer, err = serializer.NewCompressedSerializerWithLimit(a.serializer, cfg.Compression, cfg.MaxAllocBytes)
		if err != nil {
			return err
		}
	}
	log.Info("objcodec application started", log.FieldComponent("application"))
	return nil
}

// Config 返回生效的配置。
func (a *Application) Config() *serializer.Config {
	return a.cfg
}

// Codec 返回按配置构建的 Codec。
func (a *Application) Codec() *serializer.Codec {
	return a.codec
}

// Serializer 返回按配置包装了压缩层的 Serializer。
func (a *Application) Serializer() serializer.Serializer {
	return a.serializer
}

// Close 释放压缩器等资源。
func (a *Application) Close() {
	if cs, ok := a.serializer.(*serializer.CompressedSerializer); ok {
		cs.Close()
	}
	_ = log.Sync()
}

func (a *Application) configPath() (string, bool, error) {
	path, explicit := defaultConfigPath, false
	if envPath := os.Getenv(envConfigPath); envPath != "" {
		path, explicit = envPath, true
	}

	for i := 0; i < len(a.args); i++ {
		arg := a.args[i]
		if arg == "--config" {
			if i+1 >= len(a.args) {
				return "", false, merr.WrapErrParameterInvalidMsg("missing value after --config")
			}
			path, explicit = a.args[i+1], true
			i++
			continue
		}
		if val, ok := strings.CutPrefix(arg, "--config="); ok && val != "" {
			path, explicit = val, true
		}
	}
	return path, explicit, nil
}

func (a *Application) loadConfig(path string, explicit bool) (*serializer.Config, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			log.Info("config file not found, using defaults", log.FieldComponent("application"))
			return serializer.DefaultConfig(), nil
		}
	}
	cfg, err := serializer.LoadConfig(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config file %q", path)
	}
	return cfg, nil
}

// initGlobalLoggerFromEnv 根据 OBJCODEC_LOG_* 环境变量配置进程级日志：
//   - OBJCODEC_LOG_ENABLE：为 1/true 时开启输出，否则丢弃全部日志。
//   - OBJCODEC_LOG_LEVEL：日志级别，默认 info。
//   - OBJCODEC_LOG_STDOUT：是否输出到标准输出。
//   - OBJCODEC_LOG_FILE_DIR / OBJCODEC_LOG_FILE：文件日志目录与文件名。
//   - OBJCODEC_LOG_FORMAT：text 或 json，默认 text。
//
// 配置文件中的 log 段会在之后覆盖这里的设置。
func (a *Application) initGlobalLoggerFromEnv() error {
	cfg := &log.Config{
		Level:               getenvDefault("OBJCODEC_LOG_LEVEL", "info"),
		Format:              getenvDefault("OBJCODEC_LOG_FORMAT", log.FormatText),
		Stdout:              getenvBool("OBJCODEC_LOG_STDOUT", false),
		DisableErrorVerbose: true,
		File: log.FileLogConfig{
			RootPath: getenvDefault("OBJCODEC_LOG_FILE_DIR", ""),
			Filename: getenvDefault("OBJCODEC_LOG_FILE", ""),
		},
	}
	if !getenvBool("OBJCODEC_LOG_ENABLE", false) {
		cfg.Stdout = false
		cfg.File.Filename = ""
	}

	logger, props, err := log.InitLogger(cfg)
	if err != nil {
		return errors.Wrap(err, "init global logger from env")
	}
	log.ReplaceGlobals(logger, props)
	return nil
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getenvBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

package xkconf

import "errors"

// 配置加载和展开相关错误。
var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xkconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xkconf: unsupported config format")

	// ErrLoadFailed 表示配置加载失败。
	ErrLoadFailed = errors.New("xkconf: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xkconf: failed to parse config")

	// ErrUnknownProfile 表示请求的客户端档案不存在。
	ErrUnknownProfile = errors.New("xkconf: unknown client profile")

	// ErrInvalidValue 表示档案内的值无法转为引擎接受的字符串。
	ErrInvalidValue = errors.New("xkconf: invalid config value")
)

package xkconf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/xrdkafka/pkg/rdkafka"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式（推荐用于 K8s ConfigMap）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// Kafka 配置键含点号，层级分隔符必须避开点号。
const delim = "::"

const (
	defaultsKey = "defaults"
	clientsKey  = "clients"
)

// File 是一份已加载的客户端配置档案文件。
// 加载后只读，方法可并发调用。
type File struct {
	k      *koanf.Koanf
	path   string
	format Format
}

// Load 从文件路径加载配置档案。
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json）。
func Load(path string) (*File, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	f, err := LoadBytes(data, format)
	if err != nil {
		return nil, err
	}
	f.path = path
	return f, nil
}

// LoadBytes 从字节数据加载配置档案。
// 需要显式指定格式，适用于 K8s ConfigMap 等场景。
// 空数据会得到一份没有任何档案的 File，与 Load 读取空文件的行为一致。
func LoadBytes(data []byte, format Format) (*File, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, ErrUnsupportedFormat
	}

	k := koanf.New(delim)
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	return &File{k: k, format: format}, nil
}

// Client 返回底层的 koanf 实例。
// 用于执行所有 koanf 支持的操作。
func (f *File) Client() *koanf.Koanf {
	return f.k
}

// Path 返回配置文件路径。
// 从字节数据创建的 File 返回空字符串。
func (f *File) Path() string {
	return f.path
}

// Format 返回配置格式。
func (f *File) Format() Format {
	return f.format
}

// Profiles 返回文件内声明的档案名，按字典序排列。
func (f *File) Profiles() []string {
	clients, ok := f.k.Get(clientsKey).(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(clients))
	for name := range clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConfigMap 展开指定档案：defaults 段合并进档案，档案内的同名键优先，
// 所有标量值转为引擎接受的字符串。
func (f *File) ConfigMap(profile string) (rdkafka.ConfigMap, error) {
	if !f.k.Exists(clientsKey + delim + profile) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}

	config := rdkafka.ConfigMap{}
	if err := flattenInto(config, f.k.Cut(defaultsKey)); err != nil {
		return nil, err
	}
	if err := flattenInto(config, f.k.Cut(clientsKey+delim+profile)); err != nil {
		return nil, err
	}
	return config, nil
}

// =============================================================================
// 内部辅助函数
// =============================================================================

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, ext)
	}
}

// flattenInto 把一段已裁剪的 koanf 树写入 config。
// 键里出现层级分隔符说明档案下有嵌套结构，直接报错。
func flattenInto(config rdkafka.ConfigMap, section *koanf.Koanf) error {
	for key, value := range section.All() {
		if strings.Contains(key, delim) {
			return fmt.Errorf("%w: nested structure under key %q",
				ErrInvalidValue, strings.ReplaceAll(key, delim, "."))
		}
		s, err := stringify(value)
		if err != nil {
			return fmt.Errorf("%w (key %q)", err, key)
		}
		config.Set(key, s)
	}
	return nil
}

// stringify 把档案标量转为 librdkafka 的字符串表示。
func stringify(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		// JSON 解析把所有数字读成 float64，整数值还原为整数形式
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, value)
	}
}

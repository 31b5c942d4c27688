package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server      ServerConfig    `mapstructure:"server"`      // 服务器配置
	Database    DatabaseConfig  `mapstructure:"database"`    // PostgreSQL配置
	Source      string          `mapstructure:"source"`      // 源端点：file:<path> 或 http[s]://host/path
	Destination string          `mapstructure:"destination"` // 目标端点：warehouse/analyze/file:<path>
	Sync        SyncConfig      `mapstructure:"sync"`        // 同步调度配置
	Publisher   PublisherConfig `mapstructure:"publisher"`   // 发布方与命名空间配置
	LogLevel    string          `mapstructure:"log_level"`   // 日志级别
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// SyncConfig 同步调度配置
type SyncConfig struct {
	Once         bool          `mapstructure:"once"`          // 只跑一轮后退出
	PeakSleep    time.Duration `mapstructure:"peak_sleep"`    // 业务高峰时段轮询间隔
	OffpeakSleep time.Duration `mapstructure:"offpeak_sleep"` // 低谷时段轮询间隔
	MaxStale     time.Duration `mapstructure:"max_stale"`     // 强制刷新阈值；声明保留，当前调度不消费
	Timezone     string        `mapstructure:"timezone"`      // 峰谷判定使用的固定时区
	Timeout      int           `mapstructure:"timeout"`       // 拉取请求超时（秒）
	Proxy        string        `mapstructure:"proxy"`         // 代理地址，可为空
}

// PublisherConfig 发布方与命名空间配置
type PublisherConfig struct {
	OrganizationID string `mapstructure:"organization_id"`  // 必填，须已注册为 News Publisher
	Affiliation    string `mapstructure:"affiliation"`      // 机构标识
	NewsURNPrefix  string `mapstructure:"news_urn_prefix"`  // 输出命名空间前缀（发布方自带前缀时被覆盖）
	InputURNPrefix string `mapstructure:"input_urn_prefix"` // 输入命名空间前缀，只处理带此前缀的存量记录
	WebURLBase     string `mapstructure:"web_url_base"`     // 展示页URL前缀
}

// Endpoint 形如 scheme:path 的端点描述
type Endpoint struct {
	Scheme string // file/http/https 或 analyze/warehouse
	Path   string // file 路径；http(s) 时为 //host/path
	URI    string // 原始串
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	setDefaults()
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("source", "file:./news.json")
	viper.SetDefault("destination", "analyze")
	viper.SetDefault("sync.peak_sleep", 10*time.Minute)
	viper.SetDefault("sync.offpeak_sleep", 60*time.Minute)
	viper.SetDefault("sync.max_stale", 24*time.Hour)
	viper.SetDefault("sync.timezone", "US/Central")
	viper.SetDefault("sync.timeout", 30)
	viper.SetDefault("publisher.web_url_base", "https://operations-api.access-ci.org/wh2/news/v1")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SOURCE_URL"); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv("DESTINATION"); v != "" {
		cfg.Destination = v
	}
	if v := os.Getenv("ORGANIZATIONID"); v != "" {
		cfg.Publisher.OrganizationID = v
	}
}

// ParseEndpoint 拆分 scheme:path；无冒号时整体视为 scheme（如 analyze/warehouse）
func ParseEndpoint(raw string) Endpoint {
	idx := strings.Index(raw, ":")
	if idx <= 0 {
		return Endpoint{Scheme: raw, URI: raw}
	}
	return Endpoint{Scheme: raw[:idx], Path: raw[idx+1:], URI: raw}
}

// SourceEndpoint 源端点
func (c *Config) SourceEndpoint() Endpoint { return ParseEndpoint(c.Source) }

// DestinationEndpoint 目标端点
func (c *Config) DestinationEndpoint() Endpoint { return ParseEndpoint(c.Destination) }

// Validate 启动期配置校验；任何一项不满足都是致命错误，进程直接退出
func (c *Config) Validate() error {
	src := c.SourceEndpoint()
	switch src.Scheme {
	case "file":
	case "http", "https":
		if !strings.HasPrefix(src.Path, "//") {
			return fmt.Errorf("source URL 的 scheme 后必须跟 \"//\": %s", c.Source)
		}
	default:
		return fmt.Errorf("source 必须是 {file, http, https} 之一: %s", c.Source)
	}

	dest := c.DestinationEndpoint()
	switch dest.Scheme {
	case "file", "analyze", "warehouse":
	default:
		return fmt.Errorf("destination 必须是 {file, analyze, warehouse} 之一: %s", c.Destination)
	}

	if src.Scheme == "file" && dest.Scheme == "file" {
		return fmt.Errorf("source 和 destination 不能同时为 file")
	}
	if c.Publisher.OrganizationID == "" {
		return fmt.Errorf("缺少必填配置 publisher.organization_id")
	}
	if c.Publisher.NewsURNPrefix == "" {
		return fmt.Errorf("缺少必填配置 publisher.news_urn_prefix")
	}
	return nil
}

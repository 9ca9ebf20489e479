package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
	Address     string `yaml:"address"`     // HTTP 监听地址 (例如: ":8080")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// AuthConfig 定义了认证相关的配置。
type AuthConfig struct {
	JwtSecret string `yaml:"jwtSecret"` // JWT 密钥
	TokenTTL  int    `yaml:"tokenTTL"`  // JWT 令牌的有效期（秒）
}

// MySQLConfig 定义了 MySQL 数据库的连接配置。
type MySQLConfig struct {
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// RedisConfig 定义了 Redis 缓存的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
	TreeTTL  int    `yaml:"treeTTL"`  // 文件夹树缓存的有效期（秒），0 表示不过期
}

// MinIOConfig 定义了 MinIO 对象存储的连接配置。
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`  // MinIO 服务端点
	AccessKey string `yaml:"accessKey"` // 访问密钥
	SecretKey string `yaml:"secretKey"` // Secret 密钥
	Bucket    string `yaml:"bucket"`    // 头像存储桶名称
	Secure    bool   `yaml:"secure"`    // 是否使用HTTPS
}

// DatabaseConfigs 包含所有存储后端的配置。
type DatabaseConfigs struct {
	MySQL MySQLConfig `yaml:"mysql"` // MySQL 数据库配置
	Redis RedisConfig `yaml:"redis"` // Redis 缓存配置
	MinIO MinIOConfig `yaml:"minio"` // MinIO 对象存储配置
}

// StorageConfig 定义了本地文件存储的配置。
type StorageConfig struct {
	Root string `yaml:"root"` // 文件物理存储的根目录
}

// RetryConfig 定义了出站 HTTP 调用的重试策略。
type RetryConfig struct {
	MaxAttempts int `yaml:"maxAttempts"` // 最大尝试次数
	DelayMillis int `yaml:"delayMillis"` // 两次尝试之间的固定间隔（毫秒）
}

// RagConfig 定义了外部 RAG 服务的客户端配置。
type RagConfig struct {
	Enabled        bool        `yaml:"enabled"`        // 是否启用 RAG 服务
	BaseURL        string      `yaml:"baseUrl"`        // RAG 服务基础地址 (例如: "http://localhost:5000")
	ConnectTimeout int         `yaml:"connectTimeout"` // 连接超时（毫秒）
	ReadTimeout    int         `yaml:"readTimeout"`    // 读取超时（毫秒）
	Retry          RetryConfig `yaml:"retry"`          // 重试策略
	RebuildWorkers int         `yaml:"rebuildWorkers"` // 向量库重建任务池的 worker 数量
	RebuildQueue   int         `yaml:"rebuildQueue"`   // 向量库重建任务队列的容量
}

// RateLimiterConfig 定义了限流器的配置。
type RateLimiterConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Algorithm string  `yaml:"algorithm"` // 支持: "fixedWindow", "tokenBucket"
	Limit     int     `yaml:"limit"`     // fixedWindow: 窗口内最大请求数
	Window    string  `yaml:"window"`    // fixedWindow: 窗口长度，例如 "1m"
	Rate      float64 `yaml:"rate"`      // tokenBucket: 每秒令牌数
	Capacity  int     `yaml:"capacity"`  // tokenBucket: 桶容量
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`        // 应用程序信息
	Logger     LoggerConfig     `yaml:"logger"`     // 日志记录器配置
	Auth       AuthConfig       `yaml:"auth"`       // 认证配置
	Databases  DatabaseConfigs  `yaml:"databases"`  // 存储后端配置
	Storage    StorageConfig    `yaml:"storage"`    // 本地文件存储配置
	Rag        RagConfig        `yaml:"rag"`        // RAG 客户端配置
	Middleware MiddlewareConfig `yaml:"middleware"` // 中间件配置
}

// LoadConfig 从指定路径加载并解析 YAML 配置文件。
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	return &cfg, nil
}

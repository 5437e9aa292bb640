package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 4000
}

// DatabaseConfig 定义关系型存储配置（支持 SQLite 和 PostgreSQL）
type DatabaseConfig struct {
	Type            string        // 数据库类型: "sqlite"（默认）或 "postgres"；留空使用内存存储
	Path            string        // SQLite 数据库文件路径
	DSN             string        // PostgreSQL 连接字符串
	MaxOpenConns    int           // 最大打开连接数，默认 25（SQLite 强制为 1）
	MaxIdleConns    int           // 最大空闲连接数，默认 5
	ConnMaxLifetime time.Duration // 连接最大生命周期，默认 5 分钟
}

// StorageConfig 定义附件与备份的文件系统存储配置
type StorageConfig struct {
	UploadDir string // 附件上传目录，默认 "./uploads"
	BackupDir string // 备份快照目录，默认 "./backups"
}

// BackupConfig 定义自动备份任务配置
type BackupConfig struct {
	AutoInterval time.Duration // 自动备份间隔，0 表示禁用（默认）
}

// JWTConfig 定义 JWT 认证相关配置
type JWTConfig struct {
	Secret string        // JWT 签名密钥，必须至少 32 字符
	Issuer string        // JWT 签发者标识，默认 "aparichit"
	Expiry time.Duration // 令牌有效期，默认 12 小时
}

// AdminConfig 定义管理员账户的播种配置
type AdminConfig struct {
	Username string // 播种用户名，默认 "admin"
	Password string // 播种密码（仅在账户不存在时使用一次）
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	File        string // 日志文件路径，为空时只写标准输出
}

// RateLimitConfig 定义请求限流配置
type RateLimitConfig struct {
	RequestsPerMinute int // 单个 IP 每分钟允许的请求数，默认 60
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server    ServerConfig    // HTTP 服务器配置
	Database  DatabaseConfig  // 关系型存储配置
	Storage   StorageConfig   // 文件系统存储配置
	Backup    BackupConfig    // 自动备份配置
	JWT       JWTConfig       // JWT 认证配置
	Admin     AdminConfig     // 管理员播种配置
	CORS      CORSConfig      // 跨域配置
	Log       LogConfig       // 日志配置
	RateLimit RateLimitConfig // 限流配置
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量（最高优先级）
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: APARICHIT_
// 例如: APARICHIT_SERVER_PORT, APARICHIT_JWT_SECRET
//
// 返回值:
//   - *Config: 加载成功的配置对象
//   - error: 配置验证失败时返回错误
func Load() (*Config, error) {
	// 尝试加载 .env 文件（静默失败，因为 .env 文件是可选的）
	loadEnvFile()

	viper.SetEnvPrefix("aparichit")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 4000)
	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.path", "./data/complaints.db")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("storage.upload_dir", "./uploads")
	viper.SetDefault("storage.backup_dir", "./backups")
	viper.SetDefault("backup.auto_interval", "0")
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.issuer", "aparichit")
	viper.SetDefault("jwt.expiry", "12h")
	viper.SetDefault("admin.username", "admin")
	viper.SetDefault("admin.password", "aparichit@2026")
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")
	viper.SetDefault("ratelimit.requests_per_minute", 60)

	connMaxLifetime, err := time.ParseDuration(viper.GetString("database.conn_max_lifetime"))
	if err != nil {
		connMaxLifetime = 5 * time.Minute
	}

	autoInterval, err := time.ParseDuration(viper.GetString("backup.auto_interval"))
	if err != nil || autoInterval < 0 {
		autoInterval = 0
	}

	expiry, err := time.ParseDuration(viper.GetString("jwt.expiry"))
	if err != nil {
		expiry = 12 * time.Hour
	}

	jwtSecret := viper.GetString("jwt.secret")

	// 安全检查：禁止使用默认的 JWT secret
	if jwtSecret == "change-me-in-production" {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret cannot be the default value. Please set APARICHIT_JWT_SECRET environment variable")
	}

	// JWT secret 必须至少 32 字符
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret must be at least 32 characters long")
	}

	dbType := strings.ToLower(viper.GetString("database.type"))
	switch dbType {
	case "", "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database.type: %s (supported: sqlite, postgres)", dbType)
	}

	if dbType == "postgres" && viper.GetString("database.dsn") == "" {
		return nil, fmt.Errorf("database.dsn is required when database.type is postgres")
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	rpm := viper.GetInt("ratelimit.requests_per_minute")
	if rpm <= 0 {
		rpm = 60
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		Database: DatabaseConfig{
			Type:            dbType,
			Path:            viper.GetString("database.path"),
			DSN:             viper.GetString("database.dsn"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Storage: StorageConfig{
			UploadDir: viper.GetString("storage.upload_dir"),
			BackupDir: viper.GetString("storage.backup_dir"),
		},
		Backup: BackupConfig{
			AutoInterval: autoInterval,
		},
		JWT: JWTConfig{
			Secret: jwtSecret,
			Issuer: viper.GetString("jwt.issuer"),
			Expiry: expiry,
		},
		Admin: AdminConfig{
			Username: viper.GetString("admin.username"),
			Password: viper.GetString("admin.password"),
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			File:        viper.GetString("log.file"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: rpm,
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 加载顺序：
//  1. 当前目录的 .env
//  2. 父目录的 .env（用于从 server/ 子目录运行的情况）
//
// 注意：
//   - 如果文件不存在，静默失败（.env 是可选的）
//   - 环境变量不会被覆盖（已存在的环境变量优先级更高）
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

type MainConfig struct {
	AppName        string   `toml:"appName"`
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	Env            string   `toml:"env"`
	EnableAdminAPI bool     `toml:"enableAdminAPI"`
	AllowedOrigins []string `toml:"allowedOrigins"`
	ForceHTTPS     bool     `toml:"forceHTTPS"`
}

// IsProduction 生产环境关闭 dev 路由
func (m MainConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(m.Env), "production")
}

type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type LogConfig struct {
	LogPath    string `toml:"logPath"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"maxSizeMB"`
	MaxBackups int    `toml:"maxBackups"`
	MaxAgeDays int    `toml:"maxAgeDays"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type MilvusConfig struct {
	Address        string `toml:"address"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	DBName         string `toml:"dbName"`
	CollectionName string `toml:"collectionName"`
	VectorDim      int    `toml:"vectorDim"`
}

type KafkaConfig struct {
	Brokers         []string `toml:"brokers"`
	ClientID        string   `toml:"clientID"`
	IndexTopic      string   `toml:"indexTopic"`
	ConsumerGroupID string   `toml:"consumerGroupID"`
	Partitions      int32    `toml:"partitions"`
	Replication     int16    `toml:"replication"`
}

// Enabled 配置了 broker 才启用索引任务队列
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && strings.TrimSpace(k.IndexTopic) != ""
}

type AIEmbeddingConfig struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"apiKey"`
	BaseURL        string `toml:"baseURL"`
	Model          string `toml:"model"`
	Dimensions     int    `toml:"dimensions"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

type AIChatModelConfig struct {
	Provider        string `toml:"provider"`
	BaseURL         string `toml:"baseURL"`
	Region          string `toml:"region"`
	TimeoutSeconds  int    `toml:"timeoutSeconds"`
	RetryTimes      int    `toml:"retryTimes"`
	ByAzure         bool   `toml:"byAzure"`
	AzureAPIVersion string `toml:"azureApiVersion"`
}

type AIConfig struct {
	Embedding            AIEmbeddingConfig `toml:"embedding"`
	ChatModel            AIChatModelConfig `toml:"chatModel"`
	AnswerTimeoutSeconds int               `toml:"answerTimeoutSeconds"`
	// FallbackAPIKey 机器人未配置密钥时 /ai/answer 使用的全局密钥
	FallbackAPIKey string `toml:"fallbackApiKey"`
}

type LineConfig struct {
	DefaultTenant       string `toml:"defaultTenant"`
	DevSkipVerify       bool   `toml:"devSkipVerify"`
	APIBaseURL          string `toml:"apiBaseURL"`
	ReplyTimeoutSeconds int    `toml:"replyTimeoutSeconds"`
	MaxBodyBytes        int64  `toml:"maxBodyBytes"`
}

type WebhookConfig struct {
	DedupeWindowMinutes int `toml:"dedupeWindowMinutes"`
	StatRetryAttempts   int `toml:"statRetryAttempts"`
}

type KnowledgeConfig struct {
	// Backend 取值 "mysql"（默认，余弦扫描）或 "milvus"
	Backend        string `toml:"backend"`
	ChunkSize      int    `toml:"chunkSize"`
	ChunkOverlap   int    `toml:"chunkOverlap"`
	Splitter       string `toml:"splitter"`
	CandidateLimit int    `toml:"candidateLimit"`

	// 卡在 pending/indexing 超过 StaleAfterMinutes 的文档由定时任务重新派发
	SweepIntervalMinutes int `toml:"sweepIntervalMinutes"`
	StaleAfterMinutes    int `toml:"staleAfterMinutes"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

type RateLimitConfig struct {
	Enabled       bool `toml:"enabled"`
	WindowSeconds int  `toml:"windowSeconds"`
	Max           int  `toml:"max"`
}

type AdminConfig struct {
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	JwtConfig       `toml:"jwtConfig"`
	MilvusConfig    `toml:"milvusConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	AIConfig        `toml:"aiConfig"`
	LogConfig       `toml:"logConfig"`
	RedisConfig     `toml:"redisConfig"`
	LineConfig      `toml:"lineConfig"`
	WebhookConfig   `toml:"webhookConfig"`
	KnowledgeConfig `toml:"knowledgeConfig"`
	RateLimitConfig `toml:"rateLimitConfig"`
	AdminConfig     `toml:"adminConfig"`
}

const DefaultPath = "configs/config_local.toml"

// DefaultMaxBodyBytes webhook 请求体上限 100KB
const DefaultMaxBodyBytes int64 = 100 << 10

// Load 读取 toml 配置并补全默认值；path 为空时依次尝试 BOTDESK_CONFIG 与默认路径
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv("BOTDESK_CONFIG"))
	}
	if path == "" {
		path = DefaultPath
	}
	conf := new(Config)
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	conf.ApplyDefaults()
	return conf, nil
}

// Default 返回只包含默认值的配置，测试和无配置文件时使用
func Default() *Config {
	conf := new(Config)
	conf.ApplyDefaults()
	return conf
}

func (c *Config) ApplyDefaults() {
	if c.MainConfig.AppName == "" {
		c.MainConfig.AppName = "BotDesk"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8080
	}
	if c.JwtConfig.ExpireHours <= 0 {
		c.JwtConfig.ExpireHours = 24
	}
	if c.JwtConfig.Issuer == "" {
		c.JwtConfig.Issuer = c.MainConfig.AppName
	}
	if c.LineConfig.DefaultTenant == "" {
		c.LineConfig.DefaultTenant = "bn9"
	}
	if c.LineConfig.APIBaseURL == "" {
		c.LineConfig.APIBaseURL = "https://api.line.me"
	}
	if c.LineConfig.ReplyTimeoutSeconds <= 0 {
		c.LineConfig.ReplyTimeoutSeconds = 10
	}
	if c.LineConfig.MaxBodyBytes <= 0 {
		c.LineConfig.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.WebhookConfig.DedupeWindowMinutes <= 0 {
		c.WebhookConfig.DedupeWindowMinutes = 15
	}
	if c.WebhookConfig.StatRetryAttempts <= 0 {
		c.WebhookConfig.StatRetryAttempts = 3
	}
	if c.AIConfig.AnswerTimeoutSeconds <= 0 {
		c.AIConfig.AnswerTimeoutSeconds = 15
	}
	if c.AIConfig.Embedding.Dimensions <= 0 {
		c.AIConfig.Embedding.Dimensions = 1536
	}
	if c.MilvusConfig.VectorDim <= 0 {
		c.MilvusConfig.VectorDim = c.AIConfig.Embedding.Dimensions
	}
	if c.MilvusConfig.CollectionName == "" {
		c.MilvusConfig.CollectionName = "knowledge_chunk"
	}
	if c.KnowledgeConfig.Backend == "" {
		c.KnowledgeConfig.Backend = "mysql"
	}
	if c.KnowledgeConfig.ChunkSize <= 0 {
		c.KnowledgeConfig.ChunkSize = 800
	}
	if c.KnowledgeConfig.CandidateLimit <= 0 {
		c.KnowledgeConfig.CandidateLimit = 500
	}
	if c.KnowledgeConfig.SweepIntervalMinutes <= 0 {
		c.KnowledgeConfig.SweepIntervalMinutes = 5
	}
	if c.KnowledgeConfig.StaleAfterMinutes <= 0 {
		c.KnowledgeConfig.StaleAfterMinutes = 10
	}
	if c.KafkaConfig.ConsumerGroupID == "" {
		c.KafkaConfig.ConsumerGroupID = c.MainConfig.AppName + "-knowledge-index"
	}
	if c.RateLimitConfig.WindowSeconds <= 0 {
		c.RateLimitConfig.WindowSeconds = 60
	}
	if c.RateLimitConfig.Max <= 0 {
		c.RateLimitConfig.Max = 120
	}
}

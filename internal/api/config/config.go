package config

// Config 配置主体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Security   SecurityConfig   `mapstructure:"security"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Post       PostConfig       `mapstructure:"post"`
	Content    ContentConfig    `mapstructure:"content"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Cron       CronConfig       `mapstructure:"cron"`
	Logstash   LogstashConfig   `mapstructure:"logstash"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// StorageConfig 存储配置，Driver 取值 badger / redis / mongo / mysql
type StorageConfig struct {
	Driver        string       `mapstructure:"driver"`
	MaxValueBytes int          `mapstructure:"max_value_bytes"`
	Badger        BadgerConfig `mapstructure:"badger"`
	Redis         RedisConfig  `mapstructure:"redis"`
	Mongo         MongoConfig  `mapstructure:"mongo"`
	DB            DBConfig     `mapstructure:"database"`
}

type BadgerConfig struct {
	Path       string `mapstructure:"path"`
	InMemory   bool   `mapstructure:"in_memory"`
	SyncWrites bool   `mapstructure:"sync_writes"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type MongoConfig struct {
	URL        string `mapstructure:"url"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type SecurityConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpireHours int    `mapstructure:"jwt_expire_hours"`
}

// ModerationConfig 管理员二次确认密钥
type ModerationConfig struct {
	AdminKey string `mapstructure:"admin_key"`
}

// IdentityConfig Strategy 取值 seq / uuid
type IdentityConfig struct {
	Strategy string `mapstructure:"strategy"`
}

type PostConfig struct {
	Categories []string `mapstructure:"categories"`
}

// ContentConfig 静态帖子内容来源，Driver 取值 none / http / minio
type ContentConfig struct {
	Driver  string      `mapstructure:"driver"`
	BaseURL string      `mapstructure:"base_url"`
	Timeout int         `mapstructure:"timeout"`
	MinIO   MinIOConfig `mapstructure:"minio"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type KafkaConfig struct {
	Enable  bool       `mapstructure:"enable"`
	Brokers []string   `mapstructure:"brokers"`
	Topic   string     `mapstructure:"topic"`
	Sasl    SaslConfig `mapstructure:"sasl"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type CronConfig struct {
	CacheRefresh string `mapstructure:"cache_refresh"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

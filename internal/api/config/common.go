package config

// Config 配置主体
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	DB          DBConfig          `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Logstash    LogstashConfig    `mapstructure:"logstash"`
	Analytics   AnalyticsConfig   `mapstructure:"analytics"`
	Interaction InteractionConfig `mapstructure:"interaction"`
	Cron        CronConfig        `mapstructure:"cron"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`

	KafkaInteractionConsumer KafkaConsumerTopic `mapstructure:"kafka_interaction_consumer"`
	KafkaEngagementConsumer  KafkaConsumerTopic `mapstructure:"kafka_engagement_consumer"`
	KafkaFollowConsumer      KafkaConsumerTopic `mapstructure:"kafka_follow_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DBConfig 数据库配置，driver 取 mysql 或 sqlite
type DBConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	Timeout  int    `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Issuer     string `mapstructure:"issuer"`
	ExpireHour int    `mapstructure:"expire_hour"`
}

// LogstashConfig 远程日志，地址为空时只输出到 stdout
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type AnalyticsConfig struct {
	CacheTTL        int `mapstructure:"cache_ttl"` // 秒
	TopContentLimit int `mapstructure:"top_content_limit"`
}

// InteractionConfig lock_mode: local | redis
type InteractionConfig struct {
	LockMode    string `mapstructure:"lock_mode"`
	LockTTL     int    `mapstructure:"lock_ttl"`     // 秒
	LockTimeout int    `mapstructure:"lock_timeout"` // 毫秒，等待锁的最长时间
}

type CronConfig struct {
	ContentMetricSpec string `mapstructure:"content_metric_spec"`
}

type KafkaConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaConsumerTopic struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Mongo struct {
		URI        string `mapstructure:"uri"`
		Database   string `mapstructure:"database"`
		Collection string `mapstructure:"collection"`
	} `mapstructure:"mongo"`
	Server struct {
		Port        string `mapstructure:"port"`
		MetricsPort string `mapstructure:"metrics_port"`
		AdminSecret string `mapstructure:"admin_secret"`
		TempDir     string `mapstructure:"temp_dir"`
	} `mapstructure:"server"`
	Jukebox struct {
		TrackCooldownMinutes int  `mapstructure:"track_cooldown_minutes"`
		UserCooldownMinutes  int  `mapstructure:"user_cooldown_minutes"`
		HistoryMaxSize       int  `mapstructure:"history_max_size"`
		BackgroundQueueSize  int  `mapstructure:"background_queue_size"`
		SweepIntervalMinutes int  `mapstructure:"sweep_interval_minutes"`
		ShuffleCatalog       bool `mapstructure:"shuffle_catalog"`
	} `mapstructure:"jukebox"`
	B2 struct {
		KeyID        string `mapstructure:"key_id"`
		AppKey       string `mapstructure:"app_key"`
		Endpoint     string `mapstructure:"endpoint"`
		Region       string `mapstructure:"region"`
		BucketIngest string `mapstructure:"bucket_ingest"`
		BucketProd   string `mapstructure:"bucket_prod"`
		PublicBase   string `mapstructure:"public_base"`
	} `mapstructure:"b2"`
	Ingester struct {
		PollingInterval int `mapstructure:"polling_interval_seconds"`
	} `mapstructure:"ingester"`
}

func Load() *Config {
	viper.SetEnvPrefix("EATUNE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("mongo.uri")
	viper.BindEnv("mongo.database")
	viper.BindEnv("mongo.collection")
	viper.BindEnv("server.port")
	viper.BindEnv("server.metrics_port")
	viper.BindEnv("server.admin_secret")
	viper.BindEnv("server.temp_dir")

	// Jukebox Bindings
	viper.BindEnv("jukebox.track_cooldown_minutes")
	viper.BindEnv("jukebox.user_cooldown_minutes")
	viper.BindEnv("jukebox.history_max_size")
	viper.BindEnv("jukebox.background_queue_size")
	viper.BindEnv("jukebox.sweep_interval_minutes")
	viper.BindEnv("jukebox.shuffle_catalog")

	// Ingester / B2 Bindings
	viper.BindEnv("b2.key_id")
	viper.BindEnv("b2.app_key")
	viper.BindEnv("b2.endpoint")
	viper.BindEnv("b2.region")
	viper.BindEnv("b2.bucket_ingest")
	viper.BindEnv("b2.bucket_prod")
	viper.BindEnv("b2.public_base")
	viper.BindEnv("ingester.polling_interval_seconds")

	// Defaults
	viper.SetDefault("mongo.database", "eatune")
	viper.SetDefault("mongo.collection", "tracks")
	viper.SetDefault("server.port", ":3000")
	viper.SetDefault("server.metrics_port", ":9091")
	viper.SetDefault("server.temp_dir", "/tmp/")

	// Jukebox Defaults (tuned for a bar-sized venue)
	viper.SetDefault("jukebox.track_cooldown_minutes", 15)
	viper.SetDefault("jukebox.user_cooldown_minutes", 5)
	viper.SetDefault("jukebox.history_max_size", 30)
	viper.SetDefault("jukebox.background_queue_size", 4)
	viper.SetDefault("jukebox.sweep_interval_minutes", 5)
	viper.SetDefault("jukebox.shuffle_catalog", true)

	viper.SetDefault("ingester.polling_interval_seconds", 30)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if cfg.Mongo.URI == "" {
		log.Fatal("Critical: Mongo URI is missing (EATUNE_MONGO_URI)")
	}

	return &cfg
}

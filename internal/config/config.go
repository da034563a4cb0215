package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`

	ScratchDir    string        `mapstructure:"scratch_dir"`
	EngineTimeout time.Duration `mapstructure:"engine_timeout"`
	HintLanguages []string      `mapstructure:"hint_languages"`
	Keywords      []string      `mapstructure:"keywords"`

	DeepgramAPIKey string `mapstructure:"deepgram_api_key"`
	OpenAIAPIKey   string `mapstructure:"openai_api_key"`

	LiveKitURL       string `mapstructure:"livekit_url"`
	LiveKitAPIKey    string `mapstructure:"livekit_api_key"`
	LiveKitAPISecret string `mapstructure:"livekit_api_secret"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 1<<20)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "parley")
	v.SetDefault("scratch_dir", "")
	v.SetDefault("engine_timeout", "15s")
	v.SetDefault("hint_languages", []string{"en", "hi", "gu", "bn", "ta", "te", "ml", "mr", "kn", "pa", "ur"})
	v.SetDefault("keywords", []string{"attendance", "homework", "syllabus", "semester"})

	// Secrets come from the environment, never from the yaml file.
	_ = v.BindEnv("secret", "PARLEY_SECRET")
	_ = v.BindEnv("mongo_uri", "MONGO_URI")
	_ = v.BindEnv("deepgram_api_key", "DEEPGRAM_API_KEY")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("livekit_url", "LIVEKIT_URL")
	_ = v.BindEnv("livekit_api_key", "LIVEKIT_API_KEY")
	_ = v.BindEnv("livekit_api_secret", "LIVEKIT_API_SECRET")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d\n", cfg.Mode, cfg.Port)
	return &cfg, nil
}

package config

import (
	"github.com/spf13/viper"
	"sync"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("openrouter_api_key", "OPENROUTER_API_KEY")
		viper.BindEnv("openrouter_base_url", "OPENROUTER_BASE_URL")
		viper.BindEnv("main_chat_id", "MAIN_CHAT_ID")
		viper.BindEnv("admin_chat_id", "ADMIN_CHAT_ID")
		viper.BindEnv("retention_days", "RETENTION_DAYS")
		viper.BindEnv("db_path", "DB_PATH")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("openrouter_base_url", "https://openrouter.ai/api/v1")
		viper.SetDefault("retention_days", 7)
		viper.SetDefault("db_path", "/app/data/bot.db")
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetInt64(key string) int64 {
	InitConfig()
	return viper.GetInt64(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

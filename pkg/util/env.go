package util

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv loads ".env.<env>" falling back to ".env". Missing files are not
// an error in production, where everything comes from the real environment.
func LoadEnv(env string) error {
	if env != "" {
		if err := godotenv.Load(fmt.Sprintf(".env.%s", env)); err == nil {
			return nil
		}
	}
	return godotenv.Load()
}

func GetEnv(key string) string { return os.Getenv(key) }

func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetIntEnv(key string) int64 { return cast.ToInt64(os.Getenv(key)) }

func GetBoolEnv(key string) bool { return cast.ToBool(os.Getenv(key)) }

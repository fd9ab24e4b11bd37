package main

import (
	"os"

	"github.com/joho/godotenv"
)

// loadEnv 读取工作目录下的.env，不存在时只使用系统环境变量
func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using system environment variables")
	}
}

func getEnvString(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

// orEnv 命令行参数为空时取环境变量
func orEnv(flagValue string, key string) string {
	if flagValue != "" {
		return flagValue
	}
	return getEnvString(key, "")
}

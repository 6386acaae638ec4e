package main

import (
	"log"

	"github.com/joho/godotenv"

	corecmd "recbot/core/cmd"
	"recbot/internal/bot"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: bot.Bootstrap,
	})
	if err != nil {
		log.Fatalf("recbot: %v", err)
	}
}

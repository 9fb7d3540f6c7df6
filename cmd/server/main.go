package main

import (
	"log"
	"os"

	"github.com/alex-user-go/hotelsearch/internal/app"
	"github.com/alex-user-go/hotelsearch/internal/config"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
	if err := app.Run(cfg); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

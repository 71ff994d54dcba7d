package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/pageclean/internal/server"
	"github.com/dmitrijs2005/pageclean/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Printf("%v", err)
		return
	}

	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}

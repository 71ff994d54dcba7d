package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/pageclean/internal/admin"
	"github.com/dmitrijs2005/pageclean/internal/flagx"
	"github.com/dmitrijs2005/pageclean/internal/server"
	"github.com/dmitrijs2005/pageclean/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	cmds := admin.NewCommands(app, cfg, os.Stdout)
	err = cmds.Run(ctx, flagx.Positional(os.Args[1:]))

	if cerr := app.Close(); cerr != nil {
		log.Printf("closing database: %v", cerr)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}

}

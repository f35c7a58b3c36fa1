package main

import (
	"log"
	"os"

	"github.com/arnold/studytrack-api/internal/config"
	"github.com/arnold/studytrack-api/internal/database"
	"github.com/arnold/studytrack-api/internal/logger"
	"github.com/arnold/studytrack-api/internal/store"
)

func main() {
	std := log.New(os.Stderr, "ADMIN : ", log.LstdFlags)
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		std.Fatal(err)
	}

	cli := commandLine{
		db:    db,
		store: store.New(db, logger.New(std, cfg)),
		out:   os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("error: %s", err)
		}
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/storage/database"
	"github.com/trezcool/gradebook/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = database.Ping(ctx, db); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	// start CLI
	cli := commandLine{
		db:      db,
		accRepo: sqlxrepos.NewAccountRepository(db),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}

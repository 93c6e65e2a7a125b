package main

import (
	"context"
	"flag"
	"log"
	"os"

	"nimbus-pos/internal/config"
	"nimbus-pos/internal/db"
	"nimbus-pos/internal/seed"
)

func main() {
	owner := flag.String("owner", "demo-owner", "user id that owns the demo store")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: 2, ApplicationName: "nimbus-pos-seed"})
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	storeID, err := seed.Apply(ctx, pool, *owner)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied store_id=%s owner=%s", storeID, *owner)
}

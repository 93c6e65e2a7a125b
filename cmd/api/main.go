package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nimbus-pos/internal/config"
	"nimbus-pos/internal/db"
	"nimbus-pos/internal/httpserver"
	"nimbus-pos/internal/repository/cartstate"
	categoryrepo "nimbus-pos/internal/repository/category"
	memberrepo "nimbus-pos/internal/repository/member"
	productrepo "nimbus-pos/internal/repository/product"
	salerepo "nimbus-pos/internal/repository/sale"
	storerepo "nimbus-pos/internal/repository/store"
	categorysvc "nimbus-pos/internal/service/category"
	checkoutsvc "nimbus-pos/internal/service/checkout"
	productsvc "nimbus-pos/internal/service/product"
	reportsvc "nimbus-pos/internal/service/report"
	staffsvc "nimbus-pos/internal/service/staff"
	storesvc "nimbus-pos/internal/service/store"
	terminalsvc "nimbus-pos/internal/service/terminal"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{
		MaxConns:        int32(cfg.DBMaxConns),
		ApplicationName: "nimbus-pos-api",
	})
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	carts, err := cartstate.Open(ctx, cartstate.Options{
		Backend:    cfg.CartBackend,
		SQLitePath: cfg.CartSQLitePath,
		RedisAddr:  cfg.RedisAddr,
		TTL:        cfg.CartTTL,
		Pool:       dbpool,
	}, log.New(os.Stdout, "[cartstate] ", log.LstdFlags|log.LUTC))
	if err != nil {
		logger.Fatalf("open cart state (%s): %v", cfg.CartBackend, err)
	}
	defer carts.Close()

	storeRepo := storerepo.NewPostgres(dbpool, logger)
	memberRepo := memberrepo.NewPostgres(dbpool, logger)
	categoryRepo := categoryrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	saleRepo := salerepo.NewPostgres(dbpool, logger)

	terminalService := terminalsvc.New(carts, productRepo, logger)

	srv, err := httpserver.New(logger, httpserver.Deps{
		StoreSvc:    storesvc.New(storeRepo, memberRepo),
		CategorySvc: categorysvc.New(categoryRepo),
		ProductSvc:  productsvc.New(productRepo, cfg.LowStockThreshold),
		StaffSvc:    staffsvc.New(memberRepo),
		TerminalSvc: terminalService,
		CheckoutSvc: checkoutsvc.New(terminalService, productRepo, saleRepo, logger),
		ReportSvc:   reportsvc.New(saleRepo, cfg.Location()),
	}, httpserver.Options{
		Addr:        cfg.HTTPAddr,
		CORSOrigins: cfg.CORSOrigins,
		Ready: map[string]httpserver.Checker{
			"postgres": dbpool,
			"carts":    carts,
		},
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s (cart backend %s)", cfg.HTTPAddr, cfg.CartBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

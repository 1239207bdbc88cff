package main

import (
	"context"
	"fmt"

	"github.com/govalues/decimal"
	"github.com/soktep/khqrpay/internal/adapter/client/bakong"
	"github.com/soktep/khqrpay/internal/adapter/config"
	"github.com/soktep/khqrpay/internal/adapter/handler/http"
	"github.com/soktep/khqrpay/internal/adapter/logger"
	"github.com/soktep/khqrpay/internal/adapter/qr"
	"github.com/soktep/khqrpay/internal/adapter/scheduler"
	"github.com/soktep/khqrpay/internal/adapter/storage"
	"github.com/soktep/khqrpay/internal/adapter/storage/repository"
	"github.com/soktep/khqrpay/internal/core/domain"
	"github.com/soktep/khqrpay/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("order repo creating error", zap.Error(err))
		return
	}

	verifier, err := bakong.NewClient(conf.Bakong, log.Named("Bakong"))
	if err != nil {
		log.Error("verification client creating error", zap.Error(err))
		return
	}

	merchant := &domain.Merchant{
		AccountID:    conf.Merchant.AccountID,
		ProviderID:   conf.Merchant.ProviderID,
		Name:         conf.Merchant.Name,
		City:         conf.Merchant.City,
		CategoryCode: conf.Merchant.CategoryCode,
		CountryCode:  conf.Merchant.CountryCode,
		StoreLabel:   conf.Merchant.StoreLabel,
		Phone:        conf.Merchant.Phone,
	}

	sched := scheduler.NewScheduler(conf.Payment, log.Named("Scheduler"))

	svc, err := service.NewService(repo, verifier, sched, merchant,
		conf.Payment.ExpiryWindow, log.Named("Service"))
	if err != nil {
		log.Error("order service creating error", zap.Error(err))
		return
	}

	// Pick polling back up for orders that were pending before a restart.
	if err := sched.Resume(ctx, svc); err != nil {
		log.Error("resume pending orders error", zap.Error(err))
		return
	}
	sched.Run(ctx, svc, conf.Payment.Workers)

	rate, err := decimal.Parse(conf.Payment.USDKHRRate)
	if err != nil {
		log.Error("exchange rate config error", zap.Error(err))
		return
	}

	orderHandler, err := http.NewOrderHandler(svc, qr.NewRenderer(), rate, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	adminHandler, err := http.NewAdminHandler(svc, log.Named("Admin handler"))
	if err != nil {
		log.Error("admin handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.HTTP, orderHandler, adminHandler)
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}

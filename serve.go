package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dilshat/sms-responder/controller"
	"github.com/dilshat/sms-responder/conversation"
	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/identity"
	"github.com/dilshat/sms-responder/log"
	"github.com/dilshat/sms-responder/notify"
	"github.com/dilshat/sms-responder/seed"
	"github.com/dilshat/sms-responder/service"
	"github.com/dilshat/sms-responder/sms"
	"github.com/dilshat/sms-responder/util"
	"github.com/dilshat/sms-responder/worker"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server and the processing workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	//create db client
	dbClient, err := dao.GetClient(cfg.DBPath)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	carrierDao := dao.NewCarrierDao(dbClient)
	siteDao := dao.NewSiteDao(dbClient)
	subscriberDao := dao.NewSubscriberDao(dbClient)
	consumerDao := dao.NewConsumerDao(dbClient)
	outboundDao := dao.NewOutboundDao(dbClient)

	if !util.IsBlank(cfg.SeedFile) {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err = seed.Apply(f, siteDao, carrierDao); err != nil {
			return err
		}
		logger.Info("seed applied", zap.String("file", cfg.SeedFile))
	}

	templates, err := sms.NewTemplates(cfg.Brand)
	if err != nil {
		return err
	}

	//create carrier api client
	carrierClient := sms.NewClient(cfg.SendURL, cfg.LookupURL, cfg.LookupUser, cfg.LookupPassword, cfg.CarrierTimeout)

	var lookup identity.CarrierLookup
	if !util.IsBlank(cfg.LookupURL) {
		lookup = carrierClient
	}

	limit := rate.Inf
	if cfg.TrxPerSec > 0 {
		limit = rate.Limit(cfg.TrxPerSec)
	}

	var smsService service.Service
	pool := worker.NewPool(cfg.Workers, cfg.QueueSize, cfg.ProcessTimeout, func(ctx context.Context, inboundId uint32) error {
		return smsService.Process(ctx, inboundId)
	}, logger)

	smsService = service.NewService(service.Deps{
		InboundDao:  dao.NewInboundDao(dbClient),
		OutboundDao: outboundDao,
		ReportDao:   dao.NewReportDao(dbClient),
		Resolver: identity.NewResolver(dao.NewPhoneDao(dbClient), subscriberDao, consumerDao, carrierDao,
			lookup, cfg.DefaultCarrier, logger),
		Handler: conversation.NewHandler(subscriberDao, consumerDao, siteDao,
			notify.New(cfg.SMTP, cfg.Brand, logger), cfg.DefaultSiteId, logger),
		Dispatcher: sms.NewDispatcher(carrierClient, templates, carrierDao, outboundDao, dao.NewResponseDao(dbClient),
			rate.NewLimiter(limit, 1), cfg.ShortCode, logger),
		Submitter:       pool,
		Logger:          logger,
		NetworkAliases:  cfg.NetworkAliases,
		SmsMaxLen:       cfg.SmsMaxLen,
		ReportStoreDays: cfg.ReportStoreDays,
	})

	pool.Start()

	//remove expired delivery reports
	scheduler := cron.New()
	if _, err = scheduler.AddFunc("@hourly", func() {
		log.WarnIfErr(logger, "Error cleaning up reports", smsService.CleanupReports())
	}); err != nil {
		return err
	}
	scheduler.Start()

	//attach http handlers
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("2K"))

	bindRoutes(e, smsService)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.String("port", cfg.HTTPPort))
		errCh <- e.Start(":" + cfg.HTTPPort)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.Stringer("signal", s))
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.WarnIfErr(logger, "http server shutdown", e.Shutdown(ctx))

	//accepted messages are drained before the db is closed
	pool.Stop()
	<-scheduler.Stop().Done()

	return err
}

func bindRoutes(e *echo.Echo, srv service.Service) {
	e.GET("/health", controller.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	webhooks := e.Group("/sms", controller.AllowIPs(cfg.AllowedIPs, cfg.Debug, logger))
	webhooks.GET("/inbound", controller.GetInboundFunc(srv, logger))
	webhooks.GET("/report", controller.GetReportFunc(srv, logger))
	webhooks.GET("/outbound/:id", controller.GetCheckOutboundFunc(srv, logger))
}

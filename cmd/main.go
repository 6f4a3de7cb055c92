package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelReservationHandler "github.com/tablehub/reservation-service/internal/api/handlers/cancel_reservation"
	checkInHandler "github.com/tablehub/reservation-service/internal/api/handlers/check_in_reservation"
	completeReservationHandler "github.com/tablehub/reservation-service/internal/api/handlers/complete_reservation"
	confirmReservationHandler "github.com/tablehub/reservation-service/internal/api/handlers/confirm_reservation"
	createDraftHandler "github.com/tablehub/reservation-service/internal/api/handlers/create_draft"
	createVenueHandler "github.com/tablehub/reservation-service/internal/api/handlers/create_venue"
	deleteDraftHandler "github.com/tablehub/reservation-service/internal/api/handlers/delete_draft"
	getAvailableSlotsHandler "github.com/tablehub/reservation-service/internal/api/handlers/get_available_slots"
	getCustomerReservationsHandler "github.com/tablehub/reservation-service/internal/api/handlers/get_customer_reservations"
	getDraftHandler "github.com/tablehub/reservation-service/internal/api/handlers/get_draft"
	getReservationHandler "github.com/tablehub/reservation-service/internal/api/handlers/get_reservation"
	getVenueHandler "github.com/tablehub/reservation-service/internal/api/handlers/get_venue"
	getVenuePolicyHandler "github.com/tablehub/reservation-service/internal/api/handlers/get_venue_policy"
	getVenueReservationsHandler "github.com/tablehub/reservation-service/internal/api/handlers/get_venue_reservations"
	requestBookingHandler "github.com/tablehub/reservation-service/internal/api/handlers/request_booking"
	updateVenueHandler "github.com/tablehub/reservation-service/internal/api/handlers/update_venue"
	updateVenuePolicyHandler "github.com/tablehub/reservation-service/internal/api/handlers/update_venue_policy"
	"github.com/tablehub/reservation-service/internal/api/middleware"
	"github.com/tablehub/reservation-service/internal/config"
	"github.com/tablehub/reservation-service/internal/infra/draftstore"
	capacityRepo "github.com/tablehub/reservation-service/internal/infra/storage/capacity"
	policyRepo "github.com/tablehub/reservation-service/internal/infra/storage/policy"
	reservationRepo "github.com/tablehub/reservation-service/internal/infra/storage/reservation"
	venueRepo "github.com/tablehub/reservation-service/internal/infra/storage/venue"
	"github.com/tablehub/reservation-service/internal/ledger"
	draftsService "github.com/tablehub/reservation-service/internal/service/drafts"
	policiesService "github.com/tablehub/reservation-service/internal/service/policies"
	reservationsService "github.com/tablehub/reservation-service/internal/service/reservations"
	venuesService "github.com/tablehub/reservation-service/internal/service/venues"
	getAvailableSlotsUC "github.com/tablehub/reservation-service/internal/usecase/get_available_slots"
	requestBookingUC "github.com/tablehub/reservation-service/internal/usecase/request_booking"
	"github.com/tablehub/reservation-service/internal/worker"
	"github.com/tablehub/reservation-service/pkg/dbmetrics"
	"github.com/tablehub/reservation-service/pkg/logger"
	"github.com/tablehub/reservation-service/pkg/metrics"
	"github.com/tablehub/reservation-service/pkg/simpletxmanager"
	"github.com/tablehub/reservation-service/pkg/txmanager"
)

// TxManager интерфейс для управления транзакциями
// Реализации: txmanager (с метриками) и simpletxmanager (без)
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting TableHub ReservationService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Подключаемся к redis (хранилище черновиков)
	redisClient := draftstore.NewRedisClient(cfg.Redis)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to ping redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to redis (address=%s, db=%d)", cfg.Redis.Address, cfg.Redis.DB)

	// Инициализируем репозитории (с метриками или без)
	var (
		reservationRepository *reservationRepo.Repository
		venueRepository       *venueRepo.Repository
		policyRepository      *policyRepo.Repository
		capacityRepository    *capacityRepo.Repository
		txMgr                 TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		venueRepository = venueRepo.NewRepository(wrappedDB)
		policyRepository = policyRepo.NewRepository(wrappedDB)
		capacityRepository = capacityRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		reservationRepository = reservationRepo.NewRepository(db)
		venueRepository = venueRepo.NewRepository(db)
		policyRepository = policyRepo.NewRepository(db)
		capacityRepository = capacityRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Метрики доменных операций (nil-интерфейсы, если метрики выключены)
	var (
		ledgerMetrics  ledger.Metrics
		serviceMetrics reservationsService.Metrics
		workerMetrics  worker.Metrics
	)
	if cfg.Metrics.Enabled {
		ledgerMetrics = metricsCollector
		serviceMetrics = metricsCollector
		workerMetrics = metricsCollector
	}

	// Capacity ledger - авторитетный учет свободных столиков
	capacityLedger := ledger.New(capacityRepository, venueRepository, ledgerMetrics, log)

	// Хранилище черновиков с TTL
	draftStore := draftstore.New(redisClient, time.Duration(cfg.Redis.DraftTTLMins)*time.Minute)

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		venueRepository,
		capacityLedger,
		txMgr,
		serviceMetrics,
		log,
	)
	venueSvc := venuesService.NewService(venueRepository, log)
	policySvc := policiesService.NewService(policyRepository, venueRepository, log)
	draftSvc := draftsService.NewService(draftStore, venueRepository, log)

	// Инициализируем use cases
	requestBookingUseCase := requestBookingUC.NewUseCase(
		reservationRepository,
		venueRepository,
		policyRepository,
		capacityLedger,
		draftStore,
		txMgr,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		venueRepository,
		policyRepository,
		capacityLedger,
		log,
	)

	// Инициализируем handlers
	requestBooking := requestBookingHandler.NewHandler(requestBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	confirmReservation := confirmReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	checkInReservation := checkInHandler.NewHandler(reservationSvc, log)
	completeReservation := completeReservationHandler.NewHandler(reservationSvc, log)
	getCustomerReservations := getCustomerReservationsHandler.NewHandler(reservationSvc, log)
	getVenueReservations := getVenueReservationsHandler.NewHandler(reservationSvc, log)
	createVenue := createVenueHandler.NewHandler(venueSvc, log)
	updateVenue := updateVenueHandler.NewHandler(venueSvc, log)
	getVenue := getVenueHandler.NewHandler(venueSvc, log)
	getVenuePolicy := getVenuePolicyHandler.NewHandler(policySvc, log)
	updateVenuePolicy := updateVenuePolicyHandler.NewHandler(policySvc, log)
	createDraft := createDraftHandler.NewHandler(draftSvc, log)
	getDraft := getDraftHandler.NewHandler(draftSvc, log)
	deleteDraft := deleteDraftHandler.NewHandler(draftSvc, log)

	// Запускаем фоновые воркеры
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	holdExpiryWorker := worker.NewHoldExpiryWorker(
		reservationRepository,
		capacityLedger,
		txMgr,
		time.Duration(cfg.Workers.HoldExpiryIntervalSecs)*time.Second,
		workerMetrics,
		log,
	)
	noShowWorker := worker.NewNoShowWorker(
		reservationRepository,
		capacityLedger,
		txMgr,
		time.Duration(cfg.Workers.NoShowIntervalSecs)*time.Second,
		workerMetrics,
		log,
	)
	go holdExpiryWorker.Run(workersCtx)
	go noShowWorker.Run(workersCtx)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Каталог ресторанов
	api.HandleFunc("/venues", getVenue.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venueId}", getVenue.Handle).Methods(http.MethodGet)

	// Доступные слоты для бронирования
	api.HandleFunc("/venues/{venueId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Правила бронирования ресторана
	api.HandleFunc("/venues/{venueId}/policy", getVenuePolicy.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Черновики визарда бронирования ---
	protected.HandleFunc("/drafts", createDraft.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/drafts/{draftId}", getDraft.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/drafts/{draftId}", deleteDraft.Handle).Methods(http.MethodDelete)

	// --- Бронирования ---
	// Создание бронирования (hold с дедлайном подтверждения)
	protected.HandleFunc("/reservations", requestBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)

	// Жизненный цикл бронирования
	protected.HandleFunc("/reservations/{reservationId}/confirm", confirmReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/check-in", checkInReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}/complete", completeReservation.Handle).Methods(http.MethodPost)

	// История бронирований клиента
	protected.HandleFunc("/customers/{customerId}/reservations", getCustomerReservations.Handle).Methods(http.MethodGet)

	// --- Управление рестораном (для менеджеров) ---
	protected.HandleFunc("/venues", createVenue.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/venues/{venueId}", updateVenue.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/venues/{venueId}/reservations", getVenueReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/venues/{venueId}/policy", updateVenuePolicy.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые воркеры
	stopWorkers()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

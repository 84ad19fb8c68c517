package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/motogarage/backend/internal/assignment"
	"github.com/example/motogarage/backend/internal/cache"
	"github.com/example/motogarage/backend/internal/config"
	"github.com/example/motogarage/backend/internal/db"
	"github.com/example/motogarage/backend/internal/directory"
	"github.com/example/motogarage/backend/internal/events"
	httpserver "github.com/example/motogarage/backend/internal/http"
	"github.com/example/motogarage/backend/internal/models"
	"github.com/example/motogarage/backend/internal/mq"
	"github.com/example/motogarage/backend/internal/notify"
	"github.com/example/motogarage/backend/internal/queue"
	"github.com/example/motogarage/backend/internal/repository"
	"github.com/example/motogarage/backend/internal/workorder"
	"github.com/example/motogarage/backend/internal/ws"
)

func main() {
	cfg := config.Load()

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if err := db.AutoMigrate(database); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	redisClient, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("warning: redis unavailable (%v), continuing without cache", err)
	}
	readCache := cache.New(redisClient, cfg.CacheTTL)

	var publisher mq.Publisher
	rabbit, err := mq.NewRabbitPublisher(cfg.MQURL, cfg.MQExchange)
	if err != nil {
		log.Printf("warning: rabbitmq unavailable (%v), continuing without events", err)
	} else {
		publisher = rabbit
	}

	entryRepo := repository.NewQueueEntryRepository(database)
	statusRepo := repository.NewQueueStatusRepository(database)
	apptRepo := repository.NewAppointmentRepository(database)
	orderRepo := repository.NewWorkOrderRepository(database)
	techRepo := repository.NewTechnicianRepository(database)
	motoRepo := repository.NewMotorcycleRepository(database)

	calc := assignment.NewCalculator(cfg.MaxActiveServices)
	selector := assignment.NewSelector(calc)
	dir := directory.NewService(techRepo, apptRepo, orderRepo, calc, readCache)
	creator := workorder.NewCreator(orderRepo, dir)

	bus := events.NewBus()
	mq.Bridge(bus, publisher)
	hub := ws.NewHub(bus)

	store := queue.NewStore()
	loadQueueState(ctx, store, entryRepo, statusRepo, cfg)

	queueSvc := queue.NewService(store, &persister{entries: entryRepo, status: statusRepo}, creator, dir, motoRepo, bus, queue.Options{
		TicketTTL:             cfg.TicketTTL,
		AverageServiceMinutes: cfg.AverageServiceMinutes,
	})

	apiServer := httpserver.NewServer(queueSvc, dir, selector, apptRepo, entryRepo, hub, cfg.HistoryPageSize)

	go runNotifyWorker(ctx, cfg)

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: apiServer.Engine,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutdown initiated")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if rabbit != nil {
		_ = rabbit.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	log.Println("bye")
}

// loadQueueState rebuilds the in-memory store from the durable mirror so a
// restart keeps the live queue intact.
func loadQueueState(ctx context.Context, store *queue.Store, entries *repository.QueueEntryRepository, statusRepo *repository.QueueStatusRepository, cfg config.Config) {
	active, err := entries.ListActive(ctx)
	if err != nil {
		log.Fatalf("load active queue entries: %v", err)
	}
	status, err := statusRepo.Load(ctx)
	if err != nil {
		log.Fatalf("load queue status: %v", err)
	}
	if status == nil {
		hours := cfg.DefaultHours()
		if hours == nil {
			hours = queue.DefaultWeekHours()
		}
		status = &models.QueueStatus{IsOpen: true, LastUpdated: time.Now()}
		status.SetHours(hours)
		if err := statusRepo.Save(ctx, status); err != nil {
			log.Printf("persist initial queue status: %v", err)
		}
	}
	store.Load(active, status)
	log.Printf("queue state loaded: %d active entries", len(active))
}

// runNotifyWorker consumes queue events and forwards queue.called to the
// notification gateway. A missing broker only disables notifications.
func runNotifyWorker(ctx context.Context, cfg config.Config) {
	consumer, err := mq.NewRabbitConsumer(cfg.MQURL, cfg.MQExchange, cfg.MQQueue)
	if err != nil {
		log.Printf("warning: notification worker disabled (%v)", err)
		return
	}
	worker := notify.NewWorker(consumer, notify.NewGatewayClient(cfg.NotifyGatewayURL))
	if err := worker.Run(ctx); err != nil {
		log.Printf("notification worker: %v", err)
	}
}

// persister adapts the GORM repositories to the queue engine's durable
// mirror interface.
type persister struct {
	entries *repository.QueueEntryRepository
	status  *repository.QueueStatusRepository
}

func (p *persister) SaveEntry(ctx context.Context, entry *models.QueueEntry) error {
	return p.entries.SaveEntry(ctx, entry)
}

func (p *persister) SaveEntries(ctx context.Context, entries []models.QueueEntry) error {
	return p.entries.SaveEntries(ctx, entries)
}

func (p *persister) SaveStatus(ctx context.Context, status *models.QueueStatus) error {
	return p.status.Save(ctx, status)
}

func init() {
	if mode := os.Getenv("GIN_MODE"); mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}

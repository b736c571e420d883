package web

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"billed/config"
	dbt "billed/db/db"
	"billed/db/mem"
	"billed/db/pg"
	"billed/mq/gcppubsub"
	"billed/mq/goch"
	"billed/mq/mq"
	"billed/mq/rabbit"
	"billed/storage"
)

// DBMode selects the persistence backend at startup.
type DBMode string

const (
	DBModeMem      DBMode = "mem"
	DBModePostgres DBMode = "pg"
)

type ServiceConfig struct {
	IsDev     bool
	Port      string
	DBMode    DBMode
	MqMode    mq.Mode
	UploadDir string
}

func setupRoutes(r *gin.Engine, h *Handlers, store dbt.BillDBWrapper) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/login", h.loginPage)
	r.POST("/login", h.login)
	r.GET("/", func(c *gin.Context) {
		c.Redirect(303, "/login")
	})

	r.GET("/receipts/:key", h.serveReceipt)

	employee := r.Group("/employee")
	employee.Use(EmployeeGateMiddleware())
	employee.Use(BillDataLoaderInjectionMiddleware(store))
	{
		employee.GET("/bills", h.billsPage)
		employee.GET("/bills/preview", h.previewReceipt)
		employee.GET("/bills/feed", h.billFeed)
		employee.GET("/bills/new", h.newBillPage)
		employee.POST("/bills/new", h.submitBill)
		employee.POST("/bills/new/file", h.uploadReceipt)
	}
}

func buildBillStore(cfg ServiceConfig) dbt.BillDBWrapper {
	switch cfg.DBMode {
	case DBModePostgres:
		gormDB, err := pg.InitPostgresGORM(pg.CreateDSN())
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		return pg.NewGORMBillDBWrapper(gormDB)
	default:
		return mem.NewInMemoryBillDBWrapper()
	}
}

func buildReceiptStore(cfg ServiceConfig) storage.ReceiptStore {
	if cfg.IsDev {
		return storage.NewMemReceiptStore()
	}
	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = config.DefaultUploadDir
	}
	store, err := storage.NewDiskReceiptStore(uploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}
	return store
}

func buildMessageQueue(cfg ServiceConfig) mq.BillMessageQueueWrapper {
	switch cfg.MqMode {
	case mq.ModeRabbitMQ:
		conn := rabbit.NewRabbitConnection(rabbit.CreateAmqpURL())
		wrapper, err := rabbit.NewRabbitBillMessageQueueWrapper(conn)
		if err != nil {
			log.Fatalf("Failed to set up rabbitmq queues: %v", err)
		}
		return wrapper
	case mq.ModeGCPPubSub:
		wrapper, err := gcppubsub.NewGCPBillMessageQueueWrapper(context.Background(), gcppubsub.GetGCPProjectID())
		if err != nil {
			log.Fatalf("Failed to set up pub/sub queues: %v", err)
		}
		return wrapper
	default:
		return goch.NewGoChanBillMessageQueueWrapper()
	}
}

func Serve(cfg ServiceConfig) {
	if !cfg.IsDev {
		gin.SetMode(gin.ReleaseMode)
	}

	store := buildBillStore(cfg)
	receipts := buildReceiptStore(cfg)
	events := buildMessageQueue(cfg)

	r := gin.New()
	setupMiddlewares(r)

	h := NewHandlers(store, receipts, events)
	setupRoutes(r, h, store)

	port := cfg.Port
	if port == "" {
		port = config.DefaultPort
	}
	log.Printf("Serving on :%s (db=%s mq=%s)", port, cfg.DBMode, cfg.MqMode)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

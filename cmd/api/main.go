package main

import (
	"log"
	"os"

	_ "backoffice/api/swagger" // swagger docs
	"backoffice/internal/database"
	"backoffice/internal/handler"
	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/seed"
	"backoffice/internal/service"
	"backoffice/internal/storage"
	"backoffice/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// @title           Delivery Back Office API
// @version         1.0
// @description     Delivery request lifecycle and billing API for the back office.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Snapshot storage: wipe and reseed when the schema version changed.
	slotStore := storage.NewSlotStore(db)
	wiped, err := slotStore.CheckSchemaVersion(func() error {
		return resetFixtures(db, slotStore)
	})
	if err != nil {
		log.Fatalf("Schema version check failed: %v", err)
	}
	if wiped {
		log.Println("Snapshot schema changed; storage wiped and reseeded.")
	}

	requestStore, err := storage.NewRequestStore(slotStore)
	if err != nil {
		log.Fatalf("Failed to load request snapshot: %v", err)
	}
	if requestStore.Count() == 0 && !wiped {
		// Snapshot slot missing but version marker intact: seed requests only.
		if err := seedRequests(db, requestStore); err != nil {
			log.Printf("WARNING: request seeding failed: %v", err)
		}
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	userService := service.NewUserService(userRepo)
	customerService := service.NewCustomerService(customerRepo)
	driverService := service.NewDriverService(driverRepo)
	billingService := service.NewBillingService(invoiceRepo, walletRepo, customerRepo, catalogRepo, txManager)
	requestService := service.NewRequestService(requestStore, billingService, wsHub)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	customerHandler := handler.NewCustomerHandler(customerService, billingService)
	driverHandler := handler.NewDriverHandler(driverService)
	invoiceHandler := handler.NewInvoiceHandler(billingService)
	requestHandler := handler.NewRequestHandler(requestService, customerService, driverService, billingService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	customerHandler.RegisterRoutes(router.Group(""))
	driverHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// resetFixtures truncates the collaborator tables and loads the demo data set,
// including the request snapshot. Called under the schema version check, after
// the slots have been wiped.
func resetFixtures(db *gorm.DB, slots *storage.SlotStore) error {
	tables := []interface{}{
		&model.RefreshToken{},
		&model.InvoiceItem{},
		&model.Invoice{},
		&model.WalletEntry{},
		&model.PaymentMethod{},
		&model.ExtraFee{},
		&model.Customer{},
		&model.Driver{},
		&model.User{},
	}
	for _, table := range tables {
		if err := db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return err
		}
	}

	provider := seed.NewFixtureProvider(42)

	users := provider.Users()
	for i := range users {
		users[i].ID = uuid.New()
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	customers := provider.Customers()
	for i := range customers {
		customers[i].ID = uuid.New()
	}
	if err := db.Create(&customers).Error; err != nil {
		return err
	}

	drivers := provider.Drivers()
	for i := range drivers {
		drivers[i].ID = uuid.New()
	}
	if err := db.Create(&drivers).Error; err != nil {
		return err
	}

	methods := provider.PaymentMethods()
	for i := range methods {
		methods[i].ID = uuid.New()
	}
	if err := db.Create(&methods).Error; err != nil {
		return err
	}

	fees := provider.ExtraFees()
	for i := range fees {
		fees[i].ID = uuid.New()
	}
	if err := db.Create(&fees).Error; err != nil {
		return err
	}

	actor := model.Actor{ID: users[0].ID.String(), Name: users[0].Name}
	requests := provider.Requests(customers, drivers, actor)

	store, err := storage.NewRequestStore(slots)
	if err != nil {
		return err
	}
	store.ReplaceAll(requests)

	log.Printf("Seeded %d users, %d customers, %d drivers, %d requests", len(users), len(customers), len(drivers), len(requests))
	return nil
}

// seedRequests fills an empty request store from the customers and drivers
// already in the database.
func seedRequests(db *gorm.DB, store *storage.RequestStore) error {
	var customers []model.Customer
	if err := db.Find(&customers).Error; err != nil {
		return err
	}
	var drivers []model.Driver
	if err := db.Find(&drivers).Error; err != nil {
		return err
	}
	var user model.User
	if err := db.First(&user).Error; err != nil {
		return err
	}
	if len(customers) == 0 {
		return nil
	}

	provider := seed.NewFixtureProvider(42)
	actor := model.Actor{ID: user.ID.String(), Name: user.Name}
	requests := provider.Requests(customers, drivers, actor)
	store.ReplaceAll(requests)
	log.Printf("Seeded %d requests into empty store", len(requests))
	return nil
}

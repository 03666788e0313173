package main

import (
	authhandler "tourism/internal/auth/handler"
	"tourism/internal/auth/password"
	authservice "tourism/internal/auth/service"
	"tourism/internal/bookings/flow"
	bookinghandler "tourism/internal/bookings/handler"
	bookingrepo "tourism/internal/bookings/repository"
	bookingservice "tourism/internal/bookings/service"
	bookingvalidator "tourism/internal/bookings/validator"
	discounthandler "tourism/internal/discounts/handler"
	discountrepo "tourism/internal/discounts/repository"
	discountservice "tourism/internal/discounts/service"
	"tourism/internal/events"
	flighthandler "tourism/internal/flights/handler"
	flightrepo "tourism/internal/flights/repository"
	flightservice "tourism/internal/flights/service"
	flightvalidator "tourism/internal/flights/validator"
	"tourism/internal/pricing"
	propertyhandler "tourism/internal/properties/handler"
	propertyrepo "tourism/internal/properties/repository"
	propertyservice "tourism/internal/properties/service"
	propertyvalidator "tourism/internal/properties/validator"
	ratingrepo "tourism/internal/ratings/repository"
	ratingservice "tourism/internal/ratings/service"
	reviewhandler "tourism/internal/reviews/handler"
	reviewrepo "tourism/internal/reviews/repository"
	reviewservice "tourism/internal/reviews/service"
	reviewvalidator "tourism/internal/reviews/validator"
	servicehandler "tourism/internal/tourservices/handler"
	servicerepo "tourism/internal/tourservices/repository"
	serviceservice "tourism/internal/tourservices/service"
	userhandler "tourism/internal/users/handler"
	userrepo "tourism/internal/users/repository"
	userservice "tourism/internal/users/service"
	"tourism/pkg/app"
	"tourism/pkg/cache"
	"tourism/pkg/config"
	"tourism/pkg/contracts"
	"tourism/pkg/kafka"
	kafka_config "tourism/pkg/kafka/config"
	kafkamiddleware "tourism/pkg/kafka/middleware"
	"tourism/pkg/metrics"
	"tourism/pkg/middleware"
	"tourism/pkg/sealer"
	"tourism/pkg/token"
	"tourism/pkg/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	ServiceName = "tourism-api"

	// maxConcurrentBookings bounds in-flight creation flows per instance.
	maxConcurrentBookings = 64
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting tourism API")
	m := metrics.NewMetrics(cfg.MetricsNamespace)
	serverApp := app.NewApplication()

	publisher := initPublisher(cfg, m, serverApp)
	searchCache := initCache(cfg)

	serverApp.SetApp(cfg, m, initHandlers(cfg, m, publisher, searchCache)...)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.Run()
}

func initCache(cfg *config.Config) cache.Cache {
	if cfg.Client.Redis == nil {
		cfg.Log.Warn("Redis not configured, search cache disabled")
		return cache.Noop{}
	}
	return cache.NewRedisCache(cfg.Client.Redis, cfg.SearchCacheTTL)
}

func initPublisher(cfg *config.Config, m *metrics.Metrics, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Warn("Kafka disabled, domain events will not be published")
		return events.Noop{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	bookings := newProducer(cfg, m, kafkaCfg, cfg.KafkaBookingsTopic)
	reviews := newProducer(cfg, m, kafkaCfg, cfg.KafkaReviewsTopic)
	publisher := events.NewKafkaPublisher(bookings, reviews, ServiceName)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producers", "error", err)
		}
	})
	return publisher
}

func newProducer(cfg *config.Config, m *metrics.Metrics, kafkaCfg *kafka_config.Config, topic string) *kafka.Producer {
	producer, err := kafka.NewProducer(kafkaCfg, topic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", topic, "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamiddleware.MetricsProducerMiddleware(m))
	return producer
}

func initHandlers(cfg *config.Config, m *metrics.Metrics, publisher events.Publisher, searchCache cache.Cache) []contracts.Handler {
	v := validation.New(cfg.Log)
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL, ServiceName)
	passwords := password.NewHasher(bcrypt.DefaultCost)

	cardSealer, err := sealer.New(cfg.PaymentTokenKey)
	if err != nil {
		cfg.Log.Fatal("Invalid payment token key", "error", err)
	}

	users := userrepo.NewMongoUserRepository(cfg)
	auth := middleware.NewAuthenticator(tokens, cfg.Log).WithAccounts(userservice.AccountLookup(users))
	properties := propertyrepo.NewMongoPropertyRepository(cfg)
	flights := flightrepo.NewMongoFlightRepository(cfg)
	tourServices := servicerepo.NewMongoTourServiceRepository(cfg)
	discounts := discountrepo.NewMongoDiscountRepository(cfg)
	reviews := reviewrepo.NewMongoReviewRepository(cfg)
	bookings := bookingrepo.NewMongoBookingRepository(cfg)
	inventory := bookingrepo.NewMongoInventoryRepository(cfg)

	discountSvc := discountservice.NewDiscountService(discounts, v, cfg)
	ratingSvc := ratingservice.NewRatingService(ratingrepo.NewMongoRatingRepository(cfg), searchCache, m, cfg)

	bookingSvc := bookingservice.NewBookingService(bookingservice.Dependencies{
		Bookings:   bookings,
		Locks:      bookingrepo.NewBookingLockRepository(cfg),
		Inventory:  inventory,
		Catalog:    bookingrepo.NewMongoCatalogRepository(cfg),
		Loyalty:    bookingrepo.NewMongoLoyaltyRepository(cfg),
		Discounts:  discountSvc,
		Calculator: pricing.NewCalculator(cfg.TaxRate),
		Validator:  bookingvalidator.NewBookingValidator(v),
		Publisher:  publisher,
		Cache:      searchCache,
		Limiter:    flow.NewLimiter(maxConcurrentBookings),
		Metrics:    m,
	}, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		authhandler.NewAuthHandler(
			authservice.NewAuthService(users, passwords, tokens, v, cfg), cfg.Log),
		userhandler.NewUserHandler(
			userservice.NewUserService(users, bookings, reviews, cardSealer, passwords, v, cfg), auth, cfg.Log),
		propertyhandler.NewPropertyHandler(
			propertyservice.NewPropertyService(properties, propertyvalidator.NewPropertyValidator(v), inventory, searchCache, m, cfg), auth, cfg.Log),
		flighthandler.NewFlightHandler(
			flightservice.NewFlightService(flights, flightvalidator.NewFlightValidator(v), searchCache, m, cfg), auth, cfg.Log),
		servicehandler.NewTourServiceHandler(
			serviceservice.NewTourService(tourServices, v, searchCache, m, cfg), auth, cfg.Log),
		discounthandler.NewDiscountHandler(discountSvc, auth, cfg.Log),
		bookinghandler.NewBookingHandler(bookingSvc, auth, cfg.Log),
		reviewhandler.NewReviewHandler(
			reviewservice.NewReviewService(reviews, bookings, properties, ratingSvc,
				reviewvalidator.NewReviewValidator(v), publisher, m, cfg), auth, cfg.Log),
	}
}

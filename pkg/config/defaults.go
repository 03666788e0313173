package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tourism"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultJWTSecret = "change-me-in-production"
	DefaultJWTTTL    = 7 * 24 * time.Hour

	DefaultTaxRate         = 0.15
	DefaultCurrency        = "USD"
	DefaultPaymentTokenKey = "lfQVRuulcL2iOhOJ2r8BYTweoSKwVAJnIF9U+AL+M60="
	DefaultBookingLockTTL  = 10 * time.Second

	DefaultRedisAddr      = ""
	DefaultRedisDB        = 0
	DefaultSearchCacheTTL = 60 * time.Second

	DefaultKafkaEnabled       = false
	DefaultKafkaBookingsTopic = "tourism.bookings"
	DefaultKafkaReviewsTopic  = "tourism.reviews"
	DefaultKafkaDLQTopic      = "tourism.dlq"
	DefaultKafkaRatingsGroup  = "tourism-ratings"

	DefaultMetricsNamespace = "tourism"

	DefaultPaginationLimit = 20
	MaxPaginationLimit     = 100
)

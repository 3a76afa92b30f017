package config

import (
	"fmt"
	"os"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion string

	// DynamoDB tables, one per entity, mirroring the provisioned layout.
	BooksTable           string
	TagsTable            string
	BookTagsTable        string
	ProgressTable        string
	CollectionsTable     string
	CollectionBooksTable string

	// Secondary indexes. UserIndex backs owner-scoped listing on the entity
	// tables; LeftIndex/RightIndex back the two listing directions on the
	// relationship tables. An empty index name degrades the corresponding
	// listing to a filtered scan.
	UserIndexName  string
	LeftIndexName  string
	RightIndexName string

	// EventBridge
	EventBusName string

	// Lambda configuration
	IsLambda bool

	// Authentication (REST surface only; the AppSync path receives a
	// pre-verified identity)
	JWTSecret string
	JWTIssuer string

	// Logging and features
	LogLevel      string
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),

		BooksTable:           getEnv("BOOKS_TABLE", "BooksTable"),
		TagsTable:            getEnv("TAGS_TABLE", "TagsTable"),
		BookTagsTable:        getEnv("BOOK_TAGS_TABLE", "BookTagsTable"),
		ProgressTable:        getEnv("PROGRESS_TABLE", "ProgressTable"),
		CollectionsTable:     getEnv("COLLECTIONS_TABLE", "CollectionsTable"),
		CollectionBooksTable: getEnv("COLLECTION_BOOKS_TABLE", "CollectionBooksTable"),

		UserIndexName:  getEnv("USER_INDEX_NAME", "UserIndex"),
		LeftIndexName:  getEnv("LEFT_INDEX_NAME", "byLeft"),
		RightIndexName: getEnv("RIGHT_INDEX_NAME", "byRight"),

		EventBusName: getEnv("EVENT_BUS_NAME", "book-tracker-events"),

		IsLambda: os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "book-tracker"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" && !c.IsLambda {
			return fmt.Errorf("JWT_SECRET is required in production outside Lambda")
		}
		for name, value := range map[string]string{
			"BOOKS_TABLE":            c.BooksTable,
			"TAGS_TABLE":             c.TagsTable,
			"BOOK_TAGS_TABLE":        c.BookTagsTable,
			"PROGRESS_TABLE":         c.ProgressTable,
			"COLLECTIONS_TABLE":      c.CollectionsTable,
			"COLLECTION_BOOKS_TABLE": c.CollectionBooksTable,
		} {
			if value == "" {
				return fmt.Errorf("%s is required", name)
			}
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}


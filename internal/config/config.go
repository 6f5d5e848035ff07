package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Graph database
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Optional Postgres audit sink; empty disables auditing.
	AuditDatabaseURL string

	// LLM Configuration
	LLMProvider string // "openai", "groq", "ollama", or "none"
	LLMModel    string // "gpt-4o-mini", "gpt-4o", "llama-3.3-70b-versatile"
	LLMAPIKey   string // OpenAI or Groq API key

	// Advisor tuning; zero keeps the built-in default.
	InsufficientThreshold int
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		log.Println("Attempting to load from parent directory...")
		err = godotenv.Load("../../.env")
		if err != nil {
			log.Println("Warning: Could not load .env file, using environment variables")
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	neo4jURI := os.Getenv("NEO4J_URI")
	if neo4jURI == "" {
		neo4jURI = "neo4j://localhost:7687"
	}
	neo4jUser := os.Getenv("NEO4J_USER")
	if neo4jUser == "" {
		neo4jUser = "neo4j"
	}
	neo4jDatabase := os.Getenv("NEO4J_DATABASE")
	if neo4jDatabase == "" {
		neo4jDatabase = "neo4j"
	}

	// LLM configuration
	llmProvider := os.Getenv("LLM_PROVIDER")
	if llmProvider == "" {
		llmProvider = "none" // advisor narratives are optional
	}

	llmModel := os.Getenv("LLM_MODEL")
	if llmModel == "" {
		llmModel = "gpt-4o-mini" // default model
	}

	// Get API key based on provider
	llmAPIKey := ""
	if llmProvider == "openai" {
		llmAPIKey = os.Getenv("OPENAI_API_KEY")
	} else if llmProvider == "groq" {
		llmAPIKey = os.Getenv("GROQ_API_KEY")
	}

	insufficientThreshold := 0
	if raw := os.Getenv("INSUFFICIENT_THRESHOLD"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			log.Printf("Warning: invalid INSUFFICIENT_THRESHOLD %q, using default", raw)
		} else {
			insufficientThreshold = v
		}
	}

	return &Config{
		Port:                  port,
		Neo4jURI:              neo4jURI,
		Neo4jUser:             neo4jUser,
		Neo4jPassword:         os.Getenv("NEO4J_PASSWORD"),
		Neo4jDatabase:         neo4jDatabase,
		AuditDatabaseURL:      os.Getenv("AUDIT_DATABASE_URL"),
		LLMProvider:           llmProvider,
		LLMModel:              llmModel,
		LLMAPIKey:             llmAPIKey,
		InsufficientThreshold: insufficientThreshold,
	}
}

package main // Standalone consumer for the menu change feed

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/kafet/cafeteria-reservation/internal/queue"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	log.Println("menu change-feed consumer starting")
	if err := queue.StartMenuConsumer(); err != nil {
		log.Fatalf("consumer stopped: %v", err)
	}
}

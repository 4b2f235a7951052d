package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/RoGogDBD/pantry/internal/config"
	"github.com/RoGogDBD/pantry/internal/models"
	"github.com/RoGogDBD/pantry/internal/validation"
)

func main() {
	base := flag.String("base", "", "Base URL of the running server, defaults to config server address")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	url := *base
	if url == "" {
		url = "http://" + cfg.Server.Address()
	}

	items := []models.Item{
		{Name: "Flour", Quantity: "2"},
		{Name: "Sugar", Quantity: "1"},
		{Name: "Olive oil", Quantity: "3"},
		{Name: "Canned tomatoes", Quantity: "6"},
	}

	validate := validation.New()
	for i, item := range items {
		if err := validate.Struct(item); err != nil {
			log.Fatalf("Invalid seed item %d: %v", i, err)
		}

		body, err := json.Marshal(item)
		if err != nil {
			log.Fatalf("Failed to marshal item: %v", err)
		}

		resp, err := http.Post(fmt.Sprintf("%s/api/items", url), "application/json", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("Failed to send item: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Fatalf("Unexpected status %d for item %q", resp.StatusCode, item.Name)
		}
		log.Printf("Item %d seeded successfully: %s x%s", i+1, item.Name, item.Quantity)
	}
}

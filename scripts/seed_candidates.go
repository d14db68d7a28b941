package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/onboarding/internal/config"
	"github.com/hireflow/onboarding/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

type seedCandidate struct {
	Name     string
	Email    string
	Phone    string
	Position string
	Status   models.Status
}

// SeedCandidates contains sample candidates for local development
var SeedCandidates = []seedCandidate{
	{
		Name:     "Asha Verma",
		Email:    "asha.verma@example.com",
		Phone:    "+919876543210",
		Position: "Backend Engineer",
		Status:   models.StatusInitiated,
	},
	{
		Name:     "Rahul Nair",
		Email:    "rahul.nair@example.com",
		Phone:    "+919812345678",
		Position: "Data Analyst",
		Status:   models.StatusDocsPending,
	},
	{
		Name:     "Meera Iyer",
		Email:    "meera.iyer@example.com",
		Phone:    "+919898989898",
		Position: "Product Manager",
		Status:   models.StatusAwaitingHRDocument,
	},
}

func main() {
	fmt.Println("🌱 Seeding candidates...")

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize MongoDB
	config.InitMongoDB()
	if config.MongoDB == nil {
		log.Fatal("Failed to initialize MongoDB")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := config.MongoDB.Collection(config.AppConfig.CandidateCollection)

	// Check if candidates already exist
	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Fatalf("Failed to count existing candidates: %v", err)
	}

	if count > 0 {
		fmt.Printf("⚠️  Found %d existing candidates. Do you want to replace them? (y/N): ", count)
		var response string
		_, err := fmt.Scanln(&response)
		if err != nil {
			fmt.Println("❌ Error reading input")
			return
		}
		if response != "y" && response != "Y" {
			fmt.Println("❌ Seeding cancelled")
			return
		}

		result, err := collection.DeleteMany(ctx, bson.M{})
		if err != nil {
			log.Fatalf("Failed to delete existing candidates: %v", err)
		}
		fmt.Printf("🗑️  Deleted %d existing candidates\n", result.DeletedCount)
	}

	docs := config.AppConfig.Documents
	now := time.Now().UTC()

	records := make([]interface{}, 0, len(SeedCandidates))
	for _, seed := range SeedCandidates {
		documentStatus := make(map[string]models.DocumentState, len(docs.Requirements))
		for _, req := range docs.Requirements {
			documentStatus[req.Key] = models.DocumentState{DisplayName: req.DisplayName}
		}

		records = append(records, models.Candidate{
			ID:                uuid.NewString(),
			Name:              seed.Name,
			Email:             seed.Email,
			Phone:             seed.Phone,
			Position:          seed.Position,
			Status:            seed.Status,
			DocConfigVersion:  docs.Version,
			RequiredDocuments: docs.Keys(),
			DocumentStatus:    documentStatus,
			EventLog: []models.EventLogEntry{
				{Event: "Candidate record created.", Timestamp: now},
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	result, err := collection.InsertMany(ctx, records)
	if err != nil {
		log.Fatalf("Failed to insert candidates: %v", err)
	}

	fmt.Printf("✅ Successfully seeded %d candidates:\n", len(result.InsertedIDs))
	for _, seed := range SeedCandidates {
		fmt.Printf("  ✓ %s <%s> - %s [%s]\n", seed.Name, seed.Email, seed.Position, seed.Status)
	}

	fmt.Println("\n🎉 Seeding completed successfully!")
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"triviamon/internal/model"
)

var questions = []model.Question{
	{
		Text:         "What is 7 x 8?",
		Options:      []string{"54", "56", "58", "64"},
		CorrectIndex: 1,
		GradeLevel:   3,
		Subject:      "math",
	},
	{
		Text:         "Which planet is closest to the sun?",
		Options:      []string{"Venus", "Earth", "Mercury", "Mars"},
		CorrectIndex: 2,
		GradeLevel:   4,
		Subject:      "science",
	},
	{
		Text:         "What is the largest ocean on Earth?",
		Options:      []string{"Atlantic", "Indian", "Arctic", "Pacific"},
		CorrectIndex: 3,
		GradeLevel:   4,
		Subject:      "geography",
	},
	{
		Text:         "Which word is a noun? 'The quick fox jumps.'",
		Options:      []string{"quick", "fox", "jumps", "the"},
		CorrectIndex: 1,
		GradeLevel:   2,
		Subject:      "english",
	},
	{
		Text:         "What is 144 divided by 12?",
		Options:      []string{"10", "11", "12", "14"},
		CorrectIndex: 2,
		GradeLevel:   4,
		Subject:      "math",
	},
	{
		Text:         "What gas do plants absorb from the air?",
		Options:      []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Hydrogen"},
		CorrectIndex: 2,
		GradeLevel:   5,
		Subject:      "science",
	},
	{
		Text:         "Which fraction is largest?",
		Options:      []string{"1/3", "1/2", "2/5", "3/8"},
		CorrectIndex: 1,
		GradeLevel:   5,
		Subject:      "math",
	},
	{
		Text:         "What is the capital of France?",
		Options:      []string{"London", "Berlin", "Madrid", "Paris"},
		CorrectIndex: 3,
		GradeLevel:   3,
		Subject:      "geography",
	},
	{
		Text:         "How many sides does a hexagon have?",
		Options:      []string{"5", "6", "7", "8"},
		CorrectIndex: 1,
		GradeLevel:   2,
		Subject:      "math",
	},
	{
		Text:         "Which of these is a mammal?",
		Options:      []string{"Shark", "Dolphin", "Octopus", "Salmon"},
		CorrectIndex: 1,
		GradeLevel:   3,
		Subject:      "science",
	},
	{
		Text:         "What is 15% of 200?",
		Options:      []string{"15", "20", "30", "45"},
		CorrectIndex: 2,
		GradeLevel:   6,
		Subject:      "math",
	},
	{
		Text:         "Water boils at what temperature at sea level?",
		Options:      []string{"90°C", "100°C", "110°C", "120°C"},
		CorrectIndex: 1,
		GradeLevel:   5,
		Subject:      "science",
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "triviamon"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(dbName)
	questionColl := db.Collection("questions")

	inserted := 0
	for i := range questions {
		q := questions[i]
		q.ID = primitive.NewObjectID().Hex()
		if _, err := questionColl.InsertOne(ctx, q); err != nil {
			log.Fatalf("Failed to insert question %q: %v", q.Text, err)
		}
		inserted++
	}

	fmt.Printf("Successfully seeded %d questions into %s\n", inserted, dbName)
}

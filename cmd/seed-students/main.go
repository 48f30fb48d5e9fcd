package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/stemsi/student-management/internal/config"
	"github.com/stemsi/student-management/internal/database"
	"github.com/stemsi/student-management/internal/logger"
	"github.com/stemsi/student-management/internal/model"
	"github.com/stemsi/student-management/internal/repository"
	"github.com/stemsi/student-management/internal/service"
)

var courses = []string{"Computer Science", "Electrical Engineering", "Mathematics", "Physics", "Business"}

var names = []string{
	"Asha Verma", "Ravi Kumar", "Priya Nair", "Arjun Mehta", "Sneha Iyer",
	"Vikram Rao", "Ananya Das", "Rahul Sharma", "Kavya Reddy", "Rohan Gupta",
	"Meera Pillai", "Karan Singh", "Divya Menon", "Aditya Joshi", "Isha Kapoor",
	"Nikhil Bose", "Pooja Agarwal", "Siddharth Jain", "Tanvi Kulkarni", "Varun Malhotra",
}

func main() {
	count := flag.Int("n", len(names), "Number of students to seed")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)
	studentService := service.NewStudentService(studentRepo, log)

	n := *count
	if n > len(names) {
		n = len(names)
	}
	fmt.Printf("=== Seeding %d Students ===\n", n)

	successCount, skipped := 0, 0
	for i := 0; i < n; i++ {
		student := &model.Student{
			Name:   names[i],
			Email:  strings.ToLower(strings.ReplaceAll(names[i], " ", ".")) + "@example.com",
			Phone:  fmt.Sprintf("+91-98%08d", i+1),
			Course: courses[i%len(courses)],
		}

		err := studentService.Create(ctx, student)
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			skipped++
		case err != nil:
			fmt.Printf("Error creating student %s (%s): %v\n", student.Name, student.Email, err)
		default:
			successCount++
			if (i+1)%10 == 0 {
				fmt.Printf("Created %d students...\n", i+1)
			}
		}
	}

	fmt.Printf("\nSeed completed! Added %d/%d students, %d already present.\n", successCount, n, skipped)
}

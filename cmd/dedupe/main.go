package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mbecker/postal/internal"
	"github.com/mbecker/postal/internal/dedupe"
)

func run() error {
	input := flag.String("input", "", "Input CSV file path containing first_name, middle_name, last_name columns")
	threshold := flag.Int("threshold", dedupe.DefaultThreshold, "Fuzzy matching threshold")
	flag.Parse()

	logger := internal.NewLogger(os.Stderr, os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))

	if *input == "" {
		return fmt.Errorf("-input is required")
	}

	f, err := os.Open(*input)
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	people, err := dedupe.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("read input file: %w", err)
	}
	logger.Info("Input data loaded", "path", *input, "rows", len(people))

	groups := dedupe.Detect(people, *threshold)
	if len(groups) == 0 {
		logger.Info("No duplicate or misspelled names detected")
		return nil
	}

	logger.Info("Found duplicate/misspelled name groups", "groups", len(groups))
	for _, group := range groups {
		fmt.Println("Duplicate group:")
		for _, idx := range group {
			p := people[idx]
			fmt.Printf("  first_name=%q middle_name=%q last_name=%q\n", p.FirstName, p.MiddleName, p.LastName)
		}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

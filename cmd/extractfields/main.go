package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"inboundbot/services/extraction"
)

type Options struct {
	File string `short:"f" long:"file" description:"Read the notification text from this file instead of stdin"`
	JSON bool   `long:"json" description:"Print the extracted fields as JSON"`
}

type extractedOutput struct {
	Email       *string `json:"email"`
	CompanyName *string `json:"company_name"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[--file PATH] [--json]"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	text, err := readInput(opts.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fields := extraction.Extract(text)
	output := extractedOutput{
		Email:       fields.Email.ToPointer(),
		CompanyName: fields.CompanyName.ToPointer(),
	}
	if name, ok := fields.PersonName.Get(); ok {
		output.FirstName = &name.FirstName
		output.LastName = &name.LastName
	}

	if opts.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Email:       %s\n", orMissing(output.Email))
	fmt.Printf("Company:     %s\n", orMissing(output.CompanyName))
	fmt.Printf("First name:  %s\n", orMissing(output.FirstName))
	fmt.Printf("Last name:   %s\n", orMissing(output.LastName))
	if fields.Email.IsAbsent() {
		os.Exit(2)
	}
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func orMissing(value *string) string {
	if value == nil {
		return "(not found)"
	}
	return *value
}

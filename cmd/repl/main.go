package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/calldeck/callquery/internal/app"
	"github.com/calldeck/callquery/internal/config"
	"github.com/calldeck/callquery/internal/service"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// keep the prompt readable, push logs to stderr at warn level
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	sessionID := uuid.NewString()

	fmt.Println("CallQuery - ask questions about the call center dataset")
	fmt.Println("Commands: /clear resets the conversation, /exit quits")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		switch {
		case question == "":
			continue
		case question == "/exit" || question == "/quit":
			return
		case question == "/clear":
			if err := a.Query.ClearSession(ctx, sessionID); err != nil {
				fmt.Fprintf(os.Stderr, "failed to clear session: %v\n", err)
				continue
			}
			sessionID = uuid.NewString()
			fmt.Println("Conversation cleared.")
			continue
		}

		resp, err := a.Query.Ask(ctx, question, sessionID)
		if err != nil {
			var perr *service.PipelineError
			if errors.As(err, &perr) {
				fmt.Printf("Sorry, I could not answer that: %s\n\n", perr.Detail)
			} else {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
			continue
		}

		fmt.Printf("%s\n\n", resp.Answer)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "input error: %v\n", err)
		os.Exit(1)
	}
}

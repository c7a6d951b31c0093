package main

import (
	"context"
	"log"

	"user-crud-api/cmd/api/app"
	"user-crud-api/cmd/api/server"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	ctx, stop := server.WithSignal(context.Background(), a.Logger)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("application exited with error: %v", err)
	}
}

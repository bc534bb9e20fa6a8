// Command registrar runs the node registrar HTTP service.
package main

import (
	"context"
	"log"

	"github.com/patric-chuzhbe/registrar/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("failed to initialize the app: %v", err)
	}
	defer application.Close()

	if err := application.Run(context.Background()); err != nil {
		log.Printf("the app stopped with an error: %v", err)
	}
}

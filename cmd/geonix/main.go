package main

import (
	// Ticket dates use a named zone; embed the database for minimal images
	_ "time/tzdata"

	"github.com/geonix/geonix-web/internal/cli"
)

func main() {
	cli.Execute()
}

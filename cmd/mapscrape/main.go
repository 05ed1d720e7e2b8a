package main

import (
	"context"

	"github.com/use-agent/mapscrape/cmd/mapscrape/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}

package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("MAPSCRAPE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("MAPSCRAPE_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "MAPSCRAPE_API_KEY is required")
		os.Exit(1)
	}
	api := newAPIClient(apiURL, apiKey)

	s := server.NewMCPServer(
		"mapscrape",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_maps",
		mcp.WithDescription("Search Google Maps and return one record per place in the results list: title, rating, review count, phone, website, address and link."),
		mcp.WithString("query",
			mcp.Description("Search query, e.g. 'coffee in Seattle'. Either query or url is required."),
		),
		mcp.WithString("url",
			mcp.Description("A Google Maps search URL (https://www.google.com/maps/search/...) to scrape as-is"),
		),
	)
	s.AddTool(scrapeTool, handleScrapeMaps(api))

	batchTool := mcp.NewTool("batch_scrape_maps",
		mcp.WithDescription("Search one term once per variant (for example a list of cities) and wait for the combined records. Each record is tagged with the variant it was found under."),
		mcp.WithString("term",
			mcp.Required(),
			mcp.Description("The search term, e.g. 'cafe'"),
		),
		mcp.WithArray("variants",
			mcp.Required(),
			mcp.Description("Values appended to the term one at a time, e.g. ['Paris', 'Lyon']"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Serve a cached batch younger than this many milliseconds (default: 0, no cache)"),
		),
	)
	s.AddTool(batchTool, handleBatchScrapeMaps(api))

	getBatchTool := mcp.NewTool("get_batch",
		mcp.WithDescription("Return the status and the records gathered so far for a batch job."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The batch job ID returned by batch_scrape_maps"),
		),
	)
	s.AddTool(getBatchTool, handleGetBatch(api))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/mapscrape/models"
)

func handleScrapeMaps(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := models.ScrapeRequest{
			Query: request.GetString("query", ""),
			URL:   request.GetString("url", ""),
		}
		if strings.TrimSpace(req.Query) == "" && req.URL == "" {
			return mcp.NewToolResultError("either query or url is required"), nil
		}

		body, err := api.post(ctx, "/api/v1/scrape", req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}

		var resp models.ScrapeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errorText(resp.Error, "scrape failed")), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Found %d places\n\n", resp.Total)
		writeRecords(&sb, resp.Records)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleBatchScrapeMaps(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		term, err := request.RequireString("term")
		if err != nil {
			return mcp.NewToolResultError("term is required"), nil
		}
		variants, err := request.RequireStringSlice("variants")
		if err != nil {
			return mcp.NewToolResultError("variants is required and must be an array of strings"), nil
		}

		body, err := api.post(ctx, "/api/v1/batch", models.BatchRequest{
			Term:     term,
			Variants: variants,
			MaxAge:   request.GetInt("max_age", 0),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}

		var created struct {
			models.BatchResponse
			Error *models.ErrorDetail `json:"error"`
		}
		if err := json.Unmarshal(body, &created); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch response: %v", err)), nil
		}
		if created.ID == "" {
			return mcp.NewToolResultError(errorText(created.Error, "batch job creation failed")), nil
		}

		body, err = api.pollBatch(ctx, created.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}
		return batchResult(body)
	}
}

func handleGetBatch(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		body, err := api.get(ctx, "/api/v1/batch/"+id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}
		return batchResult(body)
	}
}

func batchResult(body []byte) (*mcp.CallToolResult, error) {
	var st struct {
		models.BatchStatusResponse
		Error *models.ErrorDetail `json:"error"`
	}
	if err := json.Unmarshal(body, &st); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch status: %v", err)), nil
	}
	if st.Error != nil {
		return mcp.NewToolResultError(errorText(st.Error, "")), nil
	}
	return mcp.NewToolResultText(formatBatch(st.BatchStatusResponse)), nil
}

func formatBatch(st models.BatchStatusResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Batch %s: %s (%s variants, %d records)\n", st.ID, st.Status, st.Progress, st.Count)
	for _, f := range st.Failures {
		fmt.Fprintf(&sb, "  %s failed: [%s] %s\n", f.Variant, f.Code, f.Message)
	}
	sb.WriteString("\n")
	writeRecords(&sb, st.Records)
	return sb.String()
}

func writeRecords(sb *strings.Builder, records []models.Record) {
	for i, r := range records {
		if r.Variant != "" {
			fmt.Fprintf(sb, "--- [%d] %s (%s) ---\n", i+1, r.Title, r.Variant)
		} else {
			fmt.Fprintf(sb, "--- [%d] %s ---\n", i+1, r.Title)
		}
		for _, kv := range [][2]string{
			{"Rating", r.Rating},
			{"Reviews", r.ReviewCount},
			{"Phone", r.Phone},
			{"Website", r.Website},
			{"Address", r.Address},
			{"Link", r.Href},
		} {
			if kv[1] != "" {
				fmt.Fprintf(sb, "%s: %s\n", kv[0], kv[1])
			}
		}
		sb.WriteString("\n")
	}
}

func errorText(e *models.ErrorDetail, fallback string) string {
	if e == nil {
		return fallback
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

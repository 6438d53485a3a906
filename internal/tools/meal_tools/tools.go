package meal_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sherpahq/sherpa/internal/meals"
	"github.com/sherpahq/sherpa/internal/server"
	"github.com/sherpahq/sherpa/internal/tools/batch"
	"github.com/sherpahq/sherpa/internal/tools/common"
)

// notConfiguredResult is returned when no meal store is configured. It is a
// structured result, not a protocol error, so agents can detect the
// condition and relay the remedy.
func notConfiguredResult() *mcp.CallToolResult {
	payload := map[string]string{
		"error":   "Meal store not configured",
		"message": "Set SHERPA_DATA_DIR (or --data-dir) to a writable directory to enable meal logging.",
	}
	data, _ := json.Marshal(payload)
	return mcp.NewToolResultText(string(data))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// metricsFromArgs collects the optional numeric metric arguments that were
// actually supplied.
func metricsFromArgs(args map[string]interface{}) map[string]float64 {
	metrics := make(map[string]float64)
	for _, name := range meals.MetricNames {
		if v, ok := args[name].(float64); ok {
			metrics[name] = v
		}
	}
	if len(metrics) == 0 {
		return nil
	}
	return metrics
}

// RegisterMealTools registers all meal log tools with the MCP server
func RegisterMealTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List meals tool (read-only, always available)
	listTool := mcp.NewTool("meal_list",
		mcp.WithDescription("List logged meals with optional filters"),
		mcp.WithString("meal_type",
			mcp.Description("Filter by type - breakfast, lunch, dinner, or snack"),
		),
		mcp.WithString("start_date",
			mcp.Description("Filter meals on or after this date (YYYY-MM-DD)"),
		),
		mcp.WithString("end_date",
			mcp.Description("Filter meals on or before this date (YYYY-MM-DD)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of meals to return (default 50)"),
		),
	)

	s.AddTool(listTool, common.InstrumentedToolHandlerWithService(
		"meal_list", "meals", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListMeals(ctx, request, sc)
		}))

	// Get meal tool
	getTool := mcp.NewTool("meal_get",
		mcp.WithDescription("Get a specific meal by ID"),
		mcp.WithString("meal_id",
			mcp.Required(),
			mcp.Description("The ID of the meal to retrieve"),
		),
	)

	s.AddTool(getTool, common.InstrumentedToolHandlerWithService(
		"meal_get", "meals", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMeal(ctx, request, sc)
		}))

	// Daily summary tool
	summaryTool := mcp.NewTool("meal_daily_summary",
		mcp.WithDescription("Get nutrition summary for a specific day"),
		mcp.WithString("date",
			mcp.Description("Date to summarize (YYYY-MM-DD). Defaults to today."),
		),
	)

	s.AddTool(summaryTool, common.InstrumentedToolHandlerWithService(
		"meal_daily_summary", "meals", "summarize", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDailySummary(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// Log meal tool
	logTool := mcp.NewTool("meal_log",
		mcp.WithDescription("Log a new meal with description, type, time, and optional macros"),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What you ate (e.g., 'Grilled chicken salad with avocado')"),
		),
		mcp.WithString("meal_type",
			mcp.Required(),
			mcp.Description("Type of meal - breakfast, lunch, dinner, or snack"),
		),
		mcp.WithString("logged_at",
			mcp.Description("ISO datetime when the meal was eaten (defaults to now)"),
		),
		mcp.WithNumber("calories", mcp.Description("Total calories")),
		mcp.WithNumber("protein", mcp.Description("Protein in grams")),
		mcp.WithNumber("carbs", mcp.Description("Carbohydrates in grams")),
		mcp.WithNumber("fat", mcp.Description("Fat in grams")),
		mcp.WithNumber("fiber", mcp.Description("Fiber in grams")),
	)

	s.AddTool(logTool, common.InstrumentedToolHandlerWithService(
		"meal_log", "meals", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLogMeal(ctx, request, sc)
		}))

	// Update meal tool
	updateTool := mcp.NewTool("meal_update",
		mcp.WithDescription("Update an existing meal"),
		mcp.WithString("meal_id",
			mcp.Required(),
			mcp.Description("ID of the meal to update"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("meal_type",
			mcp.Description("New meal type - breakfast, lunch, dinner, or snack"),
		),
		mcp.WithString("logged_at",
			mcp.Description("New ISO datetime"),
		),
		mcp.WithNumber("calories", mcp.Description("Updated calories")),
		mcp.WithNumber("protein", mcp.Description("Updated protein in grams")),
		mcp.WithNumber("carbs", mcp.Description("Updated carbohydrates in grams")),
		mcp.WithNumber("fat", mcp.Description("Updated fat in grams")),
		mcp.WithNumber("fiber", mcp.Description("Updated fiber in grams")),
	)

	s.AddTool(updateTool, common.InstrumentedToolHandlerWithService(
		"meal_update", "meals", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateMeal(ctx, request, sc)
		}))

	// Delete meal tool
	deleteTool := mcp.NewTool("meal_delete",
		mcp.WithDescription("Delete one or more meals"),
		mcp.WithString("meal_id",
			mcp.Required(),
			mcp.Description("ID of the meal to delete. Can be a single ID or an array of IDs."),
		),
	)

	s.AddTool(deleteTool, common.InstrumentedToolHandlerWithService(
		"meal_delete", "meals", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteMeal(ctx, request, sc)
		}))

	return nil
}

func handleLogMeal(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	store := sc.MealStore()
	if store == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()

	description, ok := args["description"].(string)
	if !ok || description == "" {
		return mcp.NewToolResultError("description is required"), nil
	}
	mealType, ok := args["meal_type"].(string)
	if !ok || mealType == "" {
		return mcp.NewToolResultError("meal_type is required"), nil
	}

	input := meals.LogInput{
		Description: description,
		Category:    mealType,
		Metrics:     metricsFromArgs(args),
	}
	if loggedAt, ok := args["logged_at"].(string); ok {
		input.LoggedAt = loggedAt
	}

	rec, err := store.Log(input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to log meal: %v", err)), nil
	}

	return jsonResult(rec)
}

func handleListMeals(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	store := sc.MealStore()
	if store == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()

	filter := meals.ListFilter{}
	if mealType, ok := args["meal_type"].(string); ok {
		filter.Category = mealType
	}
	if startDate, ok := args["start_date"].(string); ok {
		filter.StartDate = startDate
	}
	if endDate, ok := args["end_date"].(string); ok {
		filter.EndDate = endDate
	}
	if limit, ok := args["limit"].(float64); ok {
		filter.Limit = int(limit)
	}

	records, err := store.List(filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list meals: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"meals": records,
		"count": len(records),
	})
}

func handleGetMeal(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	store := sc.MealStore()
	if store == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	mealID, ok := args["meal_id"].(string)
	if !ok || mealID == "" {
		return mcp.NewToolResultError("meal_id is required"), nil
	}

	rec, err := store.Get(mealID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get meal: %v", err)), nil
	}

	return jsonResult(rec)
}

func handleUpdateMeal(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	store := sc.MealStore()
	if store == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	mealID, ok := args["meal_id"].(string)
	if !ok || mealID == "" {
		return mcp.NewToolResultError("meal_id is required"), nil
	}

	input := meals.UpdateInput{
		Metrics: metricsFromArgs(args),
	}
	if description, ok := args["description"].(string); ok {
		input.Description = &description
	}
	if mealType, ok := args["meal_type"].(string); ok {
		input.Category = &mealType
	}
	if loggedAt, ok := args["logged_at"].(string); ok {
		input.LoggedAt = &loggedAt
	}

	rec, err := store.Update(mealID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update meal: %v", err)), nil
	}

	return jsonResult(rec)
}

func handleDeleteMeal(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	store := sc.MealStore()
	if store == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()

	// Parse meal_id - can be string or array
	mealIDs, err := batch.ParseStringOrArray(args["meal_id"], "meal_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.ProcessBatch(mealIDs, func(mealID string) (string, error) {
		if err := store.Delete(mealID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Meal %s deleted successfully", mealID), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleDailySummary(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	store := sc.MealStore()
	if store == nil {
		return notConfiguredResult(), nil
	}

	args := request.GetArguments()
	date := ""
	if dateVal, ok := args["date"].(string); ok {
		date = dateVal
	}

	summary, err := store.Summarize(date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to summarize day: %v", err)), nil
	}

	return jsonResult(summary)
}

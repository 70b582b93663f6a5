package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deanshub/fintrack/internal/ledger"
	"github.com/deanshub/fintrack/internal/models"
	"github.com/deanshub/fintrack/internal/parser"
	"github.com/deanshub/fintrack/internal/store"
	"github.com/deanshub/fintrack/internal/writer"
)

const version = "1.0.0"

// Handler holds the HTTP handlers for the ledger API.
type Handler struct {
	Store *store.FileStore
	Log   zerolog.Logger
}

// UploadResponse is the JSON response from POST /api/upload.
type UploadResponse struct {
	Source   string   `json:"source"`
	Total    int      `json:"total"`
	Added    int      `json:"added"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}

// RegisterRoutes sets up the API routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.handleHealth)
	app.Post("/api/upload", h.handleUpload)

	app.Get("/api/transactions", h.handleListTransactions)
	app.Post("/api/transactions", h.handleCreateTransactions)
	app.Post("/api/transactions/categorize", h.handleRecategorize)
	app.Patch("/api/transactions/:id", h.handleUpdateTransaction)

	app.Get("/api/categories", h.handleListCategories)
	app.Post("/api/categories", h.handleCreateCategory)
	app.Put("/api/categories/:id", h.handleUpdateCategory)
	app.Delete("/api/categories/:id", h.handleDeleteCategory)

	app.Get("/api/budgets", h.handleListBudgets)
	app.Post("/api/budgets", h.handleUpsertBudget)

	app.Get("/api/stats/summary", h.handleStatsSummary)
	app.Get("/api/stats/trend", h.handleStatsTrend)

	app.Get("/api/export", h.handleExport)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
	})
}

// handleUpload converts an uploaded statement PDF and merges its
// transactions into the ledger.
func (h *Handler) handleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return badRequest(c, "Only PDF files are supported.")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return serverError(c, fmt.Sprintf("Failed to open upload: %v", err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return serverError(c, fmt.Sprintf("Failed to read upload: %v", err))
	}

	if err := h.Store.SaveOriginal(fileHeader.Filename, data); err != nil {
		h.Log.Warn().Err(err).Str("file", fileHeader.Filename).Msg("failed to archive original")
	}

	result, err := ledger.ConvertDocument(data, fileHeader.Filename)
	if err != nil {
		var vErr *parser.ValidationError
		switch {
		case errors.Is(err, parser.ErrUnrecognizedFormat):
			return badRequest(c, err.Error())
		case errors.As(err, &vErr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "Invalid conversion result",
				"details": vErr.Violations,
			})
		default:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}
	}

	categories, err := h.Store.ReadCategories()
	if err != nil {
		return serverError(c, err.Error())
	}

	ingested, err := ledger.Ingest(h.Store, categories, ledger.FromConversion(result))
	if err != nil {
		return serverError(c, err.Error())
	}

	h.Log.Info().
		Str("file", fileHeader.Filename).
		Str("source", result.Source).
		Int("added", ingested.Added).
		Int("skipped", ingested.Skipped).
		Int("warnings", len(result.Warnings)).
		Msg("statement ingested")

	return c.JSON(UploadResponse{
		Source:   result.Source,
		Total:    len(result.Transactions),
		Added:    ingested.Added,
		Skipped:  ingested.Skipped,
		Warnings: result.Warnings,
	})
}

// handleListTransactions returns one month partition or the whole
// ledger, optionally filtered by category ids, sorted date-descending.
func (h *Handler) handleListTransactions(c *fiber.Ctx) error {
	month := c.Query("month")

	var txs []models.Transaction
	var err error
	if month != "" {
		txs, err = h.Store.ReadTransactions(month)
	} else {
		txs, err = h.readAllTransactions()
	}
	if err != nil {
		return serverError(c, err.Error())
	}

	if filter := c.Query("category"); filter != "" {
		wanted := make(map[string]struct{})
		for _, id := range strings.Split(filter, ",") {
			wanted[id] = struct{}{}
		}
		filtered := txs[:0]
		for _, tx := range txs {
			id := ""
			if tx.CategoryID != nil {
				id = *tx.CategoryID
			}
			if _, ok := wanted[id]; ok {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date > txs[j].Date })
	if txs == nil {
		txs = []models.Transaction{}
	}
	return c.JSON(txs)
}

// handleCreateTransactions accepts a single transaction or an array and
// pushes them through the same merge pipeline as statement uploads.
func (h *Handler) handleCreateTransactions(c *fiber.Ctx) error {
	body := c.Body()

	var incoming []ledger.NewTransaction
	if err := json.Unmarshal(body, &incoming); err != nil {
		var single ledger.NewTransaction
		if err := json.Unmarshal(body, &single); err != nil {
			return badRequest(c, "Expected a transaction object or array.")
		}
		incoming = []ledger.NewTransaction{single}
	}

	for i, tx := range incoming {
		res := models.ConversionResult{
			Source:       tx.Source,
			Transactions: []models.ParsedTransaction{{Date: tx.Date, Amount: tx.Amount, Description: tx.Description, Type: tx.Type}},
		}
		if err := parser.ValidateResult(&res); err != nil {
			var vErr *parser.ValidationError
			errors.As(err, &vErr)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   fmt.Sprintf("Invalid transaction at index %d", i),
				"details": vErr.Violations,
			})
		}
	}

	categories, err := h.Store.ReadCategories()
	if err != nil {
		return serverError(c, err.Error())
	}
	result, err := ledger.Ingest(h.Store, categories, incoming)
	if err != nil {
		return serverError(c, err.Error())
	}
	return c.JSON(result)
}

// handleUpdateTransaction sets a transaction's category and engages the
// manual lock, so the classifier never overrides the choice.
func (h *Handler) handleUpdateTransaction(c *fiber.Ctx) error {
	id := c.Params("id")

	var body struct {
		CategoryID *string `json:"categoryId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON body.")
	}

	months, err := h.Store.ListTransactionMonths()
	if err != nil {
		return serverError(c, err.Error())
	}

	for _, month := range months {
		txs, err := h.Store.ReadTransactions(month)
		if err != nil {
			return serverError(c, err.Error())
		}
		for i := range txs {
			if txs[i].ID != id {
				continue
			}
			txs[i].CategoryID = body.CategoryID
			txs[i].CategoryManual = true
			if err := h.Store.WriteTransactions(month, txs); err != nil {
				return serverError(c, err.Error())
			}
			return c.JSON(txs[i])
		}
	}

	return notFound(c, "Transaction not found")
}

// handleRecategorize re-runs the classifier over the whole ledger,
// respecting manual locks.
func (h *Handler) handleRecategorize(c *fiber.Ctx) error {
	categories, err := h.Store.ReadCategories()
	if err != nil {
		return serverError(c, err.Error())
	}
	changed, err := ledger.Recategorize(h.Store, categories)
	if err != nil {
		return serverError(c, err.Error())
	}
	return c.JSON(fiber.Map{"updated": changed})
}

func (h *Handler) handleListCategories(c *fiber.Ctx) error {
	categories, err := h.Store.ReadCategories()
	if err != nil {
		return serverError(c, err.Error())
	}
	return c.JSON(categories)
}

func (h *Handler) handleCreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return badRequest(c, "Invalid JSON body.")
	}
	if category.Name == "" {
		return badRequest(c, "Category name is required.")
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.Rules == nil {
		category.Rules = []models.CategoryRule{}
	}

	categories, err := h.Store.ReadCategories()
	if err != nil {
		return serverError(c, err.Error())
	}
	for _, existing := range categories {
		if existing.ID == category.ID {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Category already exists"})
		}
	}

	categories = append(categories, category)
	if err := h.Store.WriteCategories(categories); err != nil {
		return serverError(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *Handler) handleUpdateCategory(c *fiber.Ctx) error {
	id := c.Params("id")

	var body struct {
		Name  *string               `json:"name"`
		Icon  *string               `json:"icon"`
		Color *string               `json:"color"`
		Rules *[]models.CategoryRule `json:"rules"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON body.")
	}

	categories, err := h.Store.ReadCategories()
	if err != nil {
		return serverError(c, err.Error())
	}
	for i := range categories {
		if categories[i].ID != id {
			continue
		}
		if body.Name != nil {
			categories[i].Name = *body.Name
		}
		if body.Icon != nil {
			categories[i].Icon = *body.Icon
		}
		if body.Color != nil {
			categories[i].Color = *body.Color
		}
		if body.Rules != nil {
			categories[i].Rules = *body.Rules
		}
		if err := h.Store.WriteCategories(categories); err != nil {
			return serverError(c, err.Error())
		}
		return c.JSON(categories[i])
	}

	return notFound(c, "Category not found")
}

// handleDeleteCategory removes a category and cascades: transactions
// referencing it revert to uncategorized with the manual lock released.
// Partition cascades are independent; one failing month does not abort
// the rest.
func (h *Handler) handleDeleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")

	categories, err := h.Store.ReadCategories()
	if err != nil {
		return serverError(c, err.Error())
	}
	idx := -1
	for i := range categories {
		if categories[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return notFound(c, "Category not found")
	}

	categories = append(categories[:idx], categories[idx+1:]...)
	if err := h.Store.WriteCategories(categories); err != nil {
		return serverError(c, err.Error())
	}

	cleared, err := ledger.ClearCategory(h.Store, id)
	if err != nil {
		h.Log.Error().Err(err).Str("category", id).Msg("cascade incomplete")
	}
	return c.JSON(fiber.Map{"deleted": id, "cleared": cleared})
}

func (h *Handler) handleListBudgets(c *fiber.Ctx) error {
	budgets, err := h.Store.ReadBudgets()
	if err != nil {
		return serverError(c, err.Error())
	}
	if month := c.Query("month"); month != "" {
		for _, b := range budgets {
			if b.Month == month {
				return c.JSON(b)
			}
		}
		return c.JSON(nil)
	}
	return c.JSON(budgets)
}

func (h *Handler) handleUpsertBudget(c *fiber.Ctx) error {
	var budget models.Budget
	if err := c.BodyParser(&budget); err != nil {
		return badRequest(c, "Invalid JSON body.")
	}
	if budget.Month == "" {
		return badRequest(c, "Budget month is required.")
	}
	if budget.CategoryLimits == nil {
		budget.CategoryLimits = map[string]int64{}
	}

	budgets, err := h.Store.ReadBudgets()
	if err != nil {
		return serverError(c, err.Error())
	}
	replaced := false
	for i := range budgets {
		if budgets[i].Month == budget.Month {
			budgets[i] = budget
			replaced = true
			break
		}
	}
	if !replaced {
		budgets = append(budgets, budget)
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Month > budgets[j].Month })

	if err := h.Store.WriteBudgets(budgets); err != nil {
		return serverError(c, err.Error())
	}
	return c.JSON(budget)
}

// handleStatsSummary returns income/expense totals and per-category
// expense totals for one month.
func (h *Handler) handleStatsSummary(c *fiber.Ctx) error {
	month := c.Query("month")
	if month == "" {
		return badRequest(c, "month parameter required")
	}

	txs, err := h.Store.ReadTransactions(month)
	if err != nil {
		return serverError(c, err.Error())
	}

	var income, expenses int64
	byCategory := map[string]int64{}
	for _, tx := range txs {
		if tx.Type == models.TypeIncome {
			income += tx.Amount
			continue
		}
		expenses += tx.Amount
		key := "uncategorized"
		if tx.CategoryID != nil {
			key = *tx.CategoryID
		}
		byCategory[key] += tx.Amount
	}

	return c.JSON(fiber.Map{
		"income":     income,
		"expenses":   expenses,
		"net":        income - expenses,
		"byCategory": byCategory,
	})
}

// handleStatsTrend returns per-month income/expense totals for the most
// recent N months present in the ledger.
func (h *Handler) handleStatsTrend(c *fiber.Ctx) error {
	limit := 6
	if raw := c.Query("months"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	months, err := h.Store.ListTransactionMonths()
	if err != nil {
		return serverError(c, err.Error())
	}
	if len(months) > limit {
		months = months[len(months)-limit:]
	}

	type monthPoint struct {
		Month    string `json:"month"`
		Income   int64  `json:"income"`
		Expenses int64  `json:"expenses"`
	}
	points := make([]monthPoint, 0, len(months))
	for _, month := range months {
		txs, err := h.Store.ReadTransactions(month)
		if err != nil {
			return serverError(c, err.Error())
		}
		point := monthPoint{Month: month}
		for _, tx := range txs {
			if tx.Type == models.TypeIncome {
				point.Income += tx.Amount
			} else {
				point.Expenses += tx.Amount
			}
		}
		points = append(points, point)
	}
	return c.JSON(points)
}

// handleExport streams the whole ledger as CSV.
func (h *Handler) handleExport(c *fiber.Ctx) error {
	txs, err := h.readAllTransactions()
	if err != nil {
		return serverError(c, err.Error())
	}
	categories, err := h.Store.ReadCategories()
	if err != nil {
		return serverError(c, err.Error())
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date > txs[j].Date })

	var buf bytes.Buffer
	w := &writer.CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, txs, categories); err != nil {
		return serverError(c, err.Error())
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
	return c.Send(buf.Bytes())
}

func (h *Handler) readAllTransactions() ([]models.Transaction, error) {
	months, err := h.Store.ListTransactionMonths()
	if err != nil {
		return nil, err
	}
	var all []models.Transaction
	for _, month := range months {
		txs, err := h.Store.ReadTransactions(month)
		if err != nil {
			return nil, err
		}
		all = append(all, txs...)
	}
	return all, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func serverError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

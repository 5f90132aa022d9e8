package statement

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/owobank/owobank/internal/wallet"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type generateRequest struct {
	Period    string `json:"period"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Category  string `json:"category"`
}

func (h *Handler) Generate(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)
	if ownerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	in := Input{OwnerID: ownerID, Period: req.Period, Category: req.Category}
	if req.StartDate != "" {
		t, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
		in.Start = t
	}
	if req.EndDate != "" {
		t, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
		in.End = t
	}

	stmt, err := h.svc.Generate(c.Context(), in)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidPeriod), errors.Is(err, ErrInvalidRange), errors.Is(err, ErrRangeTooWide):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, wallet.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "wallet not found")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "could not generate statement")
	}

	entries := make([]fiber.Map, 0, len(stmt.Entries))
	for _, e := range stmt.Entries {
		entries = append(entries, fiber.Map{
			"id":           e.ID,
			"amount":       e.Amount.StringFixed(2),
			"category":     e.Category,
			"description":  e.Description,
			"counterparty": e.Counterparty,
			"created_at":   e.CreatedAt,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"statement": recordResponse(stmt.Record),
		"entries":   entries,
	})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)
	if ownerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	rec, err := h.svc.Find(c.Context(), ownerID, c.Params("id"))
	switch {
	case err == nil:
	case errors.Is(err, ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, "statement not found")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "could not load statement")
	}
	return c.JSON(fiber.Map{"statement": recordResponse(rec)})
}

func (h *Handler) History(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)
	if ownerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	records, err := h.svc.History(c.Context(), ownerID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load statements")
	}

	out := make([]fiber.Map, 0, len(records))
	for _, rec := range records {
		out = append(out, recordResponse(rec))
	}
	return c.JSON(fiber.Map{"statements": out})
}

func recordResponse(rec Record) fiber.Map {
	return fiber.Map{
		"id":           rec.ID,
		"period":       rec.Period,
		"from":         rec.From,
		"to":           rec.To,
		"category":     rec.Category,
		"entry_count":  rec.Count,
		"total_credit": rec.TotalCredit,
		"total_debit":  rec.TotalDebit,
		"net":          rec.Net,
		"generated_at": rec.GeneratedAt,
	}
}

package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nguyentantai21042004/yt-summarizer/internal/processor"
	"github.com/nguyentantai21042004/yt-summarizer/internal/store"
)

// EventStreamType is the media type of the summarize response. The body
// is newline-delimited JSON, one event per line.
const EventStreamType = "text/event-stream"

func (h *handler) root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": appName,
		"version": Version,
		"endpoints": fiber.Map{
			"POST /api/summarize":     "Summarize a YouTube video",
			"GET /api/summaries":      "List recent summaries",
			"GET /api/summaries/{id}": "Get a stored summary",
			"GET /api/providers":      "List configured AI providers",
		},
	})
}

func (h *handler) summarize(c *fiber.Ctx) error {
	var req processor.Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	c.Set(fiber.HeaderContentType, EventStreamType)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Accel-Buffering", "no")

	// The writer runs after the handler returns, so c must not be used in it.
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(h.baseCtx)
		defer cancel()

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		sink := processor.SinkFunc(func(ev processor.Event) error {
			if err := enc.Encode(ev); err != nil {
				return err
			}
			return w.Flush()
		})

		if _, err := h.proc.Process(ctx, req, sink); err != nil {
			h.logger.Debug(ctx, "summarize %s: %v", req.URL, err)
		}
	})
	return nil
}

func (h *handler) listSummaries(c *fiber.Ctx) error {
	if h.store == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "summary storage is disabled")
	}
	records, err := h.store.List(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"summaries": records, "count": len(records)})
}

func (h *handler) getSummary(c *fiber.Ctx) error {
	if h.store == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "summary storage is disabled")
	}
	rec, err := h.store.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "summary not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *handler) listProviders(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"providers": h.providers})
}

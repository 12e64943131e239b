package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inventory-sales-ledger/internal/api_gateway/middleware"
	"github.com/inventory-sales-ledger/internal/api_gateway/service"
	"github.com/inventory-sales-ledger/internal/domain/item"
)

// ItemHandler handles HTTP requests for item registration and maintenance
type ItemHandler struct {
	itemService service.ItemService
	logger      *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(logger *slog.Logger, itemService service.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// Create registers a new item, returns 409 if the name is taken
func (h *ItemHandler) Create(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		RespondBadRequest(c, "Invalid acquired_on date")
		return
	}

	it, err := h.itemService.RegisterItem(c.Request.Context(), input)
	if err != nil {
		respondError(c, log, "Failed to register item", err)
		return
	}

	RespondCreated(c, mapItemToResponse(it))
}

// GetByID retrieves an item by its ID, returns 404 if not found
func (h *ItemHandler) GetByID(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	id, ok := parseItemID(c)
	if !ok {
		return
	}

	it, err := h.itemService.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, "Failed to get item", err)
		return
	}

	RespondOK(c, mapItemToResponse(it))
}

// List returns items ordered by size label, optionally filtered by category
func (h *ItemHandler) List(c *gin.Context) {
	h.list(c, false)
}

// ListSold is List restricted to items with at least one unit sold
func (h *ItemHandler) ListSold(c *gin.Context) {
	h.list(c, true)
}

func (h *ItemHandler) list(c *gin.Context, soldOnly bool) {
	log := middleware.RequestLogger(c, h.logger)

	var params ItemListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		log.Warn("Invalid list parameters", "error", err)
		RespondBadRequest(c, "Invalid list parameters")
		return
	}

	filter := item.ListFilter{Category: params.Category, SoldOnly: soldOnly}
	items, total, err := h.itemService.ListItems(c.Request.Context(), filter, params.Skip, params.Limit)
	if err != nil {
		respondError(c, log, "Failed to list items", err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, mapItemsToResponse(items), params.Skip, params.Limit, total)
}

// Update applies an administrative edit guarded by the item version
func (h *ItemHandler) Update(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	id, ok := parseItemID(c)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	it, err := h.itemService.EditItem(c.Request.Context(), id, req.toEdit())
	if err != nil {
		respondError(c, log, "Failed to edit item", err)
		return
	}

	RespondOK(c, mapItemToResponse(it))
}

// Delete removes an item that has no recorded sales
func (h *ItemHandler) Delete(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	id, ok := parseItemID(c)
	if !ok {
		return
	}

	if err := h.itemService.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, log, "Failed to delete item", err)
		return
	}

	RespondNoContent(c)
}


// parseItemID writes a 400 and returns false when the path id is not a positive integer
func parseItemID(c *gin.Context) (int64, bool) {
	idParam := c.Param("id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(c, "Invalid item ID")
		return 0, false
	}
	return id, true
}

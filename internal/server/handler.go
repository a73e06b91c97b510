package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/farmkeep/shell/internal/domain"
	"github.com/farmkeep/shell/internal/records"
	"github.com/farmkeep/shell/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrientationSource reports the rotation policy of the visible screen.
type OrientationSource interface {
	Orientation() router.Orientation
}

type Handler struct {
	screen      *Screen
	orientation OrientationSource
	animals     *records.AnimalStore
	sales       *records.SaleStore
	logger      *slog.Logger
	now         func() time.Time
}

func NewHandler(
	screen *Screen,
	orientation OrientationSource,
	animals *records.AnimalStore,
	sales *records.SaleStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		screen:      screen,
		orientation: orientation,
		animals:     animals,
		sales:       sales,
		logger:      logger,
		now:         time.Now,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) State(c *gin.Context) {
	kind, url := h.screen.Current()
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"data": gin.H{
			"screen":      string(kind),
			"url":         url,
			"orientation": h.orientation.Orientation(),
		},
	})
}

// Index sends the web screen to its destination.
func (h *Handler) Index(c *gin.Context) {
	_, url := h.screen.Current()
	c.Redirect(http.StatusFound, url)
}

// NoRoute answers unknown paths, with 503 until the launch is decided.
func (h *Handler) NoRoute(c *gin.Context) {
	if kind, _ := h.screen.Current(); kind == ScreenNone {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "launch decision pending"})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
}

// ---------------------------------------------------------------------------
// Animals
// ---------------------------------------------------------------------------

type animalRequest struct {
	Type     string `json:"type" binding:"required"`
	Quantity int    `json:"quantity"`
	Breed    string `json:"breed"`
	Sex      string `json:"sex" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

func (r animalRequest) animal(id uuid.UUID) records.Animal {
	return records.Animal{
		ID:       id,
		Type:     records.AnimalType(r.Type),
		Quantity: r.Quantity,
		Breed:    r.Breed,
		Sex:      records.AnimalSex(r.Sex),
		Status:   records.AnimalStatus(r.Status),
	}
}

func (h *Handler) ListAnimals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"data": gin.H{
			"animals":     h.animals.List(),
			"total_heads": h.animals.TotalHeads(),
		},
	})
}

func (h *Handler) CreateAnimal(c *gin.Context) {
	var req animalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	animal, err := h.animals.Add(req.animal(uuid.Nil))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("animal added", "id", animal.ID, "type", string(animal.Type), "quantity", animal.Quantity)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": animal})
}

func (h *Handler) UpdateAnimal(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}

	var req animalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	animal, err := h.animals.Update(req.animal(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": animal})
}

func (h *Handler) DeleteAnimal(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	if err := h.animals.Delete(id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ---------------------------------------------------------------------------
// Sales
// ---------------------------------------------------------------------------

type saleRequest struct {
	Category   string     `json:"category" binding:"required"`
	AnimalType string     `json:"animal_type" binding:"required"`
	Quantity   float64    `json:"quantity"`
	Amount     float64    `json:"amount"`
	Customer   string     `json:"customer"`
	Date       *time.Time `json:"date"`
}

func (r saleRequest) sale(id uuid.UUID) records.Sale {
	s := records.Sale{
		ID:         id,
		Category:   records.SaleCategory(r.Category),
		AnimalType: records.AnimalType(r.AnimalType),
		Quantity:   r.Quantity,
		Amount:     r.Amount,
		Customer:   r.Customer,
	}
	if r.Date != nil {
		s.Date = *r.Date
	}
	return s
}

func (h *Handler) ListSales(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"data": gin.H{
			"sales": h.sales.List(),
			"total": h.sales.Total(),
		},
	})
}

func (h *Handler) CreateSale(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	sale, err := h.sales.Add(req.sale(uuid.Nil))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("sale recorded", "id", sale.ID, "category", string(sale.Category), "amount", sale.Amount)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": sale})
}

func (h *Handler) UpdateSale(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}

	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	sale, err := h.sales.Update(req.sale(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": sale})
}

func (h *Handler) DeleteSale(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	if err := h.sales.Delete(id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Statistics(c *gin.Context) {
	st := records.Compute(h.now(), h.animals.List(), h.sales.List())
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": st})
}

func (h *Handler) id(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	var verr records.ValidationError
	switch {
	case errors.As(err, &verr):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(code, gin.H{"ok": false, "error": err.Error()})
}

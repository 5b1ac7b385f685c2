package handler

import (
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/core/service"
)

const (
	maxImageUploadBytes = 10 << 20
	imageMaxWidth       = 800
)

type ProductHandler struct {
	products  *service.ProductService
	uploadDir string
}

func NewProductHandler(products *service.ProductService, uploadDir string) *ProductHandler {
	return &ProductHandler{products: products, uploadDir: uploadDir}
}

type createProductRequest struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Price             float64 `json:"price"`
	StockQuantity     int     `json:"stock_quantity"`
	Category          string  `json:"category"`
	SKU               string  `json:"sku"`
	ImageURL          string  `json:"image_url"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
}

type updateProductRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Price             *float64 `json:"price"`
	StockQuantity     *int     `json:"stock_quantity"`
	Category          *string  `json:"category"`
	SKU               *string  `json:"sku"`
	ImageURL          *string  `json:"image_url"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
}

type productResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Price             float64   `json:"price"`
	StockQuantity     int       `json:"stock_quantity"`
	Category          string    `json:"category"`
	SKU               string    `json:"sku"`
	ImageURL          string    `json:"image_url"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		StockQuantity:     p.StockQuantity,
		Category:          p.Category,
		SKU:               p.SKU,
		ImageURL:          p.ImageURL,
		LowStockThreshold: p.LowStockThreshold,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.SKU == "" {
		writeDetail(w, http.StatusBadRequest, "name and sku are required")
		return
	}

	product, err := h.products.Create(r.Context(), service.CreateProductRequest{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		Category:          req.Category,
		SKU:               req.SKU,
		ImageURL:          req.ImageURL,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	products, err := h.products.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.Update(r.Context(), r.PathValue("id"), service.ProductUpdate{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		Category:          req.Category,
		SKU:               req.SKU,
		ImageURL:          req.ImageURL,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// UploadImage accepts a multipart image, scales it down to a bounded
// width and stores the reference on the product.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Validate the target exists before touching the filesystem.
	if _, err := h.products.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "file too large")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeDetail(w, http.StatusBadRequest, "File must be an image")
		return
	}

	var img image.Image
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".png":
		img, err = png.Decode(file)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	default:
		writeDetail(w, http.StatusBadRequest, "unsupported image format")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "could not decode image")
		return
	}

	scaled := resize.Resize(imageMaxWidth, 0, img, resize.Lanczos3)
	filename := fmt.Sprintf("%s.jpg", uuid.New().String())

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		writeError(w, fmt.Errorf("create upload dir: %w", err))
		return
	}
	out, err := os.Create(filepath.Join(h.uploadDir, filename))
	if err != nil {
		writeError(w, fmt.Errorf("create image file: %w", err))
		return
	}
	defer out.Close()
	if err := jpeg.Encode(out, scaled, &jpeg.Options{Quality: 80}); err != nil {
		writeError(w, fmt.Errorf("encode image: %w", err))
		return
	}

	imageURL := "/static/uploads/products/" + filename
	if err := h.products.SetImage(r.Context(), id, imageURL); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Image uploaded successfully",
		"image_url": imageURL,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

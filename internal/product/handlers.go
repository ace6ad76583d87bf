package product

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shelfscan/internal/inferring"
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeJSONError writes a JSON error body of the form {"error": "..."}
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleAnalyzeProduct resolves a product code through the cascade
func (s *Server) handleAnalyzeProduct(w http.ResponseWriter, r *http.Request) {
	var req ScanInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.resolver.Resolve(req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInputRequired):
			writeJSONError(w, http.StatusBadRequest, "Code is required and must be a non-empty string")
		case errors.Is(err, inferring.ErrNotConfigured):
			slog.Error("Inference provider not configured")
			writeJSONError(w, http.StatusInternalServerError, "AI provider is not configured")
		default:
			slog.Error("Error resolving product code", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to analyze product with AI")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListItems returns saved items, optionally filtered by a q= query
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	var (
		items []*Item
		err   error
	)
	if query := r.URL.Query().Get("q"); query != "" {
		items, err = s.inventory.SearchItems(query)
	} else {
		items, err = s.inventory.ListItems()
	}
	if err != nil {
		slog.Error("Error listing items", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ensure we always return an array, not nil
	if items == nil {
		items = []*Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleAddItem saves an item to the inventory
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req NewItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.inventory.AddItem(req)
	if err != nil {
		slog.Error("Error adding item", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// handleGetItem returns a single item
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Item ID required", http.StatusBadRequest)
		return
	}
	item, err := s.inventory.GetItem(id)
	if err != nil {
		corsError(w, "Item not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleDeleteItem deletes an item
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Item ID required", http.StatusBadRequest)
		return
	}
	if err := s.inventory.DeleteItem(id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			corsError(w, "Item not found", http.StatusNotFound)
			return
		}
		corsError(w, "Error deleting item", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

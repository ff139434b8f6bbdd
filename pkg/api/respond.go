// Package api carries the JSON response envelope shared by every service.
// All endpoints answer {success, data|message}; paginated listings add a
// pagination block.
package api

import (
	"encoding/json"
	"log"
	"net/http"
)

type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func OK(w http.ResponseWriter, data interface{}, message string) {
	JSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, data interface{}, message string) {
	JSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func Page(w http.ResponseWriter, data interface{}, p Pagination) {
	JSON(w, http.StatusOK, Response{Success: true, Data: data, Pagination: &p})
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Response{Success: false, Message: message})
}

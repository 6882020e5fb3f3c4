package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail emits the {"detail": "..."} error body the web client parses.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

type fieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// writeValidation emits a 422 with the array-of-{loc, msg} detail shape.
func writeValidation(w http.ResponseWriter, fields []fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": fields})
}

func bodyField(name, msg string) fieldError {
	return fieldError{Loc: []any{"body", name}, Msg: msg}
}

func queryField(name, msg string) fieldError {
	return fieldError{Loc: []any{"query", name}, Msg: msg}
}

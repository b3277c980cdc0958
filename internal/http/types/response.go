// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Response is the envelope of every JSON body served by the API.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Outcome string `json:"outcome,omitempty"`
	Data    any    `json:"data,omitempty"`
	Meta    *Meta  `json:"_meta,omitempty"`
}

type Meta struct {
	Page int64 `json:"page"`
	Size int64 `json:"size"`
}

// WriteJSON writes the envelope with the HTTP status taken from it.
func WriteJSON(w http.ResponseWriter, r Response) error {
	if r.Message == "" {
		r.Message = http.StatusText(r.Status)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.Status)

	return json.NewEncoder(w).Encode(r)
}

// WriteError writes an error envelope with no data.
func WriteError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, Response{Status: status, Message: message})
}

// QueryInt parses an integer query parameter, a missing one reads as zero.
func QueryInt(r *http.Request, key string) (int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

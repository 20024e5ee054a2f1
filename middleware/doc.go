// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (request_id, method, path, client_ip) and completion
(status, duration_ms). Every request gets an id, taken from X-Request-ID
when the client sends one and generated otherwise. The id is echoed in the
response header and available to handlers through RequestID(r.Context()).

# CORS Middleware

Enable cross-origin requests for the configured frontend origins:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins)(mux),
	}

Origins not in the list receive no CORS headers. A "*" entry allows every
origin.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "Survey not found")
	middleware.ErrorDetailsResponse(w, http.StatusBadRequest, msg, names)

Parse JSON request bodies:

	var req models.QuestionSelection
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/branchline/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	router := NewRouter(db, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got %s", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	router := NewRouter(db, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "branchline API v1" {
		t.Errorf("Expected API identifier, got %s", w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	router := NewRouter(db, testutil.GetTestConfig())

	// Each route should exist; a 404 or 405 means it is not registered
	// with the expected method pattern
	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/users/register"},
		{"GET", "/users/me"},
		{"GET", "/polls"},
		{"POST", "/polls"},
		{"GET", "/polls/1/admin"},
		{"POST", "/polls/1/questions"},
		{"POST", "/polls/1/questions/2/choices"},
		{"POST", "/polls/1/conditions"},
		{"POST", "/polls/1/publish"},
		{"GET", "/polls/1/vote"},
		{"POST", "/polls/1/vote"},
		{"GET", "/polls/1/result"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code == http.StatusNotFound && w.Body.String() == "404 page not found\n" {
				t.Errorf("Route %s %s is not registered", route.method, route.path)
			}
			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s rejects its method", route.method, route.path)
			}
		})
	}
}

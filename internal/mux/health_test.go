package mux

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	a := assert.New(t)
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/health")
	a.NoError(err)
	defer resp.Body.Close()

	a.Equal(http.StatusOK, resp.StatusCode)

	var health healthResponse
	a.NoError(json.NewDecoder(resp.Body).Decode(&health))
	a.Equal("OK", health.Status)
	a.Equal("v1.0.0", health.Version)
}

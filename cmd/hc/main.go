// Command hc is a container health check. It queries the health endpoint of the portal and
// exits with 0 if the portal reports itself healthy, with 1 otherwise.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"
)

const defaultHealthUrl = "http://127.0.0.1:8888/api/v1/health"

func main() {
	os.Exit(checkWebEndpointFromArgs(os.Args[1:]))
}

func checkWebEndpointFromArgs(args []string) int {
	url := defaultHealthUrl
	if len(args) > 0 && args[0] != "" {
		url = args[0]
	}
	if !checkWebEndpoint(url) {
		return 1
	}
	return 0
}

func checkWebEndpoint(url string) bool {
	client := &http.Client{
		Timeout: time.Second * 2,
	}
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}

	var health struct {
		Status string `json:"Status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return true // not the portal health endpoint, the status code is all we have
	}
	return health.Status == "" || health.Status == "ok"
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/hamed0406/timewatch/internal/httpapi"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	base := pflag.String("api", api, "base URL of the status web app")
	key := pflag.String("key", os.Getenv("API_KEY"), "API key for /api/status")
	asJSON := pflag.Bool("json", false, "print the raw JSON response")
	pflag.Parse()

	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(*base, "/")+"/api/status", nil)
	if err != nil {
		fmt.Println("Invalid API base:", err)
		os.Exit(1)
	}
	if *key != "" {
		req.Header.Set("X-API-Key", *key)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var v httpapi.StatusView
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		fmt.Println("API returned status:", resp.Status)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(v)
	} else {
		fmt.Printf("Container:    %s\n", v.ContainerID)
		fmt.Printf("Local time:   %s\n", v.LocalTime)
		fmt.Printf("Fetched time: %s\n", v.FetchedTime)
		fmt.Printf("Status:       %s\n", v.Status)
		if v.LastChecked != "" {
			fmt.Printf("Last checked: %s (%s)\n", v.LastChecked, v.LastCheckedAgo)
		}
		if v.Error != "" {
			fmt.Printf("Note:         %s\n", v.Error)
		}
	}

	if resp.StatusCode >= 300 {
		os.Exit(1)
	}
}

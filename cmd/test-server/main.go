package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rzpsarthak13/relmap/pkg/relmap"
)

var client relmap.Client

func main() {
	// 1. Load configuration: a config file path as the first argument,
	// otherwise RELMAP_* environment variables (with .env support).
	var (
		config *relmap.Config
		err    error
	)
	if len(os.Args) > 1 {
		config, err = relmap.LoadConfigFile(os.Args[1])
	} else {
		config, err = relmap.LoadConfigEnv()
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Create the client (connects and discovers the schema)
	ctx := context.Background()
	client, err = relmap.NewClient(ctx, config)
	if err != nil {
		log.Fatalf("Failed to create relmap client: %v", err)
	}
	defer client.Close()

	log.Printf("Discovered tables: %v", client.Tables())

	// 3. Setup HTTP routes
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/tables", tablesHandler)
	http.HandleFunc("/records/", recordsHandler)

	log.Println("")
	log.Println("API Endpoints:")
	log.Println("  GET    /health                 - Health check and statement count")
	log.Println("  GET    /tables                 - List discovered tables")
	log.Println("  POST   /records/{table}        - Insert a record")
	log.Println("  GET    /records/{table}/{id}   - Get a record by id")
	log.Println("  PUT    /records/{table}/{id}   - Update a record by id")
	log.Println("  DELETE /records/{table}/{id}   - Delete a record by id")
	log.Println("")

	// 4. Start HTTP server
	port := ":8080"
	log.Printf("Starting HTTP server on port %s", port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := http.ListenAndServe(port, nil); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-sigChan
	log.Println("Received shutdown signal...")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]interface{}{
		"status":     "ok",
		"timestamp":  time.Now().Format(time.RFC3339),
		"statements": client.StatementCount(),
	}
	if err := client.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["error"] = err.Error()
	}

	writeJSON(w, http.StatusOK, status)
}

func tablesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tables := make(map[string]interface{})
	for _, name := range client.Tables() {
		schema, err := client.Schema(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		tables[name] = map[string]interface{}{
			"columns":     schema.Columns,
			"primary_key": schema.PrimaryKey,
		}
	}

	writeJSON(w, http.StatusOK, tables)
}

// recordsHandler routes /records/{table} and /records/{table}/{id}.
func recordsHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/records/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Table name required", http.StatusBadRequest)
		return
	}
	table := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodPost:
		createRecord(w, r, table)
	case len(parts) == 2 && r.Method == http.MethodGet:
		getRecord(w, r, table, parts[1])
	case len(parts) == 2 && r.Method == http.MethodPut:
		updateRecord(w, r, table, parts[1])
	case len(parts) == 2 && r.Method == http.MethodDelete:
		deleteRecord(w, r, table, parts[1])
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func createRecord(w http.ResponseWriter, r *http.Request, table string) {
	var record relmap.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	id, err := client.Save(r.Context(), table, record)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to save record: %v", err), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Record created",
		"id":      id,
	})
}

func getRecord(w http.ResponseWriter, r *http.Request, table, id string) {
	record, err := client.GetOneByID(r.Context(), table, id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get record: %v", err), http.StatusBadRequest)
		return
	}
	if record == nil {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func updateRecord(w http.ResponseWriter, r *http.Request, table, id string) {
	var record relmap.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	result, err := client.Save(r.Context(), table, record, id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to update record: %v", err), http.StatusBadRequest)
		return
	}
	if result == nil {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Record updated",
		"id":      result,
	})
}

func deleteRecord(w http.ResponseWriter, r *http.Request, table, id string) {
	deleted, err := client.DeleteOneByID(r.Context(), table, id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to delete record: %v", err), http.StatusBadRequest)
		return
	}
	if !deleted {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Record deleted",
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

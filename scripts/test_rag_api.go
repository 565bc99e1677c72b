package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // No timeout, model calls can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Agentic RAG API Smoke Test\n")

	// 1. Health check
	color.Yellow("\n1. Health check")
	resp, body, err := sendRequest("GET", "/rag/v1/health", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var healthResp map[string]interface{}
	json.Unmarshal(body, &healthResp)
	prettyPrint(healthResp)

	// 2. Ask with inline chunks
	color.Yellow("\n2. Ask with inline chunks")
	askReq := map[string]interface{}{
		"query": "What is the capital of France?",
		"chunks": []string{
			"France is a country in Western Europe.",
			"Paris is the capital and largest city of France.",
			"The Eiffel Tower is located in Paris.",
		},
	}
	resp, body, err = sendRequest("POST", "/rag/v1/ask", askReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var askResp map[string]interface{}
	json.Unmarshal(body, &askResp)
	prettyPrint(askResp)

	// 3. Fetch the stored run
	runID := ""
	if data, ok := askResp["data"].(map[string]interface{}); ok {
		runID, _ = data["run_id"].(string)
	}
	if runID != "" {
		color.Yellow("\n3. Fetch stored run %s", runID)
		resp, body, err = sendRequest("GET", "/rag/v1/runs/"+runID, nil)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("Status: %s", resp.Status)
		var runResp map[string]interface{}
		json.Unmarshal(body, &runResp)
		prettyPrint(runResp)
	}

	// 4. Ask with no documents at all (expect 422)
	color.Yellow("\n4. Ask with no documents (expect 422)")
	resp, body, err = sendRequest("POST", "/rag/v1/ask", map[string]interface{}{
		"query":   "Anything?",
		"sources": []string{"/does/not/exist.txt"},
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var errResp map[string]interface{}
	json.Unmarshal(body, &errResp)
	prettyPrint(errResp)

	color.Cyan("\n✅ Smoke test finished")
}

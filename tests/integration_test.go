package tests

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	baseAPIURL  = "http://localhost:8089"
	testModel   = "gemma3:270m-it-qat"
	composeFile = "compose.test.yaml"
)

// TestMain drives the full stack via docker compose: PostgreSQL, Ollama and
// the API container built from this repository. The suite only runs when
// INTEGRATION=1 is set, so `go test ./...` stays fast and docker-free.
func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION") == "" {
		log.Println("Skipping integration tests; set INTEGRATION=1 to run them.")
		os.Exit(0)
	}

	log.Println("--- Setting up test environment ---")

	cmdUp := exec.Command("docker", "compose", "-f", composeFile, "up", "-d", "--build")
	if err := runCommand(cmdUp); err != nil {
		log.Printf("Failed to start docker compose: %v. Cleaning up...", err)
		cleanup()
		os.Exit(1)
	}

	if err := waitForBackend(); err != nil {
		log.Printf("Backend not ready: %v. Cleaning up.", err)
		cleanup()
		os.Exit(1)
	}
	log.Println("Backend is ready.")

	if err := pullTestModel(); err != nil {
		log.Printf("Failed to pull test model: %v. Cleaning up.", err)
		cleanup()
		os.Exit(1)
	}
	log.Printf("Test model '%s' pulled successfully.", testModel)

	exitCode := m.Run()

	log.Println("--- Tearing down test environment ---")
	cleanup()

	os.Exit(exitCode)
}

func cleanup() {
	cmdDown := exec.Command("docker", "compose", "-f", composeFile, "down", "-v")
	if err := runCommand(cmdDown); err != nil {
		log.Printf("WARN: Failed to stop docker compose: %v", err)
	}
}

func runCommand(cmd *exec.Cmd) error {
	projectRoot, err := getProjectRoot()
	if err != nil {
		return fmt.Errorf("could not find project root: %w", err)
	}
	cmd.Dir = projectRoot

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func getProjectRoot() (string, error) {
	wd, err := os.Getwd() // .../tests
	if err != nil {
		return "", err
	}
	return filepath.Abs(filepath.Join(wd, ".."))
}

// waitForBackend polls the readiness endpoint, which answers 200 only once
// the API can reach PostgreSQL.
func waitForBackend() error {
	client := &http.Client{Timeout: 3 * time.Second}
	for i := 0; i < 60; i++ {
		time.Sleep(2 * time.Second)
		resp, err := client.Get(baseAPIURL + "/readyz")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if err != nil {
			log.Printf("Waiting for backend... attempt %d failed: %v", i+1, err)
		} else if resp != nil {
			log.Printf("Waiting for backend... attempt %d got status: %s", i+1, resp.Status)
			resp.Body.Close()
		}
	}
	return fmt.Errorf("backend did not become ready in time")
}

func pullTestModel() error {
	cmd := exec.Command("docker", "compose", "-f", composeFile, "exec", "-T", "ollama", "ollama", "pull", testModel)
	return runCommand(cmd)
}

func TestFullChatWorkflow(t *testing.T) {
	var chatID string

	t.Run("CreateChat", func(t *testing.T) {
		resp, err := http.Post(baseAPIURL+"/api/chats", "application/json",
			strings.NewReader(`{"metadata": {"channel": "integration-test"}}`))
		if err != nil {
			t.Fatalf("Failed to create chat: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected status 201 for chat creation, got %d", resp.StatusCode)
		}

		var chat map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
			t.Fatalf("Failed to decode chat: %v", err)
		}
		id, ok := chat["id"].(string)
		if !ok || id == "" {
			t.Fatalf("Chat response carries no id: %v", chat)
		}
		chatID = id
	})

	t.Run("GetChatByID", func(t *testing.T) {
		if chatID == "" {
			t.Fatal("Chat ID not set from previous step")
		}

		resp, err := http.Get(baseAPIURL + "/api/chats/" + chatID)
		if err != nil {
			t.Fatalf("Failed to get chat by ID: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}

		var chat map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
			t.Fatalf("Failed to decode chat: %v", err)
		}
		if chat["id"] != chatID {
			t.Fatalf("Expected chat id %s, got %v", chatID, chat["id"])
		}
		meta, ok := chat["metadata"].(map[string]interface{})
		if !ok || meta["channel"] != "integration-test" {
			t.Fatalf("Chat metadata not round-tripped: %v", chat["metadata"])
		}
		if chat["created_at"] != chat["updated_at"] {
			t.Fatalf("Fresh chat timestamps should match: created %v, updated %v",
				chat["created_at"], chat["updated_at"])
		}
	})

	t.Run("SendMessageAndGetReply", func(t *testing.T) {
		if chatID == "" {
			t.Fatal("Chat ID not set from previous step")
		}

		resp, err := http.Post(baseAPIURL+"/api/chats/"+chatID+"/messages", "application/json",
			strings.NewReader(`{"content": "What is 2+2? Answer with a single number."}`))
		if err != nil {
			t.Fatalf("Failed to send message: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected status 201 for message, got %d", resp.StatusCode)
		}

		var reply map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
			t.Fatalf("Failed to decode reply: %v", err)
		}
		if reply["role"] != "assistant" {
			t.Fatalf("Expected an assistant reply, got role %v", reply["role"])
		}
		if content, _ := reply["content"].(string); content == "" {
			t.Fatal("Assistant reply has no content")
		}
	})

	t.Run("ListMessages", func(t *testing.T) {
		if chatID == "" {
			t.Fatal("Chat ID not set from previous step")
		}

		resp, err := http.Get(baseAPIURL + "/api/chats/" + chatID + "/messages")
		if err != nil {
			t.Fatalf("Failed to list messages: %v", err)
		}
		defer resp.Body.Close()

		var messages []map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
			t.Fatalf("Failed to decode messages: %v", err)
		}
		if len(messages) < 2 {
			t.Fatalf("Expected at least 2 messages (user + assistant), got %d", len(messages))
		}
		if messages[0]["role"] != "user" {
			t.Fatalf("Expected the user message first, got %v", messages[0]["role"])
		}
	})

	t.Run("DeleteChat", func(t *testing.T) {
		if chatID == "" {
			t.Fatal("Chat ID not set from previous step")
		}

		req, _ := http.NewRequest(http.MethodDelete, baseAPIURL+"/api/chats/"+chatID, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("Failed to delete chat: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200 for chat deletion, got %d", resp.StatusCode)
		}
	})

	t.Run("VerifyDeletion", func(t *testing.T) {
		if chatID == "" {
			t.Fatal("Chat ID not set from previous step")
		}

		resp, err := http.Get(baseAPIURL + "/api/chats/" + chatID)
		if err != nil {
			t.Fatalf("Failed to get deleted chat: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("Expected status 404 after deletion, got %d", resp.StatusCode)
		}

		req, _ := http.NewRequest(http.MethodDelete, baseAPIURL+"/api/chats/"+chatID, nil)
		delResp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("Failed to re-delete chat: %v", err)
		}
		defer delResp.Body.Close()

		if delResp.StatusCode != http.StatusNotFound {
			t.Fatalf("Expected status 404 for repeated deletion, got %d", delResp.StatusCode)
		}
	})
}

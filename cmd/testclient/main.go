package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type prepResponse struct {
	Questions []struct {
		Question    string `json:"question"`
		ModelAnswer string `json:"modelAnswer"`
	} `json:"questions"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func main() {
	serverAddr := flag.String("server", "http://localhost:8080", "HTTP server base URL")
	job := flag.String("job", "Backend engineer working on Go services, Kafka and Postgres.", "Job description")
	about := flag.String("context", "", "Optional notes about the candidate")
	chat := flag.String("chat", "", "Send this message to the streaming chat endpoint instead")
	speak := flag.String("speak", "", "Synthesize this text and write it to speech.mp3")
	flag.Parse()

	client := resty.New().
		SetBaseURL(*serverAddr).
		SetTimeout(60 * time.Second)

	switch {
	case *chat != "":
		streamChat(client, *chat)
	case *speak != "":
		synthesize(client, *speak)
	default:
		interviewPrep(client, *job, *about)
	}
}

func interviewPrep(client *resty.Client, job, about string) {
	var out prepResponse
	var apiErr errorResponse
	resp, err := client.R().
		SetBody(map[string]string{"job": job, "context": about}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/interview-prep")
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	if resp.IsError() {
		log.Fatalf("Prep failed: status=%d error=%q code=%q details=%v", resp.StatusCode(), apiErr.Error, apiErr.Code, apiErr.Details)
	}

	for i, q := range out.Questions {
		log.Printf("Q%d: %s", i+1, q.Question)
		log.Printf("    %s", q.ModelAnswer)
	}
}

func streamChat(client *resty.Client, message string) {
	resp, err := client.R().
		SetBody(map[string]any{
			"messages": []map[string]string{{"role": "user", "content": message}},
		}).
		SetDoNotParseResponse(true).
		Post("/api/chat/stream")
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		var apiErr errorResponse
		_ = json.NewDecoder(body).Decode(&apiErr)
		log.Fatalf("Chat failed: status=%d error=%q", resp.StatusCode(), apiErr.Error)
	}

	var event string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				os.Stdout.WriteString("\n")
				return
			}
			if event == "error" {
				log.Fatalf("Stream error: %s", data)
			}
			var delta struct {
				Delta string `json:"delta"`
			}
			if err := json.Unmarshal([]byte(data), &delta); err == nil {
				os.Stdout.WriteString(delta.Delta)
			}
		case line == "":
			event = ""
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Stream read failed: %v", err)
	}
}

func synthesize(client *resty.Client, text string) {
	var apiErr errorResponse
	resp, err := client.R().
		SetBody(map[string]string{"text": text}).
		SetError(&apiErr).
		Post("/api/speech")
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	if resp.IsError() {
		log.Fatalf("Speech failed: status=%d error=%q", resp.StatusCode(), apiErr.Error)
	}
	if err := os.WriteFile("speech.mp3", resp.Body(), 0o644); err != nil {
		log.Fatalf("Failed to write audio: %v", err)
	}
	log.Printf("Wrote %d bytes (%s) to speech.mp3", len(resp.Body()), resp.Header().Get("Content-Type"))
}

package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

type turn struct {
	ID   int64  `json:"id"`
	Who  string `json:"who"`
	Text string `json:"text"`
}

type turnResponse struct {
	Transcript string `json:"transcript"`
	Reply      string `json:"reply"`
}

type errorResponse struct {
	Error      string  `json:"error"`
	Code       string  `json:"code,omitempty"`
	Transcript *string `json:"transcript,omitempty"`
}

// Plays a scripted interview against /api/conversation-turn. Each positional
// argument is one spoken answer; the history grows locally between turns.
func main() {
	serverAddr := flag.String("server", "http://localhost:8080", "HTTP server base URL")
	historyFile := flag.String("history", "", "Optional JSON file with prior turns")
	timeout := flag.Duration("timeout", 60*time.Second, "Per-turn request timeout")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("usage: audioclient [-server URL] [-history FILE] answer1.webm [answer2.webm ...]")
	}

	history := []turn{}
	if *historyFile != "" {
		raw, err := os.ReadFile(*historyFile)
		if err != nil {
			log.Fatalf("Failed to read history: %v", err)
		}
		if err := json.Unmarshal(raw, &history); err != nil {
			log.Fatalf("Failed to parse history: %v", err)
		}
	}

	client := resty.New().
		SetBaseURL(*serverAddr).
		SetTimeout(*timeout)

	for i, path := range files {
		audio, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to open audio file: %v", err)
		}
		describeWAV(path, audio)

		encoded, err := json.Marshal(history)
		if err != nil {
			log.Fatalf("Failed to encode history: %v", err)
		}

		var out turnResponse
		var apiErr errorResponse
		start := time.Now()
		resp, err := client.R().
			SetFileReader("audio", filepath.Base(path), bytes.NewReader(audio)).
			SetFormData(map[string]string{"history": string(encoded)}).
			SetResult(&out).
			SetError(&apiErr).
			Post("/api/conversation-turn")
		if err != nil {
			log.Fatalf("Request failed: %v", err)
		}
		if resp.IsError() {
			log.Printf("Turn %d failed: status=%d error=%q code=%q", i+1, resp.StatusCode(), apiErr.Error, apiErr.Code)
			if apiErr.Transcript != nil {
				log.Printf("Transcript kept by server: %q", *apiErr.Transcript)
			}
			os.Exit(1)
		}

		log.Printf("Turn %d (%v)", i+1, time.Since(start).Round(time.Millisecond))
		log.Printf("  you: %s", out.Transcript)
		log.Printf("  ai:  %s", out.Reply)

		// Mirror the web client: the caller owns the history.
		history = append(history,
			turn{ID: nextID(history), Who: "user", Text: out.Transcript},
		)
		history = append(history,
			turn{ID: nextID(history), Who: "ai", Text: out.Reply},
		)
	}

	log.Printf("Finished: %d turns in history", len(history))
}

func nextID(history []turn) int64 {
	id := time.Now().UnixMilli()
	if n := len(history); n > 0 && id <= history[n-1].ID {
		id = history[n-1].ID + 1
	}
	return id
}

// describeWAV logs the PCM header of WAV input. Other containers are sent
// as-is and left for the server to sniff.
func describeWAV(path string, audio []byte) {
	if len(audio) < wavHeaderSize {
		log.Printf("%s: %d bytes", path, len(audio))
		return
	}
	header := audio[:wavHeaderSize]
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Printf("%s: %d bytes (not WAV)", path, len(audio))
		return
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Printf("%s: WAV format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		path, audioFormat, numChannels, sampleRate, bitsPerSample)

	if audioFormat != 1 { // PCM
		log.Printf("Warning: WAV format %d is not PCM", audioFormat)
	}
}

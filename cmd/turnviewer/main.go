// Turn Viewer relays conversation and prep events from Kafka to browsers
// connected on /ws.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/syedarman1/screenme-sub001/internal/observability/logging"
	"github.com/syedarman1/screenme-sub001/internal/viewer"
)

func main() {
	port := flag.String("port", "8081", "HTTP server port")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topicTurns := flag.String("topic-turns", "conversation.turns", "Conversation turn topic")
	topicPrep := flag.String("topic-prep", "interview.prep", "Interview prep topic")
	since := flag.Duration("since", time.Hour, "Replay messages newer than this")
	flag.Parse()

	logging.Init(logging.Config{Level: "debug", Format: "console", Service: "turn-viewer"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := viewer.NewHub()
	go hub.Run()
	defer hub.Stop()

	for _, topic := range []string{*topicTurns, *topicPrep} {
		reader, err := viewer.NewReader(ctx, strings.Split(*brokers, ","), topic, *since)
		if err != nil {
			log.Fatal().Err(err).Str("topic", topic).Msg("Failed to open Kafka reader")
		}
		go viewer.Consume(ctx, reader, hub)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.Handler())

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("brokers", *brokers).
		Strs("topics", []string{*topicTurns, *topicPrep}).
		Msg("Turn viewer starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server error")
	}
}

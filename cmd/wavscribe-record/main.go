// Command wavscribe-record captures microphone audio into a WAV file
// that wavscribe can transcribe. Recording runs until Ctrl+C. Capture
// settings come from the record section of the shared config file;
// flags override them.
//
// Usage:
//
//	go run ./cmd/wavscribe-record [--config path] [--out audio.wav] [--rate 16000] [--channels 1]
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaz8081/wavscribe/internal/audio"
	"github.com/chaz8081/wavscribe/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/wavscribe/config.yaml)")
	out := flag.String("out", "audio.wav", "output WAV path")
	rate := flag.Uint("rate", 0, "sample rate in Hz (overrides config)")
	channels := flag.Uint("channels", 0, "channel count, 1 or 2 (overrides config)")
	flag.Parse()

	cfg, cfgSource, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *rate != 0 {
		cfg.Record.SampleRate = uint32(*rate)
	}
	if *channels != 0 {
		cfg.Record.Channels = uint32(*channels)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfgSource != "" {
		fmt.Printf("Config: %s\n", cfgSource)
	}

	rec, err := audio.NewRecorder(cfg.Record.SampleRate, cfg.Record.Channels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := rec.Start(); err != nil {
		rec.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Recording at %dHz, %dch. Press Ctrl+C to stop.\n", cfg.Record.SampleRate, cfg.Record.Channels)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	samples := rec.Stop()
	rec.Close()

	if len(samples) == 0 {
		fmt.Fprintln(os.Stderr, "No audio captured.")
		os.Exit(1)
	}

	duration := float64(len(samples)) / float64(cfg.Record.SampleRate) / float64(cfg.Record.Channels)
	fmt.Printf("\nCaptured %.1fs of audio, writing %s...\n", duration, *out)

	if err := audio.WriteWAVFile(*out, cfg.Record.SampleRate, uint16(cfg.Record.Channels), samples); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}

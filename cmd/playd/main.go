// ABOUTME: Entry point for the playd audio file player daemon
// ABOUTME: Parses CLI flags, sets up logging, and wires the reactor to the player
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gen2brain/malgo"

	"github.com/audioctl/playd/internal/devctl"
	"github.com/audioctl/playd/internal/reactor"
	"github.com/audioctl/playd/pkg/audio"
	"github.com/audioctl/playd/pkg/audio/apperrors"
	"github.com/audioctl/playd/pkg/audio/device"
	"github.com/audioctl/playd/pkg/audio/source"
	"github.com/audioctl/playd/pkg/player"
)

var (
	addr        = flag.String("addr", "localhost:1350", "TCP address to listen on")
	stdio       = flag.Bool("stdio", false, "Speak the command protocol over stdin/stdout instead of TCP")
	deviceIndex = flag.Int("device", -1, "Playback device index from -list-devices (default: system default)")
	listDevices = flag.Bool("list-devices", false, "List available playback devices and exit")
	logFile     = flag.String("log-file", "playd.log", "Log file path")
	streamLogs  = flag.Bool("stream-logs", false, "Also mirror log output to stdout")
)

func main() {
	flag.Parse()

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if *streamLogs {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	} else {
		log.SetOutput(f)
	}

	audioCtx, err := devctl.Init()
	if err != nil {
		log.Fatalf("failed to initialize audio library: %v", err)
	}
	defer func() {
		if err := audioCtx.Shutdown(); err != nil {
			log.Printf("error shutting down audio library: %v", err)
		}
	}()

	if *listDevices {
		if err := printPlaybackDevices(audioCtx.Malgo()); err != nil {
			log.Fatalf("failed to list playback devices: %v", err)
		}
		return
	}

	var pickedDevice *malgo.DeviceID
	if *deviceIndex >= 0 {
		id, err := playbackDeviceByIndex(audioCtx.Malgo(), *deviceIndex)
		if err != nil {
			log.Fatalf("failed to resolve -device %d: %v", *deviceIndex, err)
		}
		pickedDevice = id
	}

	p := player.NewPlayer(
		func(path string) (audio.AudioSource, error) { return openSource(path) },
		func(info audio.SourceInfo) (audio.AudioSink, error) {
			return device.NewMalgoSink(audioCtx.Malgo(), info, pickedDevice)
		},
	)

	srv := reactor.NewServer(p)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received %v, shutting down", sig)
		srv.Stop()
	}()

	if *stdio {
		log.Printf("playd speaking protocol over stdio")
		srv.ServeStdio(os.Stdin, os.Stdout)
	} else {
		log.Printf("playd listening on %s", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}

	log.Printf("playd stopped")
}

// openSource picks a decode backend by file extension. playd has no
// content-sniffing fallback: an unrecognised extension is a file error,
// same as a file that fails to open.
func openSource(path string) (audio.AudioSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return source.OpenMp3(path)
	case ".flac":
		return source.OpenFlac(path)
	case ".wav":
		return source.OpenPcm(path)
	default:
		return nil, fmt.Errorf("%w: unrecognised file extension for %s", apperrors.ErrFile, path)
	}
}

func printPlaybackDevices(ctx *malgo.AllocatedContext) error {
	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrConfig, err)
	}
	for i, info := range infos {
		fmt.Printf("%d: %s\n", i, info.Name())
	}
	return nil
}

func playbackDeviceByIndex(ctx *malgo.AllocatedContext, index int) (*malgo.DeviceID, error) {
	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfig, err)
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("%w: device index %s out of range (0..%d)", apperrors.ErrConfig, strconv.Itoa(index), len(infos)-1)
	}
	return &infos[index].ID, nil
}

// Package producer ports the original config-producer-proto binary: it
// watches PROTO_SCHEMA_INPUT_DIR for *.proto files and uploads each one's
// compiled FileDescriptorSet to the server's /load_descriptor endpoint on
// content change. Unlike the original, which shells out to an external
// protoc binary, compilation happens in-process via jhump/protoreflect's
// protoparse.Parser, the same library the teacher already depends on for
// descriptor introspection.
package producer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Config controls where the producer looks for schemas and where it
// uploads them.
type Config struct {
	InputDir   string
	ServerAddr string
	PollEvery  time.Duration
}

// Producer watches InputDir, compiles changed .proto files, and uploads
// their descriptor sets to the server.
type Producer struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger

	mu       sync.Mutex
	modTimes map[string]time.Time
}

// New creates a Producer. PollEvery defaults to 2s when zero; it is the
// cadence of the periodic directory scan that Run performs alongside the
// fsnotify watch. Run does not start without a working fsnotify watcher.
func New(cfg Config, log zerolog.Logger) *Producer {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	return &Producer{
		cfg:      cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
		modTimes: make(map[string]time.Time),
	}
}

// Run watches the input directory until ctx is cancelled, uploading every
// changed .proto file as it is observed. It never returns nil; callers
// should check for context.Canceled to distinguish a clean shutdown.
func (p *Producer) Run(ctx context.Context) error {
	if p.cfg.InputDir == "" {
		return fmt.Errorf("producer: PROTO_SCHEMA_INPUT_DIR is not set")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("producer: failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.cfg.InputDir); err != nil {
		return fmt.Errorf("producer: failed to watch %s: %w", p.cfg.InputDir, err)
	}

	// Scan what's already there once at startup, matching the original's
	// initial directory sweep before it starts listening for changes.
	if err := p.scanOnce(ctx); err != nil {
		p.log.Warn().Err(err).Msg("initial proto directory scan failed")
	}

	ticker := time.NewTicker(p.cfg.PollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("producer: fsnotify event channel closed")
			}
			if !strings.HasSuffix(event.Name, ".proto") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := p.handleFile(ctx, event.Name); err != nil {
				p.log.Error().Err(err).Str("file", event.Name).Msg("failed to process proto file")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("producer: fsnotify error channel closed")
			}
			p.log.Error().Err(err).Msg("fsnotify watcher error")

		case <-ticker.C:
			// Belt-and-braces poll: some filesystems (notably network
			// mounts) deliver fsnotify events unreliably.
			if err := p.scanOnce(ctx); err != nil {
				p.log.Warn().Err(err).Msg("periodic proto directory scan failed")
			}
		}
	}
}

func (p *Producer) scanOnce(ctx context.Context) error {
	entries, err := os.ReadDir(p.cfg.InputDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", p.cfg.InputDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".proto") {
			continue
		}
		path := filepath.Join(p.cfg.InputDir, entry.Name())
		if err := p.handleFile(ctx, path); err != nil {
			p.log.Error().Err(err).Str("file", path).Msg("failed to process proto file")
		}
	}

	return nil
}

// handleFile compiles path if its modification time has advanced since the
// last successful upload, then uploads the result.
func (p *Producer) handleFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	p.mu.Lock()
	last, seen := p.modTimes[path]
	p.mu.Unlock()
	if seen && !info.ModTime().After(last) {
		return nil
	}

	raw, err := Compile(path)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", path, err)
	}

	if err := p.upload(ctx, filepath.Base(path), raw); err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}

	p.mu.Lock()
	p.modTimes[path] = info.ModTime()
	p.mu.Unlock()

	p.log.Info().Str("file", path).Msg("uploaded descriptor")
	return nil
}

// Compile parses a single .proto file (resolving imports relative to its
// own directory) and marshals the result into FileDescriptorSet bytes.
func Compile(path string) ([]byte, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	parser := protoparse.Parser{
		ImportPaths:           []string{dir},
		IncludeSourceCodeInfo: false,
	}

	fileDescs, err := parser.ParseFiles(base)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(fileDescs) == 0 {
		return nil, fmt.Errorf("no file descriptors produced for %s", path)
	}

	fdSet := &descriptorpb.FileDescriptorSet{}
	seen := map[string]bool{}
	var addFile func(fd *desc.FileDescriptor)
	addFile = func(fd *desc.FileDescriptor) {
		if seen[fd.GetName()] {
			return
		}
		seen[fd.GetName()] = true
		for _, dep := range fd.GetDependencies() {
			addFile(dep)
		}
		fdSet.File = append(fdSet.File, fd.AsFileDescriptorProto())
	}
	for _, fd := range fileDescs {
		addFile(fd)
	}

	return proto.Marshal(fdSet)
}

func (p *Producer) upload(ctx context.Context, fileName string, raw []byte) error {
	body, err := json.Marshal(map[string]string{
		"file_name":    fileName,
		"file_content": base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s/load_descriptor", p.cfg.ServerAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

package hostbridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"griddle/internal/exprguard"
	"griddle/internal/logging"
	"griddle/internal/registry"
	"griddle/internal/services"
)

var commandContext = exec.CommandContext

// Option configures the bridge client.
type Option func(*Client)

// WithTimeout bounds each bridge invocation. Zero means no timeout; a hung
// bake then hangs the batch, which is the accepted collaborator contract.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger attaches a logger for bridge diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "hostbridge")
	}
}

// Client talks to the host environment through a bridge command that accepts
// an operation plus arguments and answers with JSON on stdout. It implements
// every collaborator contract the session consumes.
type Client struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// New constructs a bridge client for the given command.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "hostbridge", "new", "host.bridge_command is not set", nil)
	}
	client := &Client{binary: binary, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type bridgeItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Readiness string `json:"readiness"`
}

// List enumerates work items from the host in enumeration order.
func (c *Client) List(ctx context.Context) ([]registry.WorkItem, error) {
	output, err := c.run(ctx, nil, "items")
	if err != nil {
		return nil, err
	}
	var raw []bridgeItem
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, c.decodeError("items", err)
	}
	items := make([]registry.WorkItem, 0, len(raw))
	for _, entry := range raw {
		items = append(items, registry.WorkItem{
			ID:          entry.ID,
			DisplayName: entry.Name,
			Readiness:   registry.ParseReadiness(entry.Readiness),
		})
	}
	return items, nil
}

// ReadReadiness re-reads one item's readiness flag. Any failure maps to
// ReadinessUnknown per the collaborator contract.
func (c *Client) ReadReadiness(ctx context.Context, id string) (registry.Readiness, error) {
	output, err := c.run(ctx, nil, "readiness", id)
	if err != nil {
		return registry.ReadinessUnknown, err
	}
	var payload struct {
		Readiness string `json:"readiness"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return registry.ReadinessUnknown, c.decodeError("readiness", err)
	}
	return registry.ParseReadiness(payload.Readiness), nil
}

type processEvent struct {
	Type    string  `json:"type"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
	Success bool    `json:"success"`
	Error   string  `json:"error"`
}

// Process invokes the per-item bake. The bridge streams NDJSON progress
// events and finishes with a result event; a missing result event with a
// clean exit is treated as success.
func (c *Client) Process(ctx context.Context, id string, start, end int) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	cmd := commandContext(ctx, c.binary, "process", id, strconv.Itoa(start), strconv.Itoa(end))
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "hostbridge", "process", id, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "hostbridge", "process", id, err)
	}

	var result *processEvent
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event processEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}
		switch event.Type {
		case "progress":
			c.logger.Debug("bake progress",
				logging.String(logging.FieldItemID, id),
				logging.String("message", event.Message),
			)
		case "result":
			captured := event
			result = &captured
		}
	}

	waitErr := cmd.Wait()
	if waitErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = id
		}
		return services.Wrap(services.ErrExternalTool, "hostbridge", "process", detail, waitErr)
	}
	if result != nil && !result.Success {
		message := result.Error
		if message == "" {
			message = "bake reported failure"
		}
		return services.Wrap(services.ErrExternalTool, "hostbridge", "process", id, errors.New(message))
	}
	return nil
}

// CandidateSource adapts the client to the range resolver's candidate
// contract; the client's List is already taken by the inventory contract.
type CandidateSource struct {
	Client *Client
}

func (s CandidateSource) List(ctx context.Context) ([]string, error) {
	return s.Client.ListCandidates(ctx)
}

// ListCandidates enumerates range-source candidate ids.
func (c *Client) ListCandidates(ctx context.Context) ([]string, error) {
	output, err := c.run(ctx, nil, "candidates")
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(output, &ids); err != nil {
		return nil, c.decodeError("candidates", err)
	}
	return ids, nil
}

// Read reads one numeric attribute from a candidate.
func (c *Client) Read(ctx context.Context, id, attr string) (int, error) {
	output, err := c.run(ctx, nil, "attr", id, attr)
	if err != nil {
		return 0, err
	}
	var payload struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return 0, c.decodeError("attr", err)
	}
	return payload.Value, nil
}

// Current reports the host's current window.
func (c *Client) Current(ctx context.Context) (int, int, error) {
	output, err := c.run(ctx, nil, "window")
	if err != nil {
		return 0, 0, err
	}
	var payload struct {
		Min int `json:"min"`
		Max int `json:"max"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return 0, 0, c.decodeError("window", err)
	}
	return payload.Min, payload.Max, nil
}

// Set applies the playback window.
func (c *Client) Set(ctx context.Context, min, max int) error {
	_, err := c.run(ctx, nil, "set-window", strconv.Itoa(min), strconv.Itoa(max))
	return err
}

// Scan lists broken references with their original content.
func (c *Client) Scan(ctx context.Context) ([]exprguard.BrokenRef, error) {
	output, err := c.run(ctx, nil, "scan-refs")
	if err != nil {
		return nil, err
	}
	var raw []struct {
		ID      string `json:"id"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, c.decodeError("scan-refs", err)
	}
	refs := make([]exprguard.BrokenRef, 0, len(raw))
	for _, entry := range raw {
		refs = append(refs, exprguard.BrokenRef{ID: entry.ID, Content: entry.Content})
	}
	return refs, nil
}

// SetContent reassigns a reference's content. Content travels on stdin so
// multi-line expressions survive the shell boundary.
func (c *Client) SetContent(ctx context.Context, id, content string) error {
	_, err := c.run(ctx, strings.NewReader(content), "set-ref", id)
	return err
}

// Exists reports whether a reference still exists in the host.
func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	output, err := c.run(ctx, nil, "ref-exists", id)
	if err != nil {
		return false, err
	}
	var payload struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return false, c.decodeError("ref-exists", err)
	}
	return payload.Exists, nil
}

// Wipe deletes auxiliary timeline data and returns what was removed.
func (c *Client) Wipe(ctx context.Context) ([]string, error) {
	output, err := c.run(ctx, nil, "wipe-aux")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Deleted []string `json:"deleted"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return nil, c.decodeError("wipe-aux", err)
	}
	return payload.Deleted, nil
}

func (c *Client) run(ctx context.Context, stdin *strings.Reader, args ...string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	cmd := commandContext(ctx, c.binary, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.Join(args, " ")
		}
		return nil, services.Wrap(services.ErrExternalTool, "hostbridge", args[0], detail, err)
	}
	return bytes.TrimSpace(stdout.Bytes()), nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) decodeError(operation string, err error) error {
	return services.Wrap(services.ErrExternalTool, "hostbridge", operation, "malformed bridge response", err)
}

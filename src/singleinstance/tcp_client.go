package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

const probeTimeout = 300 * time.Millisecond

// DetectResidentPort scans the port range and returns (port, true) if a resident responds to PING.
func DetectResidentPort(ctx context.Context) (int, bool) {
	start, end := portRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return 0, false
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if ping(ctx, addr) {
			return port, true
		}
	}
	return 0, false
}

func ping(ctx context.Context, addr string) bool {
	resp, err := roundTrip(ctx, addr, pingRequest, probeTimeout)
	return err == nil && resp == pongResponse
}

// roundTrip sends one command line and returns everything the server wrote.
func roundTrip(ctx context.Context, addr, cmd string, timeout time.Duration) (string, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	if _, err := io.WriteString(conn, cmd+"\n"); err != nil {
		return "", err
	}
	b, err := io.ReadAll(bufio.NewReader(conn))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Client talks to the resident scanner.
type Client struct {
	Timeout time.Duration
}

func NewClient() *Client { return &Client{Timeout: 2 * time.Second} }

// Stop asks the resident scanner to cancel its scan.
func (c *Client) Stop(ctx context.Context) error {
	_, err := c.call(ctx, stopRequest)
	return err
}

// Status decodes the resident scanner's progress into v.
func (c *Client) Status(ctx context.Context, v any) error {
	body, err := c.call(ctx, statusRequest)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("singleinstance: bad status: %w", err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, cmd string) (string, error) {
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return "", ErrNotRunning
	}
	resp, err := roundTrip(ctx, net.JoinHostPort(residentHost, strconv.Itoa(port)), cmd, c.Timeout)
	if err != nil {
		return "", err
	}
	switch {
	case strings.HasPrefix(resp, okResponse):
		return strings.TrimSpace(strings.TrimPrefix(resp, okResponse)), nil
	case strings.HasPrefix(resp, errorResponse):
		return "", errors.New(strings.TrimPrefix(resp, errorResponse))
	}
	return "", fmt.Errorf("singleinstance: unexpected reply %q", resp)
}

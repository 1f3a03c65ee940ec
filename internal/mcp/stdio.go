package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lexmcp/internal/protocol"
)

// ServeStdio runs the dispatcher over Content-Length framed JSON-RPC on the
// supplied reader/writer pair, the framing MCP hosts speak over a child
// process's stdin/stdout. It returns nil on clean EOF (host closed the
// pipe) and the context error if ctx is cancelled first.
//
// Requests are handled sequentially: stdio hosts pipeline at most one call
// at a time, and ordering responses is simpler than interleaving them.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		payload, err := readStdioMessage(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read stdio message: %w", err)
		}

		var req rpcRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.logf("malformed JSON-RPC request on stdio: %v", err)
			if writeErr := writeStdioMessage(w, newRPCError(nil, rpcCodeParseError, "malformed JSON-RPC request", protocol.ErrorCodeInvalidField)); writeErr != nil {
				return writeErr
			}
			continue
		}

		resp := s.handleRPC(ctx, req)
		if resp == nil {
			continue
		}
		if err := writeStdioMessage(w, *resp); err != nil {
			return fmt.Errorf("write stdio response: %w", err)
		}
	}
}

func writeStdioMessage(w io.Writer, resp rpcResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

func readStdioMessage(r *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
				return nil, io.EOF
			}
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line: %q", line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			contentLength, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}
	if contentLength < 0 {
		return nil, errors.New("missing Content-Length header")
	}
	// Same cap as the HTTP adapter's body limit.
	if contentLength > maxRequestBytes {
		return nil, fmt.Errorf("frame of %d bytes exceeds the %d byte limit", contentLength, maxRequestBytes)
	}

	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

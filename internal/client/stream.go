package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/supporthub/support-dashboard/internal/events"
)

// ErrStreamClosed is returned by Next once the server has ended the stream.
var ErrStreamClosed = errors.New("realtime stream closed")

// sseFrame is one Server-Sent Event. Comment lines are skipped and only the fields the
// API emits are kept.
type sseFrame struct {
	ID    string
	Event string
	Data  string
}

type sseReader struct {
	reader *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{reader: bufio.NewReaderSize(r, 64*1024)}
}

// next returns the next frame carrying data, or io.EOF when the stream ends.
func (s *sseReader) next() (sseFrame, error) {
	var frame sseFrame
	var data []string
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF && len(data) > 0 {
				frame.Data = strings.Join(data, "\n")
				return frame, nil
			}
			return sseFrame{}, err
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if len(data) > 0 {
				frame.Data = strings.Join(data, "\n")
				return frame, nil
			}
			frame = sseFrame{}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
		case "event":
			frame.Event = value
		case "id":
			frame.ID = value
		}
	}
}

// Stream is an open realtime subscription. Closing it, or cancelling the context it was
// opened with, unsubscribes on the server.
type Stream struct {
	body   io.ReadCloser
	reader *sseReader
}

// Subscribe opens a change stream for the given filter.
func (c *Client) Subscribe(ctx context.Context, filter events.Filter) (*Stream, error) {
	params := url.Values{}
	if filter.Table != "" {
		params.Set("table", string(filter.Table))
	}
	if filter.Event != "" {
		params.Set("event", string(filter.Event))
	}
	if expr := filter.String(); expr != "" {
		params.Set("filter", expr)
	}

	path := withQuery("/realtime", params)

	token := c.bearer()
	stream, err := c.openStream(ctx, path)
	if !isUnauthorized(err) {
		return stream, err
	}
	if renewErr := c.renew(ctx, token); renewErr != nil {
		return nil, err
	}
	return c.openStream(ctx, path)
}

func (c *Client) openStream(ctx context.Context, path string) (*Stream, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open realtime stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}
	return &Stream{body: resp.Body, reader: newSSEReader(resp.Body)}, nil
}

// Next blocks until the next change event arrives.
func (s *Stream) Next() (events.ChangeEvent, error) {
	for {
		frame, err := s.reader.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return events.ChangeEvent{}, ErrStreamClosed
			}
			return events.ChangeEvent{}, err
		}
		if frame.Event != "" && frame.Event != "change" {
			continue
		}
		event, err := events.UnmarshalChangeEvent([]byte(frame.Data))
		if err != nil {
			return events.ChangeEvent{}, fmt.Errorf("decode change %q: %w", frame.ID, err)
		}
		return event, nil
	}
}

func (s *Stream) Close() error {
	return s.body.Close()
}

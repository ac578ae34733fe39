package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tsserver-gateway/src/internal/common"
)

// Large completion lists can exceed the default bufio size; 1MB keeps
// single-read framing intact for the biggest realistic response.
const responseBufferSize = 1024 * 1024

// MessageHandler routes decoded backend messages. The codec never
// interprets payloads beyond the type discriminator.
type MessageHandler interface {
	HandleResponse(resp *Response) error
	HandleEvent(ev *Event) error
}

// Codec frames and decodes backend protocol messages. Messages are JSON
// bodies preceded by a Content-Length header, one blank line, then the body.
type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

// WriteRequest sends a request with proper Content-Length header formatting.
func (c *Codec) WriteRequest(writer io.Writer, req *Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(data), data)

	_, err = writer.Write([]byte(content))
	return err
}

// ReadLoop processes backend messages until EOF or stop. Decode failures on
// a single message are logged and skipped so one malformed body cannot stall
// the stream.
func (c *Codec) ReadLoop(reader io.Reader, handler MessageHandler, stopCh <-chan struct{}) error {
	bufReader := bufio.NewReaderSize(reader, responseBufferSize)

	for {
		select {
		case <-stopCh:
			return nil
		default:
		}

		var contentLength int

		for {
			line, err := bufReader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					// EOF is expected during shutdown
					return nil
				}
				return err
			}

			line = strings.TrimSpace(line)
			if line == "" {
				// Empty line indicates end of headers
				break
			}

			if strings.HasPrefix(line, "Content-Length:") {
				lengthStr := strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:"))
				length, err := strconv.Atoi(lengthStr)
				if err != nil {
					common.TSLogger.Debug("Failed to parse Content-Length: %s", lengthStr)
					continue
				}
				contentLength = length
			}
		}

		if contentLength > 0 {
			body := make([]byte, contentLength)
			if _, err := io.ReadFull(bufReader, body); err != nil {
				return err
			}

			if err := c.HandleMessage(body, handler); err != nil {
				common.TSLogger.Error("Error handling message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// HandleMessage decodes a single message body and routes it by type.
func (c *Codec) HandleMessage(data []byte, handler MessageHandler) error {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("malformed backend message: %w", err)
	}

	switch msg.Type {
	case TypeResponse:
		success := msg.Success != nil && *msg.Success
		return handler.HandleResponse(&Response{
			Seq:        msg.Seq,
			Type:       msg.Type,
			Command:    msg.Command,
			RequestSeq: msg.RequestSeq,
			Success:    success,
			Message:    msg.Message,
			Body:       msg.Body,
		})
	case TypeEvent:
		return handler.HandleEvent(&Event{
			Seq:   msg.Seq,
			Type:  msg.Type,
			Event: msg.Event,
			Body:  msg.Body,
		})
	default:
		return fmt.Errorf("unexpected message type %q", msg.Type)
	}
}

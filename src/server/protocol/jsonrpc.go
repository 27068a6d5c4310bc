// Package protocol implements JSON-RPC 2.0 message framing with Content-Length
// headers, shared by the editor-facing stream and both backend streams.
package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/datstarkey/svelte-proxy-lsp/src/internal/common"
)

// JSONRPCVersion is the protocol version carried by every message.
const JSONRPCVersion = "2.0"

// JSON-RPC error codes
const (
	ParseError     = -32700 // Invalid JSON was received
	InvalidRequest = -32600 // The JSON sent is not a valid Request object
	MethodNotFound = -32601 // The method does not exist / is not available
	InvalidParams  = -32602 // Invalid method parameter(s)
	InternalError  = -32603 // Internal JSON-RPC error
)

// Responses from workspace/symbol against large projects can be big; size the
// read buffer accordingly.
const responseBufferSize = 1024 * 1024

// Message represents a JSON-RPC 2.0 message of any shape: request,
// notification or response.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Handler receives decoded messages from a stream.
type Handler interface {
	HandleRequest(method string, id interface{}, params json.RawMessage) error
	HandleResponse(id interface{}, result json.RawMessage, rpcErr *RPCError) error
	HandleNotification(method string, params json.RawMessage) error
}

// Stream reads and writes framed JSON-RPC messages on one connection.
type Stream struct {
	name   string // identifies the peer in log output
	logger common.Logger
}

// NewStream creates a stream codec for the named peer.
func NewStream(name string, logger common.Logger) *Stream {
	return &Stream{name: name, logger: common.OrNop(logger)}
}

// WriteMessage sends a message with the Content-Length header framing the LSP
// transport requires. The caller serializes concurrent writers.
func (s *Stream) WriteMessage(writer io.Writer, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(data), data)
	_, err = writer.Write([]byte(content))
	return err
}

// ReadLoop processes messages from reader until EOF, stop closure or a fatal
// framing error, dispatching each to handler. Per-message handler errors are
// logged and do not stop the loop.
func (s *Stream) ReadLoop(reader io.Reader, handler Handler, stopCh <-chan struct{}) error {
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
				break
			}

			if strings.HasPrefix(line, "Content-Length:") {
				lengthStr := strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:"))
				length, err := strconv.Atoi(lengthStr)
				if err != nil {
					s.logger.Debug("Failed to parse Content-Length from %s: %s", s.name, lengthStr)
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

			if err := s.Dispatch(body, handler); err != nil {
				s.logger.Error("Error handling message from %s: %v", s.name, err)
			}
		}
	}
}

// Dispatch decodes one message body and routes it to the matching handler
// callback: requests carry method and id, notifications only a method,
// responses only an id.
func (s *Stream) Dispatch(data []byte, handler Handler) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Error("Failed to unmarshal JSON from %s: %v", s.name, err)
		return err
	}

	if msg.Method != "" {
		if msg.ID != nil {
			return handler.HandleRequest(msg.Method, msg.ID, msg.Params)
		}
		return handler.HandleNotification(msg.Method, msg.Params)
	}

	if msg.ID != nil {
		var result json.RawMessage
		if msg.Error == nil && msg.Result != nil {
			result, _ = json.Marshal(msg.Result)
		}
		return handler.HandleResponse(msg.ID, result, msg.Error)
	}

	s.logger.Warn("Received malformed message (no ID and no method) from %s", s.name)
	return fmt.Errorf("malformed JSON-RPC message: no ID and no method")
}

// NewRequest creates a request message.
func NewRequest(method string, id interface{}, params interface{}) Message {
	return Message{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  marshalParams(params),
	}
}

// NewNotification creates a notification message (no ID).
func NewNotification(method string, params interface{}) Message {
	return Message{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  marshalParams(params),
	}
}

// NewResponse creates a response message for the given request id.
func NewResponse(id interface{}, result interface{}, rpcErr *RPCError) Message {
	return Message{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
		Error:   rpcErr,
	}
}

// NewRPCError creates an RPCError with the given code and message.
func NewRPCError(code int, message string, data interface{}) *RPCError {
	return &RPCError{Code: code, Message: message, Data: data}
}

// NewInternalError creates an internal error (-32603).
func NewInternalError(data interface{}) *RPCError {
	return NewRPCError(InternalError, "Internal error", data)
}

// NewMethodNotFoundError creates a method not found error (-32601).
func NewMethodNotFoundError(data interface{}) *RPCError {
	return NewRPCError(MethodNotFound, "Method not found", data)
}

func marshalParams(params interface{}) json.RawMessage {
	if params == nil {
		return nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		return raw
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil
	}
	return data
}

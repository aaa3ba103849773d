package syncproto

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Handler answers requests. The control server and in-process surfaces both
// talk to the core through it.
type Handler interface {
	HandleRequest(ctx context.Context, request Request) Response
}

// Frame is one unit on a control stream: exactly one of the fields is set.
type Frame struct {
	Request  *Request  `cbor:"1,keyasint,omitempty"`
	Response *Response `cbor:"2,keyasint,omitempty"`
}

// ErrEmptyFrame is returned when a decoded frame carries neither side.
var ErrEmptyFrame = errors.New("frame carries neither request nor response")

var (
	frameEncMode cbor.EncMode
	frameDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	frameEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create frame CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		IndefLength:     cbor.IndefLengthForbidden,
		MaxNestedLevels: 16,
	}
	frameDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create frame CBOR decoder mode: %v", err))
	}
}

// EncodeFrame marshals a frame.
func EncodeFrame(frame Frame) ([]byte, error) {
	return frameEncMode.Marshal(frame)
}

// DecodeFrame unmarshals a frame and checks that one side is set.
func DecodeFrame(data []byte) (Frame, error) {
	var frame Frame
	if err := frameDecMode.Unmarshal(data, &frame); err != nil {
		return Frame{}, err
	}
	if err := frame.check(); err != nil {
		return Frame{}, err
	}
	return frame, nil
}

func (frame Frame) check() error {
	if (frame.Request == nil) == (frame.Response == nil) {
		return ErrEmptyFrame
	}
	return nil
}

// Conn streams frames over a byte stream. Writes are serialized; reads must
// come from a single goroutine.
type Conn struct {
	stream  io.ReadWriteCloser
	decoder *cbor.Decoder

	writeMu sync.Mutex
	encoder *cbor.Encoder
}

// NewConn wraps stream.
func NewConn(stream io.ReadWriteCloser) *Conn {
	return &Conn{
		stream:  stream,
		decoder: frameDecMode.NewDecoder(stream),
		encoder: frameEncMode.NewEncoder(stream),
	}
}

// WriteFrame sends one frame.
func (conn *Conn) WriteFrame(frame Frame) error {
	if err := frame.check(); err != nil {
		return err
	}
	conn.writeMu.Lock()
	defer conn.writeMu.Unlock()
	if err := conn.encoder.Encode(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame blocks for the next frame. io.EOF means the peer hung up.
func (conn *Conn) ReadFrame() (Frame, error) {
	var frame Frame
	if err := conn.decoder.Decode(&frame); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("read frame: %w", err)
	}
	if err := frame.check(); err != nil {
		return Frame{}, err
	}
	return frame, nil
}

// Close closes the underlying stream.
func (conn *Conn) Close() error {
	return conn.stream.Close()
}

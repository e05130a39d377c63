package proxy

import (
	"github.com/fxamacker/cbor/v2"
)

// Methods carried in Frame.Method.
const (
	MethodSetInteractionState = "setInteractionState"
	MethodAck                 = "ack"
)

// Frame is one websocket binary message. Requests carry Method and
// Flags; the reply echoes Seq with MethodAck and a non-empty Error when
// the remote side rejected the call.
type Frame struct {
	Seq    uint64 `cbor:"1,keyasint"`
	Method string `cbor:"2,keyasint"`
	Flags  int32  `cbor:"3,keyasint,omitempty"`
	Error  string `cbor:"4,keyasint,omitempty"`
}

// encMode uses Core Deterministic Encoding so a frame always has one
// byte representation.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("proxy: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("proxy: CBOR decoder initialization failed: " + err.Error())
	}
}

func encodeFrame(f Frame) ([]byte, error) {
	return encMode.Marshal(f)
}

func decodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := decMode.Unmarshal(data, &f)
	return f, err
}

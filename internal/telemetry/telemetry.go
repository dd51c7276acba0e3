// Package telemetry publishes one binary frame per control tick over
// MQTT (spec §6.6), grounded on the teacher's RunInertialProducer
// publish loop (periodic ticker + github.com/eclipse/paho.mqtt.golang),
// but with a fixed binary wire frame instead of JSON — the spec's
// frame layout is a byte-for-byte contract, not a document schema.
package telemetry

import (
	"bytes"
	"encoding/binary"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var beginMarker = []byte("FBEGIN")
var endMarker = []byte("FEND")

// Frame is one tick's telemetry snapshot.
type Frame struct {
	Tick          uint64
	TNowUS        uint64
	TStartUS      uint64
	Mode          uint8
	B, Bdot, W, S [3]float32
	StructuralFailures uint32
}

// Encode serializes f into the spec's wire format: "FBEGIN", tick,
// t_now, t_start, mode, 12 floats (B, Ḃ, ω, S in that order), then
// "FEND". StructuralFailures is appended after the marker as a
// supplemental field the legacy wire format never had — consumers that
// only know the original 6-vector frame can stop reading at "FEND".
func (f Frame) Encode() []byte {
	buf := new(bytes.Buffer)
	buf.Write(beginMarker)
	binary.Write(buf, binary.BigEndian, f.Tick)
	binary.Write(buf, binary.BigEndian, f.TNowUS)
	binary.Write(buf, binary.BigEndian, f.TStartUS)
	binary.Write(buf, binary.BigEndian, f.Mode)
	for _, v := range [][3]float32{f.B, f.Bdot, f.W, f.S} {
		for _, c := range v {
			binary.Write(buf, binary.BigEndian, c)
		}
	}
	buf.Write(endMarker)
	binary.Write(buf, binary.BigEndian, f.StructuralFailures)
	return buf.Bytes()
}

// Decode parses bytes produced by Encode, validating both markers.
func Decode(data []byte) (Frame, error) {
	r := bytes.NewReader(data)
	var begin [6]byte
	if _, err := r.Read(begin[:]); err != nil || !bytes.Equal(begin[:], beginMarker) {
		return Frame{}, fmt.Errorf("telemetry: missing FBEGIN marker")
	}
	var f Frame
	binary.Read(r, binary.BigEndian, &f.Tick)
	binary.Read(r, binary.BigEndian, &f.TNowUS)
	binary.Read(r, binary.BigEndian, &f.TStartUS)
	binary.Read(r, binary.BigEndian, &f.Mode)
	for _, v := range []*[3]float32{&f.B, &f.Bdot, &f.W, &f.S} {
		for i := range v {
			binary.Read(r, binary.BigEndian, &v[i])
		}
	}
	var end [4]byte
	if _, err := r.Read(end[:]); err != nil || !bytes.Equal(end[:], endMarker) {
		return Frame{}, fmt.Errorf("telemetry: missing FEND marker")
	}
	binary.Read(r, binary.BigEndian, &f.StructuralFailures)
	return f, nil
}

// Publisher publishes Frames to a single MQTT topic.
type Publisher struct {
	client mqtt.Client
	topic  string
}

func NewPublisher(broker, clientID, topic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: mqtt connect: %w", token.Error())
	}
	return &Publisher{client: client, topic: topic}, nil
}

func (p *Publisher) Publish(f Frame) error {
	token := p.client.Publish(p.topic, 0, false, f.Encode())
	token.Wait()
	return token.Error()
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

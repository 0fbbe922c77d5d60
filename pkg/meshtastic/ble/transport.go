package ble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/frame"
	"tinygo.org/x/bluetooth"
)

var _ meshtastic.Transport = &Transport{}

// errEmptyQueue is returned when no data is available on fromRadio.
var errEmptyQueue = errors.New("no data in queue")

// Transport is a BLE-based meshtastic.Transport. It manages the
// Bluetooth connection and moves bytes through the three Meshtastic
// GATT characteristics: fromRadio, toRadio, and the fromNum notify
// trigger.
type Transport struct {
	device    bluetooth.Device
	fromRadio bluetooth.DeviceCharacteristic
	fromNum   bluetooth.DeviceCharacteristic
	toRadio   bluetooth.DeviceCharacteristic

	log *slog.Logger
}

// WithLogger sets the transport's logger. The default is slog.Default().
func (t *Transport) WithLogger(log *slog.Logger) *Transport {
	t.log = log
	return t
}

func (t *Transport) logger() *slog.Logger {
	if t.log == nil {
		return slog.Default()
	}
	return t.log
}

// Connect enables notifications on fromNum; each notification triggers
// a drain of fromRadio, re-framing every chunk it reads through
// frame.Encode so it joins the same byte pipeline a serial or HTTP
// transport feeds, even though BLE already delivers message-sized reads.
func (t *Transport) Connect(ctx context.Context, onBytes func([]byte)) error {
	return t.fromNum.EnableNotifications(func(_ []byte) {
		t.pullBytes(onBytes)
	})
}

func (t *Transport) pullBytes(onBytes func([]byte)) {
	for {
		chunk, err := t.readChunk()
		switch {
		case errors.Is(err, errEmptyQueue):
			return
		case err != nil:
			t.logger().Warn("ble read from fromRadio failed", "error", err)
			return
		default:
			framed, err := frame.Encode(chunk)
			if err != nil {
				t.logger().Warn("ble chunk too large to frame", "error", err)
				continue
			}
			onBytes(framed)
		}
	}
}

func (t *Transport) readChunk() ([]byte, error) {
	buf := make([]byte, frame.MaxPayload)
	n, err := t.fromRadio.Read(buf)
	switch {
	case err != nil:
		return nil, err
	case n < 1:
		return nil, errEmptyQueue
	}
	return buf[:n], nil
}

// Disconnect disables notifications and drops the BLE connection.
func (t *Transport) Disconnect() error {
	_ = t.fromNum.EnableNotifications(nil)
	return t.device.Disconnect()
}

// Write sends an already-framed buffer; only the unframed payload
// portion is meaningful to the device, so the magic bytes and length
// prefix frame.Encode added are stripped back off before the
// characteristic write.
func (t *Transport) Write(ctx context.Context, data []byte) error {
	payload, err := frame.Unframe(data)
	if err != nil {
		return fmt.Errorf("meshtastic/ble: unframe outbound write: %w", err)
	}
	_, err = t.toRadio.WriteWithoutResponse(payload)
	return err
}

// Ping reports the BLE connection's liveness. tinygo's bluetooth package
// exposes no direct "is connected" query, so this performs an empty
// write to toRadio and reports whether the GATT operation succeeds.
func (t *Transport) Ping(ctx context.Context) (bool, error) {
	_, err := t.toRadio.WriteWithoutResponse(nil)
	if err != nil {
		return false, err
	}
	return true, nil
}

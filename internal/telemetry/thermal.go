//go:build linux

package telemetry

import (
	"encoding/binary"
	"fmt"

	"github.com/mdlayher/genetlink"

	"github.com/voltcapd/voltcapd/internal/types"
)

// thermalMulticastGroup is the generic-netlink multicast group the
// kernel thermal framework posts trip-point crossings to.
const thermalMulticastGroup = 2

// ThermalSubscriber binds a generic-netlink socket once and blocks on it
// for the daemon's lifetime, decoding thermal trip events as they arrive.
type ThermalSubscriber struct {
	conn *genetlink.Conn
}

// NewThermalSubscriber dials generic netlink and joins the thermal
// multicast group.
func NewThermalSubscriber() (*ThermalSubscriber, error) {
	conn, err := genetlink.Dial(nil)
	if err != nil {
		return nil, fmt.Errorf("telemetry: dial generic netlink: %w", err)
	}
	if err := conn.JoinGroup(thermalMulticastGroup); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: join thermal multicast group: %w", err)
	}
	return &ThermalSubscriber{conn: conn}, nil
}

// Close releases the netlink socket. It is held open for the process
// lifetime otherwise; this is only called at shutdown.
func (s *ThermalSubscriber) Close() error {
	return s.conn.Close()
}

// Receive blocks until a thermal message arrives and decodes it. The
// generic-netlink header is already stripped by the underlying library;
// the remaining payload is {int32 trip_or_temp, int32 event_code}. A
// non-zero event code is treated as a rising crossing. On a receive
// failure the message is dropped; the caller should continue the loop
// without backoff, as the kernel resends on the next crossing.
func (s *ThermalSubscriber) Receive() (ThermalEvent, error) {
	msgs, _, err := s.conn.Receive()
	if err != nil {
		return ThermalEvent{}, fmt.Errorf("telemetry: recvmsg: %w", err)
	}
	for _, m := range msgs {
		if ev, ok := decodeThermalPayload(m.Data); ok {
			return ev, nil
		}
	}
	return ThermalEvent{}, fmt.Errorf("telemetry: no usable thermal message in datagram")
}

// decodeThermalPayload decodes the {int32 trip_or_temp, int32 event_code}
// payload left after the generic-netlink header has been stripped.
func decodeThermalPayload(data []byte) (ThermalEvent, bool) {
	if len(data) < 8 {
		return ThermalEvent{}, false
	}
	temp := int32(binary.NativeEndian.Uint32(data[0:4]))
	event := int32(binary.NativeEndian.Uint32(data[4:8]))
	return ThermalEvent{
		TempMilliC: types.MilliCelsius(temp),
		IsRise:     event != 0,
	}, true
}

package client

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/genc-murat/relaymon/internal/core/models"
	"github.com/genc-murat/relaymon/pkg/controlproto"
)

var (
	// ErrNotConnected is returned for any request made after the control
	// connection died.
	ErrNotConnected = errors.New("client: control connection is down")

	// ErrTimeout is returned when the daemon does not answer a request
	// within the configured window.
	ErrTimeout = errors.New("client: request timed out")
)

const intervalEndLayout = "2006-01-02 15:04:05"

const eventBuffer = 64

// ControlClient speaks the daemon's line-based control protocol over a
// single TCP connection. Synchronous requests wait for their coded reply
// while a reader goroutine demuxes asynchronous 650 events onto the Events
// channel.
type ControlClient struct {
	addr           string
	requestTimeout time.Duration

	mu   sync.Mutex // serializes request/reply exchanges
	conn net.Conn
	wr   *controlproto.Writer

	replies chan controlproto.Reply
	// stale counts replies still owed to requests that timed out, guarded
	// by mu. They are discarded so later requests pair with their own
	// replies.
	stale int

	events    chan models.Event
	dropped   atomic.Int64
	closed    chan struct{}
	closeOnce sync.Once
	alive     atomic.Bool
	now       func() time.Time
}

// Dial connects and authenticates against the control port.
func Dial(addr, password string, dialTimeout, requestTimeout time.Duration) (*ControlClient, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("client: dialing %s: %w", addr, err)
	}

	c := &ControlClient{
		addr:           addr,
		requestTimeout: requestTimeout,
		conn:           conn,
		wr:             controlproto.NewWriter(conn),
		replies:        make(chan controlproto.Reply, 1),
		events:         make(chan models.Event, eventBuffer),
		closed:         make(chan struct{}),
		now:            time.Now,
	}
	c.alive.Store(true)
	go c.readLoop(controlproto.NewReader(conn))

	var args []string
	if password != "" {
		args = append(args, strconv.Quote(password))
	}
	if _, err := c.request("AUTHENTICATE", args...); err != nil {
		c.shutdown()
		return nil, fmt.Errorf("client: authenticating: %w", err)
	}

	log.Printf("client: connected to control port %s", addr)
	return c, nil
}

// Subscribe asks the daemon to push bandwidth, reload and descriptor
// events.
func (c *ControlClient) Subscribe() error {
	_, err := c.request("SETEVENTS", "BW", "RELOAD", "DESC")
	return err
}

// Events is the stream of asynchronous daemon events. It closes when the
// connection dies.
func (c *ControlClient) Events() <-chan models.Event {
	return c.events
}

// IsAlive reports whether the control connection is still up.
func (c *ControlClient) IsAlive() bool {
	return c.alive.Load()
}

// DroppedEvents reports how many async events were discarded because the
// consumer lagged behind the daemon.
func (c *ControlClient) DroppedEvents() int64 {
	return c.dropped.Load()
}

// TrafficTotals returns the daemon's lifetime read/written byte counts.
func (c *ControlClient) TrafficTotals() (uint64, uint64, error) {
	info, err := c.getInfo("traffic/read", "traffic/written")
	if err != nil {
		return 0, 0, err
	}
	read, err := strconv.ParseUint(info["traffic/read"], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("client: bad traffic/read %q", info["traffic/read"])
	}
	written, err := strconv.ParseUint(info["traffic/written"], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("client: bad traffic/written %q", info["traffic/written"])
	}
	return read, written, nil
}

// ProcessStartTime derives the daemon's start time from its reported
// uptime.
func (c *ControlClient) ProcessStartTime() (time.Time, error) {
	info, err := c.getInfo("uptime")
	if err != nil {
		return time.Time{}, err
	}
	uptime, err := strconv.ParseFloat(info["uptime"], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("client: bad uptime %q", info["uptime"])
	}
	return c.now().Add(-time.Duration(uptime * float64(time.Second))), nil
}

// AccountingEnabled reports whether the daemon has a transfer quota
// configured.
func (c *ControlClient) AccountingEnabled() (bool, error) {
	info, err := c.getInfo("accounting/enabled")
	if err != nil {
		return false, err
	}
	return info["accounting/enabled"] == "1", nil
}

// AccountingStats fetches the current quota state.
func (c *ControlClient) AccountingStats() (*models.AccountingStats, error) {
	info, err := c.getInfo(
		"accounting/hibernating",
		"accounting/bytes",
		"accounting/bytes-left",
		"accounting/interval-end",
	)
	if err != nil {
		return nil, err
	}

	readUsed, writtenUsed, err := parseBytePair(info["accounting/bytes"])
	if err != nil {
		return nil, fmt.Errorf("client: accounting/bytes: %w", err)
	}
	readLeft, writtenLeft, err := parseBytePair(info["accounting/bytes-left"])
	if err != nil {
		return nil, fmt.Errorf("client: accounting/bytes-left: %w", err)
	}

	stats := &models.AccountingStats{
		Status:       hibernationStatus(info["accounting/hibernating"]),
		ReadBytes:    readUsed,
		ReadLimit:    readUsed + readLeft,
		WrittenBytes: writtenUsed,
		WriteLimit:   writtenUsed + writtenLeft,
		RetrievedAt:  c.now(),
	}

	if end, err := time.ParseInLocation(intervalEndLayout, info["accounting/interval-end"], time.UTC); err == nil {
		if until := end.Sub(c.now()); until > 0 {
			stats.TimeUntilReset = until
		}
	}
	return stats, nil
}

// Metadata fetches the title-level bandwidth descriptors. The daemon
// reports 0 for fields it does not know.
func (c *ControlClient) Metadata() (models.RelayMetadata, error) {
	info, err := c.getInfo(
		"bandwidth/rate",
		"bandwidth/burst",
		"bandwidth/measured",
		"bandwidth/observed",
	)
	if err != nil {
		return models.RelayMetadata{}, err
	}
	return models.RelayMetadata{
		EffectiveRate:     parseUintDefault(info["bandwidth/rate"]),
		EffectiveBurst:    parseUintDefault(info["bandwidth/burst"]),
		MeasuredBandwidth: parseUintDefault(info["bandwidth/measured"]),
		ObservedBandwidth: parseUintDefault(info["bandwidth/observed"]),
	}, nil
}

// Close tears down the connection. Safe to call more than once.
func (c *ControlClient) Close() error {
	c.shutdown()
	return nil
}

func (c *ControlClient) shutdown() {
	c.closeOnce.Do(func() {
		c.alive.Store(false)
		close(c.closed)
		c.conn.Close()
	})
}

func (c *ControlClient) readLoop(rd *controlproto.Reader) {
	defer close(c.events)
	for {
		reply, err := rd.ReadReply()
		if err != nil {
			c.shutdown()
			return
		}

		if reply.IsAsync() {
			if ev, ok := parseAsyncEvent(reply, c.now()); ok {
				select {
				case c.events <- ev:
				default:
					// Slow consumer; drop the event rather than stall
					// reply handling, but keep the loss visible.
					c.dropped.Add(1)
				}
			}
			continue
		}

		select {
		case c.replies <- reply:
		case <-c.closed:
			return
		}
	}
}

func (c *ControlClient) request(verb string, args ...string) (controlproto.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.alive.Load() {
		return controlproto.Reply{}, ErrNotConnected
	}

	// Replies to timed-out requests may have landed since. The daemon
	// answers in request order, so the next c.stale replies received are
	// theirs, not ours.
drain:
	for c.stale > 0 {
		select {
		case <-c.replies:
			c.stale--
		default:
			break drain
		}
	}

	if err := c.wr.WriteCommand(verb, args...); err != nil {
		c.shutdown()
		return controlproto.Reply{}, fmt.Errorf("client: sending %s: %w", verb, err)
	}

	timer := time.NewTimer(c.requestTimeout)
	defer timer.Stop()

	for {
		select {
		case reply := <-c.replies:
			if c.stale > 0 {
				c.stale--
				continue
			}
			if !reply.IsOK() {
				return reply, fmt.Errorf("client: %s failed: %d %s", verb, reply.Code, strings.Join(reply.Lines, " "))
			}
			return reply, nil
		case <-timer.C:
			c.stale++
			return controlproto.Reply{}, fmt.Errorf("%w: %s", ErrTimeout, verb)
		case <-c.closed:
			return controlproto.Reply{}, ErrNotConnected
		}
	}
}

func (c *ControlClient) getInfo(keys ...string) (map[string]string, error) {
	reply, err := c.request("GETINFO", keys...)
	if err != nil {
		return nil, err
	}
	info := make(map[string]string, len(keys))
	for _, line := range reply.Lines {
		if key, value, ok := strings.Cut(line, "="); ok {
			info[key] = value
		}
	}
	return info, nil
}

func parseAsyncEvent(reply controlproto.Reply, at time.Time) (models.Event, bool) {
	if len(reply.Lines) == 0 {
		return nil, false
	}
	fields := strings.Fields(reply.Lines[0])
	if len(fields) == 0 {
		return nil, false
	}

	switch fields[0] {
	case "BW":
		if len(fields) < 3 {
			return nil, false
		}
		read, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, false
		}
		written, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, false
		}
		return models.BandwidthEvent{Read: read, Written: written, Timestamp: at}, true
	case "RELOAD":
		return models.ResetEvent{}, true
	case "DESC":
		return models.DescriptorEvent{}, true
	}
	return nil, false
}

func parseBytePair(s string) (uint64, uint64, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected two counters, got %q", s)
	}
	first, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	second, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return first, second, nil
}

func parseUintDefault(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func hibernationStatus(s string) models.AccountingStatus {
	switch s {
	case "soft":
		return models.AccountingStatusSoftLimit
	case "hard":
		return models.AccountingStatusHardLimit
	default:
		return models.AccountingStatusNormal
	}
}
